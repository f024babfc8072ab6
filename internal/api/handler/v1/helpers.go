package v1

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/eventure/eventure-api/internal/api/handler/v1/response"
	"github.com/eventure/eventure-api/internal/api/middleware"
)

var errNotAuthenticated = errors.New("user is not authenticated")

// getUserID pulls the authenticated user id the JWT middleware
// deposited in the request context.
func getUserID(ctx *gin.Context) (uint, *response.Err) {
	value, exists := ctx.Get(middleware.ContextKeyUserID)
	if !exists {
		return 0, response.ErrUnauthorized(errNotAuthenticated)
	}

	userID, ok := value.(uint)
	if !ok || userID == 0 {
		return 0, response.ErrUnauthorized(errNotAuthenticated)
	}

	return userID, nil
}

func parseUintParam(ctx *gin.Context, name string) (uint, error) {
	raw := ctx.Param(name)
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %v: %v", name, raw)
	}

	return uint(parsed), nil
}
