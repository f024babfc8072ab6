package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type GrantRoleRequest struct {
	Role string `json:"role"`
}

func (r GrantRoleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Role, validation.Required, validation.In("host", "admin")),
	)
}
