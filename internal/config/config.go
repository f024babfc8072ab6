package config

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	Payment  *PaymentConfig  `mapstructure:"payment"`
	Holds    *HoldsConfig    `mapstructure:"holds"`
	Uploads  *UploadsConfig  `mapstructure:"uploads"`
}

type APIConfig struct {
	Environment        string `mapstructure:"environment"`
	BaseURL            string `mapstructure:"base_url"`
	Port               string `mapstructure:"port"`
	AllowedCORSDomains string `mapstructure:"allowed_cors_domains"`
	JWTSigningKey      string `mapstructure:"jwt_signing_key"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"db_name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type PaymentConfig struct {
	// Provider selects the processor implementation: "simulator" or
	// "stripe".
	Provider       string        `mapstructure:"provider"`
	SimulatedDelay time.Duration `mapstructure:"simulated_delay"`
	StripeAPIKey   string        `mapstructure:"stripe_api_key"`
}

type HoldsConfig struct {
	// TTL bounds how long a pre-payment seat hold may pin capacity.
	TTL          time.Duration `mapstructure:"ttl"`
	ReapInterval time.Duration `mapstructure:"reap_interval"`
}

type UploadsConfig struct {
	Dir     string `mapstructure:"dir"`
	BaseURL string `mapstructure:"base_url"`
}

// holdTTL is hot-reloadable so operators can shorten holds during a
// high-demand on-sale without a restart.
var holdTTL atomic.Int64

// HoldTTL returns the current pre-payment hold TTL.
func HoldTTL() time.Duration {
	return time.Duration(holdTTL.Load())
}

func Load(configFile string) (*AppConfig, error) {
	viper.SetConfigFile(configFile)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("api.environment", "development")
	viper.SetDefault("api.port", "8080")
	viper.SetDefault("gin.mode", "debug")
	viper.SetDefault("payment.provider", "simulator")
	viper.SetDefault("payment.simulated_delay", 150*time.Millisecond)
	viper.SetDefault("holds.ttl", 10*time.Minute)
	viper.SetDefault("holds.reap_interval", time.Minute)
	viper.SetDefault("uploads.dir", "./uploads/events")
	viper.SetDefault("uploads.base_url", "/static/events")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("viper.ReadInConfig -> %w", err)
	}

	config := &AppConfig{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("viper.Unmarshal -> %w", err)
	}

	holdTTL.Store(int64(config.Holds.TTL))

	viper.OnConfigChange(func(e fsnotify.Event) {
		if err := viper.Unmarshal(config); err != nil {
			zap.L().Warn("config reload failed", zap.String("file", e.Name), zap.Error(err))
			return
		}
		holdTTL.Store(int64(config.Holds.TTL))
		zap.L().Info("config reloaded", zap.String("file", e.Name), zap.Duration("hold_ttl", config.Holds.TTL))
	})
	viper.WatchConfig()

	return config, nil
}
