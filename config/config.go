package config

import (
	"errors"
	"time"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

type PoolConfig struct {
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxIdleTime time.Duration `mapstructure:"connMaxIdleTime"`
	HealthInterval  time.Duration `mapstructure:"healthInterval"`
	// StatementTimeout is enforced by postgres on every statement.
	StatementTimeout time.Duration `mapstructure:"statementTimeout"`
}

type AuthConfig struct {
	TokenTTL time.Duration `mapstructure:"tokenTTL"`
}

type LimiterConfig struct {
	Rate string `mapstructure:"rate"`
}

type VoucherConfig struct {
	PercentageCap float64 `mapstructure:"percentageCap"`
	WelcomeCode   string  `mapstructure:"welcomeCode"`
	WelcomeAmount float64 `mapstructure:"welcomeAmount"`
	WelcomeMin    float64 `mapstructure:"welcomeMinOrder"`
	WelcomeMonths int     `mapstructure:"welcomeMonths"`
}

type LoginConfig struct {
	MaxRetries   int           `mapstructure:"maxRetries"`
	RetryBackoff time.Duration `mapstructure:"retryBackoff"`
}

type Config struct {
	Server   ServerConfig  `mapstructure:"server"`
	Pool     PoolConfig    `mapstructure:"pool"`
	Auth     AuthConfig    `mapstructure:"auth"`
	Limiter  LimiterConfig `mapstructure:"limiter"`
	Vouchers VoucherConfig `mapstructure:"vouchers"`
	Login    LoginConfig   `mapstructure:"login"`
}

var vp *viper.Viper

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5000")
	v.SetDefault("pool.maxOpenConns", 10)
	v.SetDefault("pool.maxIdleConns", 5)
	v.SetDefault("pool.connMaxIdleTime", "30s")
	v.SetDefault("pool.healthInterval", "10s")
	v.SetDefault("pool.statementTimeout", "60s")
	v.SetDefault("auth.tokenTTL", "24h")
	v.SetDefault("limiter.rate", "300-M")
	v.SetDefault("vouchers.percentageCap", 1000)
	v.SetDefault("vouchers.welcomeCode", "WELCOME10")
	v.SetDefault("vouchers.welcomeAmount", 100)
	v.SetDefault("vouchers.welcomeMinOrder", 500)
	v.SetDefault("vouchers.welcomeMonths", 1)
	v.SetDefault("login.maxRetries", 2)
	v.SetDefault("login.retryBackoff", "1s")
}

// LoadConfig reads config/config.json. A missing file is not an error,
// defaults cover every key.
func LoadConfig() (Config, error) {
	vp = viper.New()
	setDefaults(vp)

	var config Config

	vp.SetConfigName("config")
	vp.SetConfigType("json")
	vp.AddConfigPath("config")

	err := vp.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	err = vp.Unmarshal(&config)
	if err != nil {
		return Config{}, err
	}

	return config, nil
}
