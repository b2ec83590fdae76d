package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DefaultCampuses = "1:Paris,9:Lyon,39:Heilbronn,44:Wolfsburg,51:Berlin,53:Vienna"
)

// Config holds all configuration for the application.
type Config struct {
	AppEnv string `validate:"oneof=development production"`

	API      APIConfig
	Log      LogConfig
	Campuses Campuses

	// MetricsFile receives request counters in Prometheus text format on
	// exit. Empty disables it.
	MetricsFile string
}

type APIConfig struct {
	UID      string `validate:"required"`
	Secret   string `validate:"required"`
	BaseURL  string `validate:"required,url"`
	TokenURL string `validate:"required,url"`

	Timeout          time.Duration `validate:"gt=0"`
	RetryAttempts    int           `validate:"gte=1"`
	RetryInitialWait time.Duration `validate:"gt=0"`
}

type LogConfig struct {
	Level  string
	Format string `validate:"oneof=console json"`
}

// LoadFromEnv reads the environment, falling back to an optional .env file in
// the working directory.
func LoadFromEnv() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isNotExist(err) {
			return nil, fmt.Errorf("read .env: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	campuses, err := ParseCampuses(v.GetString("CAMPUSES"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		AppEnv: v.GetString("APP_ENV"),
		API: APIConfig{
			UID:              v.GetString("API_UID"),
			Secret:           v.GetString("API_SECRET"),
			BaseURL:          v.GetString("API_BASE_URL"),
			TokenURL:         v.GetString("API_TOKEN_URL"),
			Timeout:          v.GetDuration("HTTP_TIMEOUT"),
			RetryAttempts:    v.GetInt("RETRY_ATTEMPTS"),
			RetryInitialWait: v.GetDuration("RETRY_INITIAL_WAIT"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Campuses:    campuses,
		MetricsFile: v.GetString("METRICS_FILE"),
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, describeValidation(err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("API_UID", "")
	v.SetDefault("API_SECRET", "")
	v.SetDefault("API_BASE_URL", "https://api.intra.42.fr/v2")
	v.SetDefault("API_TOKEN_URL", "https://api.intra.42.fr/oauth/token")
	v.SetDefault("HTTP_TIMEOUT", "30s")
	v.SetDefault("RETRY_ATTEMPTS", 5)
	v.SetDefault("RETRY_INITIAL_WAIT", "1s")
	v.SetDefault("LOG_LEVEL", "warn")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("CAMPUSES", DefaultCampuses)
	v.SetDefault("METRICS_FILE", "")
}

// envKeys maps struct paths to the variables users set.
var envKeys = map[string]string{
	"Config.AppEnv":               "APP_ENV",
	"Config.API.UID":              "API_UID",
	"Config.API.Secret":           "API_SECRET",
	"Config.API.BaseURL":          "API_BASE_URL",
	"Config.API.TokenURL":         "API_TOKEN_URL",
	"Config.API.Timeout":          "HTTP_TIMEOUT",
	"Config.API.RetryAttempts":    "RETRY_ATTEMPTS",
	"Config.API.RetryInitialWait": "RETRY_INITIAL_WAIT",
	"Config.Log.Format":           "LOG_FORMAT",
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var missing, invalid []string
	for _, fe := range verrs {
		key, ok := envKeys[fe.Namespace()]
		if !ok {
			key = fe.Namespace()
		}
		if fe.Tag() == "required" {
			missing = append(missing, key)
		} else {
			invalid = append(invalid, key)
		}
	}

	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing environment variables: "+strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		parts = append(parts, "invalid environment variables: "+strings.Join(invalid, ", "))
	}
	return errors.New(strings.Join(parts, "; "))
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

// NewLogger creates a new Zap logger based on the config. Output goes to
// stderr so it never interleaves with rendered tables.
func NewLogger(cfg *Config) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.AppEnv == EnvProduction {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	zapCfg.Encoding = cfg.Log.Format
	if zapCfg.Encoding == "" {
		zapCfg.Encoding = "console"
	}

	zapCfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if cfg.Log.Level != "" {
		if err := zapCfg.Level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.Log.Level, err)
		}
	}

	zapCfg.OutputPaths = []string{"stderr"}
	zapCfg.ErrorOutputPaths = []string{"stderr"}
	zapCfg.EncoderConfig.TimeKey = "timestamp"
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zapCfg.Build()
}
