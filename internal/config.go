package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Env           string              `mapstructure:"env" validate:"required"`
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Workflow      WorkflowConfig      `mapstructure:"workflow"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	ValidateRequests  bool          `mapstructure:"validate_requests"`
}

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"
)

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver" validate:"required,oneof=pgx sqlite"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"required,min=1m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" validate:"required,min=1m"`
	Source          string        `mapstructure:"source" validate:"required"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// WorkflowConfig tunes the expense lifecycle.
//
// StrictTransitions rejects illegal status moves (for example approving a
// rejected expense). Turning it off restores the permissive behaviour where
// every transition is applied regardless of the current status.
//
// SampleDataOnFailure makes listing reads fall back to a fixed placeholder set
// when storage is unavailable.
type WorkflowConfig struct {
	StrictTransitions   bool          `mapstructure:"strict_transitions"`
	SampleDataOnFailure bool          `mapstructure:"sample_data_on_failure"`
	OperationTimeout    time.Duration `mapstructure:"operation_timeout" validate:"gte=0"`
}

// DefaultConfig returns the values used when a key is absent from both the
// config file and the environment.
func DefaultConfig() *Config {
	return &Config{
		Env: "development",
		Server: ServerConfig{
			Port:              8080,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			IdleTimeout:       60 * time.Second,
			WriteTimeout:      15 * time.Second,
			ValidateRequests:  true,
		},
		Database: DatabaseConfig{
			Driver:          DriverPostgres,
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{Level: "info", Format: "text"},
		},
		Workflow: WorkflowConfig{
			StrictTransitions:   true,
			SampleDataOnFailure: true,
			OperationTimeout:    5 * time.Second,
		},
	}
}

// ----------------- ENV -----------------

// LoadConfigFromEnv builds the config for container deployments where no
// config file is mounted.
func LoadConfigFromEnv() *Config {
	cfg := DefaultConfig()

	cfg.Env = getEnv("APP_ENV", cfg.Env)

	cfg.Server.Port = getEnvAsInt("HTTP_PORT", cfg.Server.Port)
	cfg.Server.BaseURL = getEnv("HTTP_BASE_URL", cfg.Server.BaseURL)
	cfg.Server.AllowedOrigins = getEnv("HTTP_ALLOWED_ORIGINS", cfg.Server.AllowedOrigins)
	cfg.Server.ReadTimeout = getEnvAsDuration("HTTP_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = getEnvAsDuration("HTTP_WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.IdleTimeout = getEnvAsDuration("HTTP_IDLE_TIMEOUT", cfg.Server.IdleTimeout)
	cfg.Server.ValidateRequests = getEnvAsBool("HTTP_VALIDATE_REQUESTS", cfg.Server.ValidateRequests)

	cfg.Database.Driver = getEnv("DB_DRIVER", cfg.Database.Driver)
	cfg.Database.Source = getEnv("DB_SOURCE", cfg.Database.Source)
	cfg.Database.MaxOpenConns = getEnvAsInt("DB_MAX_OPEN_CONNS", cfg.Database.MaxOpenConns)
	cfg.Database.MaxIdleConns = getEnvAsInt("DB_MAX_IDLE_CONNS", cfg.Database.MaxIdleConns)
	cfg.Database.ConnMaxLifetime = getEnvAsDuration("DB_CONN_MAX_LIFETIME", cfg.Database.ConnMaxLifetime)
	cfg.Database.ConnMaxIdleTime = getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", cfg.Database.ConnMaxIdleTime)

	cfg.Observability.Logging.Level = getEnv("LOG_LEVEL", cfg.Observability.Logging.Level)
	cfg.Observability.Logging.Format = getEnv("LOG_FORMAT", cfg.Observability.Logging.Format)

	cfg.Workflow.StrictTransitions = getEnvAsBool("WORKFLOW_STRICT_TRANSITIONS", cfg.Workflow.StrictTransitions)
	cfg.Workflow.SampleDataOnFailure = getEnvAsBool("WORKFLOW_SAMPLE_DATA_ON_FAILURE", cfg.Workflow.SampleDataOnFailure)
	cfg.Workflow.OperationTimeout = getEnvAsDuration("WORKFLOW_OPERATION_TIMEOUT", cfg.Workflow.OperationTimeout)

	return cfg
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

var validate = newValidator()

// newValidator reports fields by their config key rather than the Go name.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks the struct tags first, then the rules that span fields.
// Every problem found is reported in one error.
func (c *Config) Validate() error {
	var errs []string

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("validate config: %w", err)
		}
		for _, fe := range fieldErrs {
			errs = append(errs, describeFieldError(fe))
		}
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func describeFieldError(fe validator.FieldError) string {
	// drop the leading "Config."
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	if fe.Param() == "" {
		return fmt.Sprintf("%s: failed %s", field, fe.Tag())
	}
	return fmt.Sprintf("%s: failed %s=%s", field, fe.Tag(), fe.Param())
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		for _, origin := range strings.Split(c.AllowedOrigins, ",") {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if u, err := url.Parse(origin); err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("invalid allowed origin %q", origin)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

// GetDSN returns the source handed to the driver. sqlite leaves foreign
// keys off per connection unless asked, so the sqlite DSN always asks.
func (c *DatabaseConfig) GetDSN() string {
	if c.Driver != DriverSQLite {
		return c.Source
	}
	return SQLiteDSN(c.Source)
}

// SQLiteDSN adds _foreign_keys=on to a go-sqlite3 source unless the source
// already sets it.
func SQLiteDSN(source string) string {
	if strings.Contains(source, "_foreign_keys=") || strings.Contains(source, "_fk=") {
		return source
	}
	sep := "?"
	if strings.Contains(source, "?") {
		sep = "&"
	}
	return source + sep + "_foreign_keys=on"
}
