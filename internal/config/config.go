package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AppPort string `yaml:"app_port"`

	// "mysql" (default) or "sqlite"
	DBDriver   string `yaml:"db_driver"`
	SQLitePath string `yaml:"sqlite_path"`

	MySQLHost string `yaml:"mysql_host"`
	MySQLPort string `yaml:"mysql_port"`
	MySQLDB   string `yaml:"mysql_db"`
	MySQLUser string `yaml:"mysql_user"`
	MySQLPass string `yaml:"mysql_pass"`

	RedisAddr string `yaml:"redis_addr"`
	RedisDB   int    `yaml:"redis_db"`

	IdempTTLSecs int `yaml:"idempotency_ttl_seconds"`

	UserServiceURL string `yaml:"user_service_url"`
	BookServiceURL string `yaml:"book_service_url"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// cron spec with seconds field
	ReconcileSchedule  string `yaml:"reconcile_schedule"`
	ReconcileGraceSecs int    `yaml:"reconcile_grace_seconds"`
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func defaults() *Config {
	return &Config{
		AppPort:    "8082",
		DBDriver:   "mysql",
		SQLitePath: "loans.db",
		MySQLHost:  "mysql",
		MySQLPort:  "3306",
		MySQLDB:    "loans",
		MySQLUser:  "loans",
		MySQLPass:  "loans",

		RedisAddr:    "redis:6379",
		IdempTTLSecs: 300,

		UserServiceURL: "http://localhost:8081",
		BookServiceURL: "http://localhost:8080",

		LogLevel:  "info",
		LogFormat: "text",

		ReconcileSchedule:  "0 */5 * * * *",
		ReconcileGraceSecs: 120,
	}
}

// LoadDotEnv exports the variables of a .env file that are not already set.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load reads the configuration from environment variables only.
func Load() *Config {
	c := defaults()
	c.applyEnv()
	return c
}

// LoadFile reads a YAML file on top of the defaults; environment variables
// still win over values from the file.
func LoadFile(path string) (*Config, error) {
	c := defaults()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	c.applyEnv()
	return c, nil
}

func (c *Config) applyEnv() {
	c.AppPort = getenv("APP_PORT", c.AppPort)
	c.DBDriver = getenv("DB_DRIVER", c.DBDriver)
	c.SQLitePath = getenv("SQLITE_PATH", c.SQLitePath)
	c.MySQLHost = getenv("MYSQL_HOST", c.MySQLHost)
	c.MySQLPort = getenv("MYSQL_PORT", c.MySQLPort)
	c.MySQLDB = getenv("MYSQL_DB", c.MySQLDB)
	c.MySQLUser = getenv("MYSQL_USER", c.MySQLUser)
	c.MySQLPass = getenv("MYSQL_PASS", c.MySQLPass)
	c.RedisAddr = getenv("REDIS_ADDR", c.RedisAddr)
	c.RedisDB = getenvInt("REDIS_DB", c.RedisDB)
	c.IdempTTLSecs = getenvInt("IDEMPOTENCY_TTL_SECONDS", c.IdempTTLSecs)
	c.UserServiceURL = getenv("USER_SERVICE_URL", c.UserServiceURL)
	c.BookServiceURL = getenv("BOOK_SERVICE_URL", c.BookServiceURL)
	c.LogLevel = getenv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getenv("LOG_FORMAT", c.LogFormat)
	c.ReconcileSchedule = getenv("RECONCILE_SCHEDULE", c.ReconcileSchedule)
	c.ReconcileGraceSecs = getenvInt("RECONCILE_GRACE_SECONDS", c.ReconcileGraceSecs)
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	for name, raw := range map[string]string{
		"USER_SERVICE_URL": c.UserServiceURL,
		"BOOK_SERVICE_URL": c.BookServiceURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid %s %q", name, raw)
		}
	}
	if c.IdempTTLSecs <= 0 {
		return errors.New("IDEMPOTENCY_TTL_SECONDS must be positive")
	}
	return nil
}

func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempTTLSecs) * time.Second
}

func (c *Config) ReconcileGrace() time.Duration {
	return time.Duration(c.ReconcileGraceSecs) * time.Second
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// DSN returns the data source for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.SQLitePath
	}
	return c.MySQLDSN()
}
