package core

import (
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host            string
		Addr            string
		DebugAddr       string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
	}

	BackendConfig struct {
		APIBaseURL     string
		StorageBaseURL string
		Timeout        time.Duration
		RetryCount     int
	}

	SessionConfig struct {
		CookieName   string
		CookieSecure bool
		MaxAge       time.Duration
	}

	CacheConfig struct {
		Driver        string // memory | redis
		TTL           time.Duration
		RedisAddr     string
		RedisPassword string
		RedisDB       int
	}

	DatabaseConfig struct {
		Driver        string // memory | postgres
		Engine        string
		Host          string
		Port          int
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		Name          string
		DisableTLS    bool
	}

	Config struct {
		Env              string
		AppName          string
		Build            string
		Debug            bool
		TestMode         bool
		SecretKey        string
		ConsoleBaseURL   string
		DefaultFromEmail string
		SupportEmail     string
		RollbarToken     string
		SendgridApiKey   string

		Server   ServerConfig
		Backend  BackendConfig
		Session  SessionConfig
		Cache    CacheConfig
		Database DatabaseConfig
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// NewConfig reads the configuration of the current environment (ENV: DEV (default), TEST, QA, PROD).
// Values come from the environment, prefixed with the env name (ex: PROD_BACKEND_API_BASE_URL),
// after loading config/.env.<env> if it exists.
func NewConfig() (*Config, error) {
	env := strings.ToUpper(os.Getenv("ENV"))
	if env == "" {
		env = "DEV"
	}

	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
	}

	v := viper.New()
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetTypeByDefaultValue(true)
	v.AutomaticEnv()
	setDefaults(v, env)

	conf := &Config{
		Env:              env,
		AppName:          v.GetString("app_name"),
		Build:            v.GetString("build"),
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("test_mode"),
		SecretKey:        v.GetString("secret_key"),
		ConsoleBaseURL:   strings.TrimRight(v.GetString("console_base_url"), "/"),
		DefaultFromEmail: v.GetString("default_from_email"),
		SupportEmail:     v.GetString("support_email"),
		RollbarToken:     v.GetString("rollbar_token"),
		SendgridApiKey:   v.GetString("sendgrid_api_key"),
		Server: ServerConfig{
			Host:            v.GetString("server.host"),
			Addr:            v.GetString("server.addr"),
			DebugAddr:       v.GetString("server.debug_addr"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Backend: BackendConfig{
			APIBaseURL:     strings.TrimRight(v.GetString("backend.api_base_url"), "/"),
			StorageBaseURL: strings.TrimRight(v.GetString("backend.storage_base_url"), "/"),
			Timeout:        v.GetDuration("backend.timeout"),
			RetryCount:     v.GetInt("backend.retry_count"),
		},
		Session: SessionConfig{
			CookieName:   v.GetString("session.cookie_name"),
			CookieSecure: v.GetBool("session.cookie_secure"),
			MaxAge:       v.GetDuration("session.max_age"),
		},
		Cache: CacheConfig{
			Driver:        v.GetString("cache.driver"),
			TTL:           v.GetDuration("cache.ttl"),
			RedisAddr:     v.GetString("cache.redis_addr"),
			RedisPassword: v.GetString("cache.redis_password"),
			RedisDB:       v.GetInt("cache.redis_db"),
		},
		Database: DatabaseConfig{
			Driver:        v.GetString("database.driver"),
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetInt("database.port"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.admin_user"),
			AdminPassword: v.GetString("database.admin_password"),
			Name:          v.GetString("database.name"),
			DisableTLS:    v.GetBool("database.disable_tls"),
		},
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// devSecretKey signs flash cookies on DEV and TEST only.
const devSecretKey = "x7#t)k2p!d9vq$3mz0w&r8e+jh4n6c1b"

const minSecretKeyLen = 32

func isLocalEnv(env string) bool {
	return env == "DEV" || env == "TEST"
}

func setDefaults(v *viper.Viper, env string) {
	debug := env == "DEV"

	v.SetDefault("app_name", "Event Console")
	v.SetDefault("build", "develop")
	v.SetDefault("debug", debug)
	v.SetDefault("test_mode", env == "TEST")
	if isLocalEnv(env) {
		v.SetDefault("secret_key", devSecretKey)
	}
	v.SetDefault("console_base_url", "http://localhost:8000")
	v.SetDefault("default_from_email", "Event Console <noreply@localhost>")
	v.SetDefault("support_email", "")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.addr", ":8000")
	v.SetDefault("server.debug_addr", ":4000")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("backend.api_base_url", "http://localhost:3000/api")
	v.SetDefault("backend.storage_base_url", "http://localhost:3000/storage")
	v.SetDefault("backend.timeout", 15*time.Second)
	v.SetDefault("backend.retry_count", 0)

	v.SetDefault("session.cookie_name", "console_token")
	v.SetDefault("session.cookie_secure", !debug)
	v.SetDefault("session.max_age", 7*24*time.Hour)

	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.ttl", 30*time.Second)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)

	v.SetDefault("database.driver", "memory")
	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "console")
	v.SetDefault("database.password", "console")
	v.SetDefault("database.admin_user", "")
	v.SetDefault("database.admin_password", "")
	v.SetDefault("database.name", "console")
	v.SetDefault("database.disable_tls", debug)
}

// Validate checks the settings the console cannot start without.
func (c *Config) Validate() error {
	if c.Backend.APIBaseURL == "" {
		return errors.New("config: backend api base url is required")
	}
	switch c.Cache.Driver {
	case "memory", "redis":
	default:
		return errors.Errorf("config: unknown cache driver %q", c.Cache.Driver)
	}
	switch c.Database.Driver {
	case "memory", "postgres":
	default:
		return errors.Errorf("config: unknown database driver %q", c.Database.Driver)
	}
	if c.SecretKey == "" {
		return errors.New("config: secret key is required")
	}
	if !isLocalEnv(c.Env) && (c.SecretKey == devSecretKey || len(c.SecretKey) < minSecretKeyLen) {
		return errors.Errorf("config: %s needs its own secret key of at least %d characters", c.Env, minSecretKeyLen)
	}
	return nil
}

// SupportAddress parses SupportEmail, the reply-to address of console emails.
func (c *Config) SupportAddress() (mail.Address, bool) {
	if c.SupportEmail == "" {
		return mail.Address{}, false
	}
	addr, err := mail.ParseAddress(c.SupportEmail)
	if err != nil {
		return mail.Address{}, false
	}
	return *addr, true
}

// DefaultFromAddress parses DefaultFromEmail, falling back to a bare noreply address.
func (c *Config) DefaultFromAddress() mail.Address {
	if addr, err := mail.ParseAddress(c.DefaultFromEmail); err == nil {
		return *addr
	}
	return mail.Address{Name: c.AppName, Address: "noreply@localhost"}
}
