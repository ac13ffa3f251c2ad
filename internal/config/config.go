package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreMongo    = "mongo"
	StorePostgres = "postgres"
	StoreMemory   = "memory"

	MailSMTP     = "smtp"
	MailRabbitMQ = "rabbitmq"
	MailLog      = "log"
)

type Config struct {
	//App
	Env string // dev / staging / prod
	//HTTP
	HTTPAddr         string
	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// Browser-facing
	CORSAllowedOrigins []string
	SecurityHeaders    bool

	//Auth / Security
	JWTSecret               string
	JWTIssuer               string
	AccessTokenTTL          time.Duration
	BcryptCost              int
	TokenDistinguishExpired bool

	// Password reset
	PasswordResetBaseURL    string
	PasswordResetTokenTTL   time.Duration
	ResetRevealUnknownEmail bool
	ResetExposeToken        bool

	// Credential store
	StoreDriver   string
	MongoURI      string
	MongoDatabase string
	DBAddr        string
	DBDebug       bool
	SeedDevUsers  bool

	// Email dispatch
	MailTransport  string
	MailFrom       string
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	SMTPTimeout    time.Duration
	SMTPInsecure   bool
	RabbitURL      string
	RabbitExchange string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real env vars win over it.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:      getEnv("ENV", "dev"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
	}
	var err error

	// required values
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing required env var: JWT_SECRET")
	}
	cfg.JWTIssuer = getEnv("JWT_ISSUER", "user-service")

	if cfg.AccessTokenTTL, err = getDuration("ACCESS_TOKEN_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.PasswordResetTokenTTL, err = getDuration("PASSWORD_RESET_TOKEN_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.BcryptCost, err = getInt("BCRYPT_COST", 12); err != nil {
		return nil, err
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", cfg.BcryptCost)
	}
	if cfg.TokenDistinguishExpired, err = getBool("TOKEN_DISTINGUISH_EXPIRED", false); err != nil {
		return nil, err
	}

	// The service appends the raw token to this URL.
	cfg.PasswordResetBaseURL = os.Getenv("PASSWORD_RESET_BASE_URL")
	if cfg.PasswordResetBaseURL == "" {
		return nil, fmt.Errorf("missing required env var: PASSWORD_RESET_BASE_URL")
	}
	if !strings.Contains(cfg.PasswordResetBaseURL, "token=") {
		return nil, fmt.Errorf("PASSWORD_RESET_BASE_URL must contain `token=`")
	}
	if cfg.ResetRevealUnknownEmail, err = getBool("RESET_REVEAL_UNKNOWN_EMAIL", true); err != nil {
		return nil, err
	}
	if cfg.ResetExposeToken, err = getBool("RESET_EXPOSE_TOKEN", true); err != nil {
		return nil, err
	}

	if err := cfg.loadStore(); err != nil {
		return nil, err
	}
	if err := cfg.loadMail(); err != nil {
		return nil, err
	}

	//Timeout values are optional and have a default value if not
	if cfg.HTTPReadTimeout, err = getDuration("HTTP_READ_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPWriteTimeout, err = getDuration("HTTP_WRITE_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.HTTPIdleTimeout, err = getDuration("HTTP_IDLE_TIMEOUT", time.Minute); err != nil {
		return nil, err
	}

	// Empty means no CORS headers at all.
	cfg.CORSAllowedOrigins = getList("CORS_ALLOWED_ORIGINS")
	if cfg.SecurityHeaders, err = getBool("SECURITY_HEADERS_ENABLED", true); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Backing services are required for the selected driver only.
// Fail fast here to avoid starting in a partially-initialized state.
func (cfg *Config) loadStore() error {
	var err error
	cfg.StoreDriver = strings.ToLower(getEnv("STORE_DRIVER", StoreMongo))
	if cfg.SeedDevUsers, err = getBool("SEED_DEV_USERS", cfg.Env == "dev"); err != nil {
		return err
	}

	switch cfg.StoreDriver {
	case StoreMongo:
		cfg.MongoURI = os.Getenv("MONGO_URI")
		if cfg.MongoURI == "" {
			return fmt.Errorf("missing required env var: MONGO_URI")
		}
		cfg.MongoDatabase = getEnv("MONGO_DATABASE", "users")
	case StorePostgres:
		cfg.DBAddr = os.Getenv("DB_ADDR")
		if cfg.DBAddr == "" {
			return fmt.Errorf("missing required env var: DB_ADDR")
		}
		if cfg.DBDebug, err = getBool("DB_DEBUG", false); err != nil {
			return err
		}
	case StoreMemory:
		if cfg.Env == "prod" {
			return fmt.Errorf("STORE_DRIVER=memory is not allowed in prod")
		}
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q (want mongo, postgres or memory)", cfg.StoreDriver)
	}
	return nil
}

func (cfg *Config) loadMail() error {
	var err error
	cfg.MailTransport = strings.ToLower(getEnv("MAIL_TRANSPORT", MailLog))
	cfg.MailFrom = getEnv("MAIL_FROM", "no-reply@user-service.local")

	switch cfg.MailTransport {
	case MailSMTP:
		cfg.SMTPHost = os.Getenv("SMTP_HOST")
		if cfg.SMTPHost == "" {
			return fmt.Errorf("missing required env var: SMTP_HOST")
		}
		if cfg.SMTPPort, err = getInt("SMTP_PORT", 587); err != nil {
			return err
		}
		cfg.SMTPUsername = os.Getenv("SMTP_USERNAME")
		cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")
		if cfg.SMTPTimeout, err = getDuration("SMTP_TIMEOUT", 10*time.Second); err != nil {
			return err
		}
		if cfg.SMTPInsecure, err = getBool("SMTP_INSECURE", false); err != nil {
			return err
		}
	case MailRabbitMQ:
		cfg.RabbitURL = os.Getenv("RABBIT_URL")
		if cfg.RabbitURL == "" {
			return fmt.Errorf("missing required env var: RABBIT_URL")
		}
		cfg.RabbitExchange = getEnv("RABBIT_EXCHANGE", "user.events")
	case MailLog:
		if cfg.Env == "prod" {
			return fmt.Errorf("MAIL_TRANSPORT=log is not allowed in prod")
		}
	default:
		return fmt.Errorf("invalid MAIL_TRANSPORT %q (want smtp, rabbitmq or log)", cfg.MailTransport)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid duration for %s: %q: must be positive", key, v)
	}
	return d, nil
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %q: %w", key, v, err)
	}
	return n, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid bool for %s: %q: %w", key, v, err)
	}
	return b, nil
}

// getList splits a comma-separated env var, dropping blanks.
func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
