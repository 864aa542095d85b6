package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Stripe        StripeConfig
	Assistant     AssistantConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"RENTARIDE_APP_ENV" required:"true"`
	Port         string `envconfig:"RENTARIDE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"RENTARIDE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"RENTARIDE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"RENTARIDE_DB_DSN"`
	Driver string `envconfig:"RENTARIDE_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"RENTARIDE_DB_HOST"`
	Port     int    `envconfig:"RENTARIDE_DB_PORT" default:"5432"`
	User     string `envconfig:"RENTARIDE_DB_USER"`
	Password string `envconfig:"RENTARIDE_DB_PASSWORD"`
	Name     string `envconfig:"RENTARIDE_DB_NAME"`
	SSLMode  string `envconfig:"RENTARIDE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"RENTARIDE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"RENTARIDE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"RENTARIDE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"RENTARIDE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"RENTARIDE_REDIS_URL" required:"true"`
	Password     string        `envconfig:"RENTARIDE_REDIS_PASSWORD"`
	DB           int           `envconfig:"RENTARIDE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"RENTARIDE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"RENTARIDE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"RENTARIDE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"RENTARIDE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"RENTARIDE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"RENTARIDE_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"RENTARIDE_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"RENTARIDE_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"RENTARIDE_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"RENTARIDE_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"RENTARIDE_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"RENTARIDE_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"RENTARIDE_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"RENTARIDE_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"RENTARIDE_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"RENTARIDE_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"RENTARIDE_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"RENTARIDE_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"RENTARIDE_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"RENTARIDE_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"RENTARIDE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"RENTARIDE_AUTO_MIGRATE" default:"false"`
}

type StripeConfig struct {
	APIKey              string `envconfig:"RENTARIDE_STRIPE_API_KEY"`
	Env                 string `envconfig:"RENTARIDE_STRIPE_ENV" default:"test"`
	SubscriptionPriceID string `envconfig:"RENTARIDE_STRIPE_SUBSCRIPTION_PRICE_ID"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// Configured reports whether a Stripe secret key is present at all.
func (s StripeConfig) Configured() bool {
	return strings.TrimSpace(s.APIKey) != ""
}

type AssistantConfig struct {
	APIKey  string `envconfig:"RENTARIDE_ASSISTANT_API_KEY"`
	Model   string `envconfig:"RENTARIDE_ASSISTANT_MODEL" default:"gpt-4o-mini"`
	BaseURL string `envconfig:"RENTARIDE_ASSISTANT_BASE_URL"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"RENTARIDE_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	BookingTopic        string `envconfig:"RENTARIDE_PUBSUB_BOOKING_TOPIC" default:"rr-booking-events"`
	BookingSubscription string `envconfig:"RENTARIDE_PUBSUB_BOOKING_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"RENTARIDE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"RENTARIDE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"RENTARIDE_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	parts := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range requiredDBEnvVars {
		if parts[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
