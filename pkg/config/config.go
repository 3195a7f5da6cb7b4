package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "billfold"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "BILLFOLD_DB_DSN"
	EnvDBHost = "BILLFOLD_DB_HOST"
	EnvDBUser = "BILLFOLD_DB_USER"
	EnvDBName = "BILLFOLD_DB_NAME"
)

var fallbackDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App             AppConfig
	DB              DBConfig
	Redis           RedisConfig
	JWT             JWTConfig
	Upload          UploadConfig
	OCR             OCRConfig
	GCS             GCSConfig
	GCP             GCPConfig
	APIKey          APIKeyConfig
	UploadRateLimit UploadRateLimitConfig
	Cron            CronConfig
	FeatureFlags    FeatureFlagsConfig
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
	Env          string `envconfig:"BILLFOLD_APP_ENV" required:"true"`
	Port         string `envconfig:"BILLFOLD_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BILLFOLD_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BILLFOLD_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"BILLFOLD_DB_DSN"`
	Driver string `envconfig:"BILLFOLD_DB_DRIVER" default:"postgres"`

	FallbackHost     string `envconfig:"BILLFOLD_DB_HOST"`
	FallbackPort     int    `envconfig:"BILLFOLD_DB_PORT" default:"5432"`
	FallbackUser     string `envconfig:"BILLFOLD_DB_USER"`
	FallbackPassword string `envconfig:"BILLFOLD_DB_PASSWORD"`
	FallbackName     string `envconfig:"BILLFOLD_DB_NAME"`
	FallbackSSLMode  string `envconfig:"BILLFOLD_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BILLFOLD_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BILLFOLD_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BILLFOLD_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BILLFOLD_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"BILLFOLD_REDIS_URL" required:"true"`
	Address      string        `envconfig:"BILLFOLD_REDIS_ADDR"`
	Password     string        `envconfig:"BILLFOLD_REDIS_PASSWORD"`
	DB           int           `envconfig:"BILLFOLD_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BILLFOLD_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BILLFOLD_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BILLFOLD_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BILLFOLD_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BILLFOLD_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig verifies tokens minted by the external identity provider.
type JWTConfig struct {
	Secret            string `envconfig:"BILLFOLD_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BILLFOLD_JWT_ISSUER" required:"true"`
	SessionTTLMinutes int    `envconfig:"BILLFOLD_SESSION_TTL_MINUTES" default:"43200"`
}

// SessionTTL returns the session TTL configured in minutes.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type UploadConfig struct {
	MaxFileMB    int `envconfig:"BILLFOLD_UPLOAD_MAX_FILE_MB" default:"10"`
	MaxBatchSize int `envconfig:"BILLFOLD_UPLOAD_MAX_BATCH_SIZE" default:"10"`
}

// MaxFileBytes returns the per-file upload cap in bytes.
func (u UploadConfig) MaxFileBytes() int64 {
	return int64(u.MaxFileMB) << 20
}

type OCRConfig struct {
	PrimaryURL      string        `envconfig:"BILLFOLD_OCR_PRIMARY_URL"`
	PrimaryAPIKey   string        `envconfig:"BILLFOLD_OCR_PRIMARY_API_KEY"`
	PrimaryModel    string        `envconfig:"BILLFOLD_OCR_PRIMARY_MODEL" default:"gpt-4o-mini"`
	SecondaryURL    string        `envconfig:"BILLFOLD_OCR_SECONDARY_URL"`
	SecondaryAPIKey string        `envconfig:"BILLFOLD_OCR_SECONDARY_API_KEY"`
	RequestTimeout  time.Duration `envconfig:"BILLFOLD_OCR_REQUEST_TIMEOUT" default:"60s"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"BILLFOLD_GCS_BUCKET_NAME" required:"true"`
	DownloadURLExpiry time.Duration `envconfig:"BILLFOLD_GCS_DOWNLOAD_URL_EXPIRY" default:"15m"`
}

type GCPConfig struct {
	CredentialsJSON        string `envconfig:"BILLFOLD_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"GOOGLE_APPLICATION_CREDENTIALS"`
}

type APIKeyConfig struct {
	ArgonMemoryKB    int `envconfig:"BILLFOLD_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"BILLFOLD_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"BILLFOLD_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"BILLFOLD_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"BILLFOLD_ARGON_KEY_LEN" default:"32"`
}

type UploadRateLimitConfig struct {
	Window   time.Duration `envconfig:"BILLFOLD_UPLOAD_RATE_LIMIT_WINDOW" default:"1m"`
	OrgLimit int           `envconfig:"BILLFOLD_UPLOAD_RATE_LIMIT_ORG_LIMIT" default:"30"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"BILLFOLD_CRON_INTERVAL" default:"1h"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"BILLFOLD_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"BILLFOLD_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	fallbackValues := map[string]string{
		EnvDBHost: db.FallbackHost,
		EnvDBUser: db.FallbackUser,
		EnvDBName: db.FallbackName,
	}
	for _, env := range fallbackDBEnvVars {
		if fallbackValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.FallbackUser)
	if db.FallbackPassword != "" {
		userInfo = url.UserPassword(db.FallbackUser, db.FallbackPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.FallbackHost, db.FallbackPort),
		Path:   db.FallbackName,
	}

	if db.FallbackSSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.FallbackSSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
