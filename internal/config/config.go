package config

import (
	"time"

	"github.com/caarlos0/env/v9"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8080"`

	DBDriver               string `env:"DB_DRIVER" envDefault:"mysql"` // mysql or postgres
	DBUser                 string `env:"DB_USER,required"`
	DBPassword             string `env:"DB_PASSWORD,required"`
	DBHost                 string `env:"DB_HOST,required"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName                 string `env:"DB_NAME,required"`
	DBPort                 string `env:"DB_PORT" envDefault:"3306"`
	InstanceConnectionName string `env:"INSTANCE_CONNECTION_NAME"`
	DBAutoMigrate          bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`

	JWTSecret string        `env:"JWT_SECRET,required"`
	JWTIssuer string        `env:"JWT_ISSUER" envDefault:"book-market"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"720h"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogJSON  bool   `env:"LOG_JSON" envDefault:"true"`
	LogFile  string `env:"LOG_FILE"`

	RedisAddr       string        `env:"REDIS_ADDR"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB" envDefault:"0"`
	CatalogCacheTTL time.Duration `env:"CATALOG_CACHE_TTL" envDefault:"60s"`

	Storage Storage

	UploadMaxBytes int64   `env:"UPLOAD_MAX_BYTES" envDefault:"5242880"`
	AuthRateLimit  float64 `env:"AUTH_RATE_LIMIT" envDefault:"5"`

	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`

	CORSAllowOrigins []string `env:"CORS_ALLOW_ORIGINS" envSeparator:","`

	GitSHA    string `env:"GIT_SHA" envDefault:"dev"`
	BuildTime string `env:"BUILD_TIME"`
}

// Storage holds blob-host settings. Credentials only ever come from here.
type Storage struct {
	Driver             string `env:"STORAGE_DRIVER" envDefault:"gcs"` // gcs, minio or memory
	Bucket             string `env:"STORAGE_BUCKET"`
	GCSCredentialsFile string `env:"GCS_CREDENTIALS_FILE"`
	MinioEndpoint      string `env:"MINIO_ENDPOINT"`
	MinioAccessKey     string `env:"MINIO_ACCESS_KEY"`
	MinioSecretKey     string `env:"MINIO_SECRET_KEY"`
	MinioUseSSL        bool   `env:"MINIO_USE_SSL" envDefault:"false"`
	MinioPublicBaseURL string `env:"MINIO_PUBLIC_BASE_URL"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
