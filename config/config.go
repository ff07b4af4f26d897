package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"calorietracker/models"

	"github.com/glebarez/sqlite"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	Port    string
	GinMode string

	DB struct {
		Driver   string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
		Path     string
	}

	JWTSecret string
	JWTTTL    time.Duration

	LogLevel  string
	LogFormat string

	RateLimitRPS   float64
	RateLimitBurst int

	SnapshotCron string
}

func newViper() (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	return v, nil
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_PATH", "calorietracker.db")
	v.SetDefault("JWT_TTL", "72h")
	v.SetDefault("RATE_LIMIT_RPS", 5)
	v.SetDefault("RATE_LIMIT_BURST", 10)
	v.SetDefault("SNAPSHOT_CRON", "5 0 * * *")

	cfg := &Config{
		Port:           v.GetString("PORT"),
		GinMode:        v.GetString("GIN_MODE"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		JWTTTL:         v.GetDuration("JWT_TTL"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		LogFormat:      v.GetString("LOG_FORMAT"),
		RateLimitRPS:   v.GetFloat64("RATE_LIMIT_RPS"),
		RateLimitBurst: v.GetInt("RATE_LIMIT_BURST"),
		SnapshotCron:   v.GetString("SNAPSHOT_CRON"),
	}
	cfg.DB.Driver = strings.ToLower(v.GetString("DB_DRIVER"))
	cfg.DB.Host = v.GetString("DB_HOST")
	cfg.DB.Port = v.GetString("DB_PORT")
	cfg.DB.User = v.GetString("DB_USER")
	cfg.DB.Password = v.GetString("DB_PASSWORD")
	cfg.DB.Name = v.GetString("DB_NAME")
	cfg.DB.Path = v.GetString("DB_PATH")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.JWTTTL <= 0 {
		return errors.New("JWT_TTL must be a positive duration")
	}
	switch c.DB.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver)
	}
	return nil
}

// StoreConfig configures the client-side session store used by the
// session commands.
type StoreConfig struct {
	APIURL  string
	Backend string // memory, redis or s3

	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	S3 struct {
		Bucket string
		Region string
	}
	KeyPrefix string

	LogLevel  string
	LogFormat string
}

// LoadStore reads the session store settings. It does not need the server's
// database or JWT settings.
func LoadStore() (*StoreConfig, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	v.SetDefault("API_URL", "http://localhost:8080/api")
	v.SetDefault("STORE_BACKEND", "memory")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("STORE_KEY_PREFIX", "calorietracker/")

	cfg := &StoreConfig{
		APIURL:    v.GetString("API_URL"),
		Backend:   strings.ToLower(v.GetString("STORE_BACKEND")),
		KeyPrefix: v.GetString("STORE_KEY_PREFIX"),
		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),
	}
	cfg.Redis.Addr = v.GetString("REDIS_ADDR")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")
	cfg.S3.Bucket = v.GetString("S3_BUCKET")
	cfg.S3.Region = v.GetString("S3_REGION")
	if cfg.S3.Region == "" {
		cfg.S3.Region = v.GetString("AWS_REGION")
	}

	switch cfg.Backend {
	case "memory", "redis":
	case "s3":
		if cfg.S3.Bucket == "" {
			return nil, errors.New("S3_BUCKET is required when STORE_BACKEND=s3")
		}
	default:
		return nil, fmt.Errorf("unsupported STORE_BACKEND %q", cfg.Backend)
	}
	return cfg, nil
}

func (c *Config) DSN() string {
	if c.DB.Driver == "sqlite" {
		return c.DB.Path
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DB.Host, c.DB.User, c.DB.Password, c.DB.Name, c.DB.Port)
}

// InitDB opens the configured database. Tables are created by Migrate.
func InitDB(c *Config, log *logrus.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch c.DB.Driver {
	case "sqlite":
		dialector = sqlite.Open(c.DSN())
	default:
		dialector = postgres.Open(c.DSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(log, logger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      logger.Warn,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s database: %w", c.DB.Driver, err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.FoodItem{},
		&models.MealEntry{},
		&models.DailyProgress{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
