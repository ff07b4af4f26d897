package config

import (
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DB_DRIVER", "JWT_TTL", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "SNAPSHOT_CRON"} {
		t.Setenv(k, "")
	}
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, 72*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 5.0, cfg.RateLimitRPS)
	assert.Equal(t, 10, cfg.RateLimitBurst)
	assert.Equal(t, "5 0 * * *", cfg.SnapshotCron)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9000")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DB_PATH", "/tmp/x.db")
	t.Setenv("JWT_TTL", "30m")
	t.Setenv("RATE_LIMIT_RPS", "0.5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Equal(t, "/tmp/x.db", cfg.DSN())
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.Equal(t, 0.5, cfg.RateLimitRPS)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestValidateDriver(t *testing.T) {
	c := &Config{JWTSecret: "x", JWTTTL: time.Hour}
	c.DB.Driver = "mysql"
	assert.ErrorContains(t, c.Validate(), "DB_DRIVER")
}

func TestPostgresDSN(t *testing.T) {
	c := &Config{}
	c.DB.Driver = "postgres"
	c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.Name = "db", "5432", "u", "p", "cal"
	assert.Equal(t, "host=db user=u password=p dbname=cal port=5432 sslmode=disable", c.DSN())
}

func TestInitDBSQLite(t *testing.T) {
	c := &Config{}
	c.DB.Driver = "sqlite"
	c.DB.Path = ":memory:"

	log := logrus.New()
	log.Out = io.Discard
	db, err := InitDB(c, log)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()

	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasTable("meal_entries"))
}

func TestLoadStore(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("API_URL", "")
	cfg, err := LoadStore()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Backend)
	assert.Equal(t, "http://localhost:8080/api", cfg.APIURL)

	t.Setenv("STORE_BACKEND", "Redis")
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("REDIS_DB", "2")
	cfg, err = LoadStore()
	require.NoError(t, err)
	assert.Equal(t, "redis", cfg.Backend)
	assert.Equal(t, "cache:6380", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)

	t.Setenv("STORE_BACKEND", "s3")
	t.Setenv("S3_BUCKET", "")
	_, err = LoadStore()
	assert.ErrorContains(t, err, "S3_BUCKET")

	t.Setenv("S3_BUCKET", "tracker")
	t.Setenv("S3_REGION", "")
	t.Setenv("AWS_REGION", "eu-west-1")
	cfg, err = LoadStore()
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.S3.Region)

	t.Setenv("STORE_BACKEND", "sqlite")
	_, err = LoadStore()
	assert.ErrorContains(t, err, "STORE_BACKEND")
}
