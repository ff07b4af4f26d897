package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// Backend selects and configures a KV implementation.
type Backend struct {
	Kind      string // memory, redis or s3
	KeyPrefix string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	S3Bucket string
	S3Region string
}

// OpenKV builds the KV described by b.
func OpenKV(ctx context.Context, b Backend) (KV, error) {
	switch b.Kind {
	case "", "memory":
		return NewMemoryKV(), nil
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     b.RedisAddr,
			Password: b.RedisPassword,
			DB:       b.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("connect redis %s: %w", b.RedisAddr, err)
		}
		return NewRedisKV(client, b.KeyPrefix, 0), nil
	case "s3":
		if b.S3Bucket == "" {
			return nil, errors.New("s3 backend needs a bucket")
		}
		api, err := NewS3Client(ctx, b.S3Region)
		if err != nil {
			return nil, err
		}
		return NewS3KV(api, b.S3Bucket, b.KeyPrefix), nil
	}
	return nil, fmt.Errorf("unknown store backend %q", b.Kind)
}
