package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AppConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DbConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
}

type JWTConfig struct {
	Secret    string
	AccessTTL time.Duration
}

// RootConfig describes the built-in administrative identity. It has no
// backing row in the users table.
type RootConfig struct {
	Email    string
	Password string
	HashCost int
}

type UploadConfig struct {
	Dir      string
	MaxBytes int64
}

type Config struct {
	AppConfig    *AppConfig
	DbConfig     *DbConfig
	JWTConfig    *JWTConfig
	RootConfig   *RootConfig
	UploadConfig *UploadConfig
}

func LoadConfig(logger *zap.Logger) (*Config, error) {
	/** db config */
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		return nil, fmt.Errorf("POSTGRES_DSN is not set")
	}

	maxOpenConns, err := intOrDefault("DB_MAX_OPEN_CONNS", 10)
	if err != nil {
		return nil, err
	}
	maxIdleConns, err := intOrDefault("DB_MAX_IDLE_CONNS", 10)
	if err != nil {
		return nil, err
	}
	maxConnLifetime, err := durationOrDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	if err != nil {
		return nil, err
	}

	dbConfig := &DbConfig{
		DSN:             dsn,
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		MaxConnLifetime: maxConnLifetime,
	}

	/** app config */
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	readTimeout, err := durationOrDefault("APP_READ_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	writeTimeout, err := durationOrDefault("APP_WRITE_TIMEOUT", 15*time.Second)
	if err != nil {
		return nil, err
	}
	idleTimeout, err := durationOrDefault("APP_IDLE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, err
	}

	appConfig := &AppConfig{
		Port:         port,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	/** jwt config */
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	accessTTL, err := durationOrDefault("JWT_ACCESS_TTL", time.Hour)
	if err != nil {
		return nil, err
	}
	jwtConfig := &JWTConfig{
		Secret:    secret,
		AccessTTL: accessTTL,
	}

	/** root user config */
	rootEmail := os.Getenv("ROOT_EMAIL")
	if rootEmail == "" {
		return nil, fmt.Errorf("ROOT_EMAIL is not set")
	}
	rootPassword := os.Getenv("ROOT_PASSWORD")
	if rootPassword == "" {
		return nil, fmt.Errorf("ROOT_PASSWORD is not set")
	}
	hashCost, err := intOrDefault("HASH_COST", bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	rootConfig := &RootConfig{
		Email:    rootEmail,
		Password: rootPassword,
		HashCost: hashCost,
	}

	/** upload config */
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "./data"
	}
	maxBytes, err := intOrDefault("UPLOAD_MAX_BYTES", 10*1024)
	if err != nil {
		return nil, err
	}
	uploadConfig := &UploadConfig{
		Dir:      uploadDir,
		MaxBytes: int64(maxBytes),
	}

	logger.Debug("configuration loaded",
		zap.String("port", port),
		zap.Duration("access_ttl", accessTTL),
		zap.String("upload_dir", uploadDir),
	)

	return &Config{
		AppConfig:    appConfig,
		DbConfig:     dbConfig,
		JWTConfig:    jwtConfig,
		RootConfig:   rootConfig,
		UploadConfig: uploadConfig,
	}, nil
}

func intOrDefault(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}

func durationOrDefault(key string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return v, nil
}
