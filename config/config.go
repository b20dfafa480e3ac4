// Package config loads application settings into an explicit Config value.
//
// Settings are merged in order: built-in defaults, then config/app.json,
// then .env. The resulting *Config is built once at startup and handed to
// the components that need it; nothing in the application reads the
// process environment directly.
package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultAppPort    = "5000"
	defaultAppEnv     = "local"
	defaultMongoURI   = "mongodb://localhost:27017"
	defaultMongoDB    = "bazaar"
	defaultRedisAddr  = "localhost:6379"
	defaultAccessTTL  = 24 * time.Hour
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// Config holds every setting the application needs. Components receive it
// (or a sub-struct) by reference at construction time.
type Config struct {
	AppPort string
	AppEnv  string

	MongoURI string
	MongoDB  string

	RedisAddr     string
	RedisPassword string

	// Token signing. Access and refresh tokens use independent secrets.
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration

	SMTP SMTP

	// BusinessEmail receives order-confirmation notices.
	BusinessEmail string

	S3 S3

	// UploadDir holds files temporarily while they are relayed to S3.
	UploadDir string
	// MaxUploadBytes caps a single uploaded file (default 1 MiB).
	MaxUploadBytes int64
}

// SMTP holds mail relay credentials.
type SMTP struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// S3 holds object-storage settings. Works with AWS S3, MinIO,
// DigitalOcean Spaces, and Cloudflare R2.
type S3 struct {
	Bucket   string
	Region   string
	Key      string
	Secret   string
	Endpoint string // leave empty for real AWS
	BaseURL  string
}

// Load builds a Config from defaults, config/app.json, and .env.
func Load() (*Config, error) {
	return load("config/app.json", ".env")
}

func load(configPath, envPath string) (*Config, error) {
	values := map[string]string{}

	if err := mergeJSONConfig(configPath, values); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}
	if err := mergeDotEnv(envPath, values); err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	get := func(key, fallback string) string {
		if v := strings.TrimSpace(values[key]); v != "" {
			return v
		}
		return fallback
	}

	cfg := &Config{
		AppPort:       get("APP_PORT", defaultAppPort),
		AppEnv:        get("APP_ENV", defaultAppEnv),
		MongoURI:      get("MONGODB_URL", defaultMongoURI),
		MongoDB:       get("MONGODB_DB", defaultMongoDB),
		RedisAddr:     get("REDIS_ADDR", defaultRedisAddr),
		RedisPassword: get("REDIS_PASSWORD", ""),
		AccessSecret:  get("ACCESS_TOKEN_SECRET", ""),
		RefreshSecret: get("REFRESH_TOKEN_SECRET", ""),
		AccessTTL:     defaultAccessTTL,
		RefreshTTL:    defaultRefreshTTL,
		SMTP: SMTP{
			Host:     get("MAIL_HOST", "smtp.gmail.com"),
			Port:     get("MAIL_PORT", "587"),
			Username: get("MAIL_USERNAME", ""),
			Password: get("MAIL_PASSWORD", ""),
			From:     get("MAIL_FROM", "orders@bazaar.app"),
			FromName: get("MAIL_FROM_NAME", "Bazaar"),
		},
		BusinessEmail: get("BUSINESS_EMAIL", ""),
		S3: S3{
			Bucket:   get("S3_BUCKET", ""),
			Region:   get("S3_REGION", "us-east-1"),
			Key:      get("S3_KEY", ""),
			Secret:   get("S3_SECRET", ""),
			Endpoint: get("S3_ENDPOINT", ""),
			BaseURL:  strings.TrimRight(get("S3_URL", ""), "/"),
		},
		UploadDir:      get("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: 1 << 20,
	}

	if raw := get("MAX_UPLOAD_BYTES", ""); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("config: invalid MAX_UPLOAD_BYTES %q", raw)
		}
		cfg.MaxUploadBytes = n
	}
	if raw := get("ACCESS_TOKEN_TTL", ""); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("config: invalid ACCESS_TOKEN_TTL %q", raw)
		}
		cfg.AccessTTL = d
	}
	if raw := get("REFRESH_TOKEN_TTL", ""); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("config: invalid REFRESH_TOKEN_TTL %q", raw)
		}
		cfg.RefreshTTL = d
	}

	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, fmt.Errorf("config: ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must be set")
	}

	return cfg, nil
}

func mergeJSONConfig(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var raw map[string]interface{}
	if err := json.NewDecoder(file).Decode(&raw); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	for key, val := range raw {
		s, ok := val.(string)
		if !ok {
			continue
		}

		k := strings.ToUpper(strings.TrimSpace(key))
		if k == "" {
			continue
		}
		out[k] = strings.TrimSpace(s)
	}

	return nil
}

func mergeDotEnv(path string, out map[string]string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}

		key := strings.ToUpper(strings.TrimSpace(line[:idx]))
		value := strings.TrimSpace(line[idx+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}
		out[key] = value
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	return nil
}
