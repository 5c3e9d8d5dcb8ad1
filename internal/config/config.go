package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	SQLitePath             string
	RedisURL               string
	NATSURL                string
	SyncChannel            string
	SyncKeepAlive          time.Duration
	ClientTTL              time.Duration
	SnapshotSlot           string
	ReportCacheTTL         time.Duration
	AdminPasscode          string
	JWTSecret              string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// RemoteEnabled reports whether a remote document store is configured.
func (c Config) RemoteEnabled() bool {
	return strings.TrimSpace(c.DatabaseURL) != ""
}

// AuthEnabled reports whether bearer tokens are required on mutating routes.
func (c Config) AuthEnabled() bool {
	return strings.TrimSpace(c.JWTSecret) != ""
}

// CloudinaryEnabled reports whether backups can be uploaded.
func (c Config) CloudinaryEnabled() bool {
	return c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("PODGRADE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Pod Grading API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("sqlite.path", "podgrade.db")
	v.SetDefault("sync.channel", "podgrade")
	v.SetDefault("sync.keepalive", "25s")
	v.SetDefault("sync.client_ttl", "24h")
	v.SetDefault("snapshot.slot", "appState")
	v.SetDefault("report.cache_ttl", "5m")
	v.SetDefault("admin.passcode", "")
	v.SetDefault("cloudinary.folder", "podgrade/backups")

	reportTTL, err := parseDuration(v, "report.cache_ttl")
	if err != nil {
		return Config{}, err
	}
	keepAlive, err := parseDuration(v, "sync.keepalive")
	if err != nil {
		return Config{}, err
	}
	clientTTL, err := parseDuration(v, "sync.client_ttl")
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		SQLitePath:             v.GetString("sqlite.path"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		SyncChannel:            strings.TrimSpace(v.GetString("sync.channel")),
		SyncKeepAlive:          keepAlive,
		ClientTTL:              clientTTL,
		SnapshotSlot:           strings.TrimSpace(v.GetString("snapshot.slot")),
		ReportCacheTTL:         reportTTL,
		AdminPasscode:          v.GetString("admin.passcode"),
		JWTSecret:              v.GetString("jwt.secret"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
	}

	if cfg.SnapshotSlot == "" {
		return Config{}, fmt.Errorf("snapshot slot must not be empty")
	}
	if cfg.SyncChannel == "" {
		cfg.SyncChannel = "podgrade"
	}
	if strings.TrimSpace(cfg.SQLitePath) == "" {
		return Config{}, fmt.Errorf("sqlite path must not be empty")
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}
