package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultJWTSecret is only suitable for local development.
const DefaultJWTSecret = "dev-secret-change-me"

// Config holds runtime settings loaded from the environment.
type Config struct {
	Addr      string
	GRPCAddr  string
	StaticDir string

	Latency       time.Duration
	TickInterval  time.Duration
	SpawnInterval time.Duration
	FlushInterval time.Duration

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string

	JWTSecret string
	JWTIssuer string

	// AdminPasswordHash is a bcrypt hash; login is disabled while it is empty.
	AdminUsername     string
	AdminPasswordHash string

	MongoURI      string
	MongoDatabase string
	RedisAddr     string
	RedisChannel  string

	Log LogConfig
}

// LogConfig configures the logging package.
type LogConfig struct {
	Level      string
	Format     string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// Load reads an optional .env file and then ARENA_* environment variables.
// Files that do not exist are skipped; any other read error is returned.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	v.SetEnvPrefix("ARENA")
	v.AutomaticEnv()
	setDefaults(v)

	cfg := Config{
		Addr:          v.GetString("addr"),
		GRPCAddr:      v.GetString("grpc_addr"),
		StaticDir:     v.GetString("static_dir"),
		Latency:       positive(v.GetDuration("latency"), LATENCY),
		TickInterval:  positive(v.GetDuration("tick_interval"), TICK_INTERVAL),
		SpawnInterval: positive(v.GetDuration("spawn_interval"), SPAWN_INTERVAL),
		FlushInterval: positive(v.GetDuration("flush_interval"), FLUSH_INTERVAL),
		ReadTimeout:   positive(v.GetDuration("read_timeout"), 15*time.Second),
		WriteTimeout:  positive(v.GetDuration("write_timeout"), 15*time.Second),
		CORSOrigins:   splitList(v.GetString("cors_origins")),
		JWTSecret:     v.GetString("jwt_secret"),
		JWTIssuer:     v.GetString("jwt_issuer"),

		AdminUsername:     v.GetString("admin_username"),
		AdminPasswordHash: v.GetString("admin_password_hash"),

		MongoURI:      v.GetString("mongo_uri"),
		MongoDatabase: v.GetString("mongo_db"),
		RedisAddr:     v.GetString("redis_addr"),
		RedisChannel:  v.GetString("redis_channel"),
		Log: LogConfig{
			Level:      v.GetString("log_level"),
			Format:     v.GetString("log_format"),
			File:       v.GetString("log_file"),
			MaxSizeMB:  v.GetInt("log_max_size_mb"),
			MaxBackups: v.GetInt("log_max_backups"),
			MaxAgeDays: v.GetInt("log_max_age_days"),
			Compress:   v.GetBool("log_compress"),
		},
	}
	// The flush period bounds delivery jitter, so it has to stay under the delay.
	if cfg.FlushInterval >= cfg.Latency {
		cfg.FlushInterval = cfg.Latency / 2
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", DefaultAddr)
	v.SetDefault("grpc_addr", "")
	v.SetDefault("static_dir", "")
	v.SetDefault("latency", LATENCY)
	v.SetDefault("tick_interval", TICK_INTERVAL)
	v.SetDefault("spawn_interval", SPAWN_INTERVAL)
	v.SetDefault("flush_interval", FLUSH_INTERVAL)
	v.SetDefault("read_timeout", 15*time.Second)
	v.SetDefault("write_timeout", 15*time.Second)
	v.SetDefault("cors_origins", "*")
	v.SetDefault("jwt_secret", DefaultJWTSecret)
	v.SetDefault("jwt_issuer", "coin-arena")
	v.SetDefault("admin_username", "admin")
	v.SetDefault("admin_password_hash", "")
	v.SetDefault("mongo_uri", "")
	v.SetDefault("mongo_db", "coin-arena")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_channel", "arena:results")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("log_file", "")
	v.SetDefault("log_max_size_mb", 50)
	v.SetDefault("log_max_backups", 3)
	v.SetDefault("log_max_age_days", 28)
	v.SetDefault("log_compress", false)
}

func positive(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
