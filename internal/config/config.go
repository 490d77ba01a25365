package config

import (
	"time"

	pkgconfig "github.com/Abduqodir7007/twitter-clone/pkg/config"
	"github.com/Abduqodir7007/twitter-clone/pkg/database"
	"github.com/Abduqodir7007/twitter-clone/pkg/log"
	"github.com/Abduqodir7007/twitter-clone/pkg/storage"
)

type Config struct {
	Server    ServerConfig
	Database  database.Config
	JWT       JWTConfig
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Storage   StorageConfig
	Log       log.Config
}

type ServerConfig struct {
	Host string
	Port int
}

type JWTConfig struct {
	Secret          string        `mapstructure:"secret"`
	AccessDuration  time.Duration `mapstructure:"access_duration"`
	RefreshDuration time.Duration `mapstructure:"refresh_duration"`
	Issuer          string        `mapstructure:"issuer"`
}

type WebSocketConfig struct {
	WriteWait      time.Duration `mapstructure:"write_wait"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
	SendBufferSize int           `mapstructure:"send_buffer_size"`
}

type StorageConfig struct {
	Backend string              `mapstructure:"backend"` // local or s3
	Local   storage.LocalConfig `mapstructure:"local"`
	S3      storage.S3Config    `mapstructure:"s3"`
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "twitter_clone")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.file_path", "./data/app.db")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)
	v.SetDefault("jwt.secret", "change-me")
	v.SetDefault("jwt.access_duration", "15m")
	v.SetDefault("jwt.refresh_duration", "168h")
	v.SetDefault("jwt.issuer", "twitter-clone")
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.ping_interval", "54s")
	v.SetDefault("websocket.max_message_size", 4096)
	v.SetDefault("websocket.send_buffer_size", 256)
	v.SetDefault("storage.backend", "local")
	v.SetDefault("storage.local.base_path", "./uploads")
	v.SetDefault("storage.local.url_base", "/uploads")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// Bind environment variables
	v.BindEnv("server.port", "PORT")
	v.BindEnv("database.driver", "DB_DRIVER")
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.dbname", "DB_NAME")
	v.BindEnv("database.sslmode", "DB_SSLMODE")
	v.BindEnv("database.file_path", "DB_FILE_PATH")
	v.BindEnv("jwt.secret", "JWT_SECRET")
	v.BindEnv("storage.backend", "STORAGE_BACKEND")
	v.BindEnv("storage.s3.endpoint", "S3_ENDPOINT")
	v.BindEnv("storage.s3.region", "S3_REGION")
	v.BindEnv("storage.s3.bucket", "S3_BUCKET")
	v.BindEnv("storage.s3.access_key_id", "S3_ACCESS_KEY_ID")
	v.BindEnv("storage.s3.secret_access_key", "S3_SECRET_ACCESS_KEY")
	v.BindEnv("log.level", "LOG_LEVEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
