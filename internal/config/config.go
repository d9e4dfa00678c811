package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Files    FilesConfig    `mapstructure:"files"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	External ExternalConfig `mapstructure:"external"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DatabaseConfig selects the session store. An empty URL means in-memory storage.
type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	Name           string        `mapstructure:"name"` // MongoDB database name
	ProbeTimeout   time.Duration `mapstructure:"probe_timeout"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	MaxConns       int32         `mapstructure:"max_conns"`
	AutoMigrate    bool          `mapstructure:"auto_migrate"`
}

// FilesConfig controls where uploaded PDFs and videos are kept.
type FilesConfig struct {
	Backend       string `mapstructure:"backend"` // "local" or "s3"
	UploadDir     string `mapstructure:"upload_dir"`
	MaxUploadSize int64  `mapstructure:"max_upload_size"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig configures session tokens.
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// ExternalConfig names the helper scripts spawned for parsing, trimming and notifying.
type ExternalConfig struct {
	Python         string        `mapstructure:"python"`
	ParserScript   string        `mapstructure:"parser_script"`
	TrimmerScript  string        `mapstructure:"trimmer_script"`
	NotifierScript string        `mapstructure:"notifier_script"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

// AdminConfig guards the diagnostic endpoint. An empty hash disables the guard.
type AdminConfig struct {
	Username     string `mapstructure:"username"`
	PasswordHash string `mapstructure:"password_hash"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// --- Environment Variable Handling ---
	v.AutomaticEnv()
	// server.address -> SERVER_ADDRESS, database.url -> DATABASE_URL
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	// --- Set default values ---
	v.SetDefault("server.address", ":5000")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "2m")
	v.SetDefault("database.url", "")
	v.SetDefault("database.name", "")
	v.SetDefault("database.probe_timeout", "10s")
	v.SetDefault("database.connect_timeout", "10s")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("files.backend", "local")
	v.SetDefault("files.upload_dir", "uploads")
	v.SetDefault("files.max_upload_size", 50<<20)
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "24h")
	v.SetDefault("external.python", "python3")
	v.SetDefault("external.parser_script", "precise_pdf_parser.py")
	v.SetDefault("external.trimmer_script", "trim_video.py")
	v.SetDefault("external.notifier_script", "telegram_bot.py")
	v.SetDefault("external.timeout", "5m")
	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.password_hash", "")

	// --- Read Config File ---
	err = v.ReadInConfig()
	// A missing config file is fine: defaults and env vars still apply.
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		err = nil
	} else if err != nil {
		return
	}

	// Duration strings ("10s", "24h") decode straight into time.Duration fields.
	err = v.Unmarshal(&config)
	if err != nil {
		return
	}

	return config, nil
}
