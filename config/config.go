package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JWT       JWTConfig       `mapstructure:"jwt"`
	OAuth     OAuthConfig     `mapstructure:"oauth"`
	OSS       OSSConfig       `mapstructure:"oss"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Brevo     BrevoConfig     `mapstructure:"brevo"`
	Email     EmailConfig     `mapstructure:"email"`
	AI        AIConfig        `mapstructure:"ai"`
	Cron      CronConfig      `mapstructure:"cron"`
	Broadcast BroadcastConfig `mapstructure:"broadcast"`
	Queue     QueueConfig     `mapstructure:"queue"`
	CORS      CORSConfig      `mapstructure:"cors"`
	Upload    UploadConfig    `mapstructure:"upload"`
	Log       LogConfig       `mapstructure:"log"`
	Cache     CacheConfig     `mapstructure:"cache"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Driver       string `mapstructure:"driver"` // mysql, postgres
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	SSLMode      string `mapstructure:"ssl_mode"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

type OAuthConfig struct {
	Github GithubOAuthConfig `mapstructure:"github"`
}

type GithubOAuthConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
	// 登录成功后跳回控制台的地址，token 通过 query 传递
	ConsoleURL string `mapstructure:"console_url"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
	CDNDomain       string `mapstructure:"cdn_domain"`
}

// TelegramConfig 对应 TELEGRAM_BOT_TOKEN / TELEGRAM_CHANNEL_ID
type TelegramConfig struct {
	BotToken  string `mapstructure:"bot_token"`
	ChannelID string `mapstructure:"channel_id"`
	BaseURL   string `mapstructure:"base_url"`
}

// BrevoConfig 对应 BREVO_API_KEY
type BrevoConfig struct {
	APIKey      string `mapstructure:"api_key"`
	BaseURL     string `mapstructure:"base_url"`
	SenderName  string `mapstructure:"sender_name"`
	SenderEmail string `mapstructure:"sender_email"`
	ListIDs     []int  `mapstructure:"list_ids"`
}

// EmailConfig Brevo SMTP relay，provider=smtp 时使用
type EmailConfig struct {
	Provider string `mapstructure:"provider"` // api, smtp
	SMTPHost string `mapstructure:"smtp_host"`
	SMTPPort int    `mapstructure:"smtp_port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	// 邮件通知的收件人列表（smtp 模式下没有联系人列表）
	Recipients []string `mapstructure:"recipients"`
}

type AIConfig struct {
	Provider       string  `mapstructure:"provider"` // gemini, ollama
	APIKey         string  `mapstructure:"api_key"`
	BaseURL        string  `mapstructure:"base_url"`
	Model          string  `mapstructure:"model"`
	ImageModel     string  `mapstructure:"image_model"`
	Temperature    float64 `mapstructure:"temperature"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
}

type CronConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// HH:MM（UTC），为空表示不在进程内调度
	DailySummaryAt  string   `mapstructure:"daily_summary_at"`
	CommunityPostAt string   `mapstructure:"community_post_at"`
	Topics          []string `mapstructure:"topics"`
	// 外部调度器调用 /api/cron/* 时携带的共享密钥，为空则不校验
	Secret string `mapstructure:"secret"`
}

type BroadcastConfig struct {
	DelaySeconds int `mapstructure:"delay_seconds"`
}

type QueueConfig struct {
	EmailQueue string `mapstructure:"email_queue"`
	MaxWorkers int    `mapstructure:"max_workers"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

type UploadConfig struct {
	MaxSize      int64    `mapstructure:"max_size"`      // 最大文件大小（字节）
	AllowedTypes []string `mapstructure:"allowed_types"` // 允许的 MIME 前缀
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	JSON       bool   `mapstructure:"json"`
}

type CacheConfig struct {
	StatusTTLSeconds int `mapstructure:"status_ttl_seconds"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "predict")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)

	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expire_hours", 24)

	v.SetDefault("oauth.github.client_id", "")
	v.SetDefault("oauth.github.client_secret", "")
	v.SetDefault("oauth.github.redirect_uri", "")
	v.SetDefault("oauth.github.console_url", "")

	v.SetDefault("oss.endpoint", "")
	v.SetDefault("oss.access_key_id", "")
	v.SetDefault("oss.access_key_secret", "")
	v.SetDefault("oss.bucket_name", "")
	v.SetDefault("oss.cdn_domain", "")

	v.SetDefault("telegram.bot_token", "")
	v.SetDefault("telegram.channel_id", "")
	v.SetDefault("telegram.base_url", "https://api.telegram.org")

	v.SetDefault("brevo.api_key", "")
	v.SetDefault("brevo.base_url", "https://api.brevo.com/v3")
	v.SetDefault("brevo.sender_name", "Predict")
	v.SetDefault("brevo.sender_email", "")
	v.SetDefault("brevo.list_ids", []int{})

	v.SetDefault("email.provider", "api")
	v.SetDefault("email.smtp_host", "smtp-relay.brevo.com")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.username", "")
	v.SetDefault("email.password", "")
	v.SetDefault("email.from", "")
	v.SetDefault("email.recipients", []string{})

	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.base_url", "")
	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.image_model", "gemini-2.0-flash-preview-image-generation")
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.timeout_seconds", 60)

	v.SetDefault("cron.enabled", false)
	v.SetDefault("cron.daily_summary_at", "08:00")
	v.SetDefault("cron.community_post_at", "")
	v.SetDefault("cron.topics", []string{"status", "pricing", "discounts", "maintenance"})
	v.SetDefault("cron.secret", "")

	v.SetDefault("broadcast.delay_seconds", 2)

	v.SetDefault("queue.email_queue", "predict:email_jobs")
	v.SetDefault("queue.max_workers", 2)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{"Authorization", "Content-Type"})

	v.SetDefault("upload.max_size", 20*1024*1024)
	v.SetDefault("upload.allowed_types", []string{"image/", "video/"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "logs/predict.log")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.json", false)

	v.SetDefault("cache.status_ttl_seconds", 60)
}

func Load(configPath string) (*Config, error) {
	// .env 仅用于本地开发，不存在时忽略
	_ = godotenv.Load()

	// 优先尝试读取 config.local.yaml（包含真实密钥，不提交到git）
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")

	// 环境变量覆盖：telegram.bot_token -> TELEGRAM_BOT_TOKEN
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	_ = v.BindEnv("ai.api_key", "AI_API_KEY", "GEMINI_API_KEY")

	// 配置文件可选，环境变量即可完成部署
	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
