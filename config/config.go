package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config 应用配置
type Config struct {
	Port    int
	Debug   bool
	BaseURL string

	MongoURI string
	MongoDB  string

	JWTKey string

	// AllowAnonymousAdmin 为 true 时,未携带凭证的请求以开发管理员身份放行。
	// 必须在启动时显式开启,生产环境禁用。
	AllowAnonymousAdmin bool

	AdminPassword string

	UploadDir string

	AlertPollInterval time.Duration

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SMTPFrom     string
}

// LoadConfig 从环境变量加载配置
func LoadConfig() *Config {
	// .env 不存在时忽略
	_ = godotenv.Load()

	port, _ := strconv.Atoi(getEnv("PORT", "8080"))
	smtpPort, _ := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	pollSeconds, _ := strconv.Atoi(getEnv("ALERT_POLL_SECONDS", "30"))
	if pollSeconds <= 0 {
		pollSeconds = 30
	}

	return &Config{
		Port:    port,
		Debug:   getEnv("GIN_MODE", "debug") == "debug",
		BaseURL: getEnv("BASE_URL", "http://localhost:8080"),

		MongoURI: getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDB:  getEnv("MONGO_DB", "telecrm"),

		JWTKey: getEnv("JWT_KEY", "your-secret-key"), // 实际环境应替换为安全密钥

		AllowAnonymousAdmin: getEnv("ALLOW_ANONYMOUS_ADMIN", "false") == "true",

		AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"),

		UploadDir: getEnv("UPLOAD_DIR", "./uploads"),

		AlertPollInterval: time.Duration(pollSeconds) * time.Second,

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     smtpPort,
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "no-reply@telecrm.local"),
	}
}

// getEnv 获取环境变量，如果不存在则返回默认值
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
