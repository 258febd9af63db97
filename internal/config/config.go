package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	DatabaseURL     string
	SecretKey       string
	AllowOrigins    []string
	LogstashTCPAddr string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Verification protocol windows. The cooldown must stay shorter than the
	// SMS code TTL or resends would unblock after the code is already gone.
	ImageCodeTTL      time.Duration
	SMSCodeTTL        time.Duration
	SendCooldown      time.Duration
	SMSTokenTTL       time.Duration
	ResetTokenTTL     time.Duration
	OAuthBindTokenTTL time.Duration
	EmailTokenTTL     time.Duration

	LoginTokenTTL time.Duration

	SMSGatewayURL    string
	SMSGatewayAPIKey string
	SMSSender        string
	SMSDryRun        bool
	SMSQueueSize     int
	SMSWorkers       int

	QQAppID       string
	QQAppKey      string
	QQRedirectURL string
	QQDefaultNext string

	SMTPHost           string
	SMTPPort           string
	SMTPUsername       string
	SMTPPassword       string
	SMTPFrom           string
	EmailVerifyBaseURL string

	MinIOEndpoint    string
	MinIOAccessKey   string
	MinIOSecretKey   string
	MinIOUseSSL      bool
	MinIOBucketGoods string
	MinIOURLExpiry   time.Duration
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	return Config{
		Port:            getenv("PORT", "8080"),
		DatabaseURL:     must("DATABASE_URL"),
		SecretKey:       must("SECRET_KEY"),
		AllowOrigins:    splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		LogstashTCPAddr: getenv("LOGSTASH_TCP_ADDR", ""),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 2),

		ImageCodeTTL:      getdur("IMAGE_CODE_TTL", 5*time.Minute),
		SMSCodeTTL:        getdur("SMS_CODE_TTL", 5*time.Minute),
		SendCooldown:      getdur("SMS_SEND_COOLDOWN", time.Minute),
		SMSTokenTTL:       getdur("SMS_TOKEN_TTL", 5*time.Minute),
		ResetTokenTTL:     getdur("RESET_TOKEN_TTL", 30*time.Minute),
		OAuthBindTokenTTL: getdur("OAUTH_BIND_TOKEN_TTL", 10*time.Minute),
		EmailTokenTTL:     getdur("EMAIL_TOKEN_TTL", 24*time.Hour),

		LoginTokenTTL: getdur("LOGIN_TOKEN_TTL", 24*time.Hour),

		SMSGatewayURL:    getenv("SMS_GATEWAY_URL", ""),
		SMSGatewayAPIKey: getenv("SMS_GATEWAY_API_KEY", ""),
		SMSSender:        getenv("SMS_SENDER", ""),
		SMSDryRun:        getenv("SMS_DRY_RUN", "true") == "true",
		SMSQueueSize:     getint("SMS_QUEUE_SIZE", 128),
		SMSWorkers:       getint("SMS_WORKERS", 4),

		QQAppID:       getenv("QQ_APP_ID", ""),
		QQAppKey:      getenv("QQ_APP_KEY", ""),
		QQRedirectURL: getenv("QQ_REDIRECT_URL", ""),
		QQDefaultNext: getenv("QQ_DEFAULT_NEXT", "/"),

		SMTPHost:           getenv("SMTP_HOST", ""),
		SMTPPort:           getenv("SMTP_PORT", ""),
		SMTPUsername:       getenv("SMTP_USERNAME", ""),
		SMTPPassword:       getenv("SMTP_PASSWORD", ""),
		SMTPFrom:           getenv("SMTP_FROM", ""),
		EmailVerifyBaseURL: getenv("EMAIL_VERIFY_BASE_URL", ""),

		MinIOEndpoint:    getenv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:   getenv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:   getenv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:      getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucketGoods: getenv("MINIO_BUCKET_GOODS", "meiduo-goods"),
		MinIOURLExpiry:   getdur("MINIO_URL_EXPIRY", time.Hour),
	}
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v, err := strconv.Atoi(getenv(k, "")); err == nil {
		return v
	}
	return d
}

func getdur(k string, d time.Duration) time.Duration {
	if v, err := time.ParseDuration(getenv(k, "")); err == nil && v > 0 {
		return v
	}
	return d
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
