package config

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server      Server
	Log         Log
	Database    Database
	Store       Store
	Redis       Redis
	Session     Session
	Quiz        Quiz
	Quota       Quota
	Auth        Auth
	Certificate Certificate
	RateLimit   RateLimit

	GeminiApiKey     string
	GeminiQuizModel  string
	GeminiImageModel string
}

type Server struct {
	Port               string
	Mode               string
	CORSAllowedOrigins []string
}

type Log struct {
	Level  string
	Format string // "console" or "json"
	File   string
}

type Database struct {
	Driver     string // "postgres" or "sqlite"
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SQLitePath string
}

type Store struct {
	Driver string // "gorm", "redis" or "memory"
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Session struct {
	Secret   string
	TokenTTL time.Duration
	IdleTTL  time.Duration
}

type Quiz struct {
	QuestionCount int
	TickInterval  time.Duration
}

type Quota struct {
	FreeLimit       int
	Window          time.Duration
	RefundOnFailure bool
}

type Auth struct {
	GoogleClientID string
}

type Certificate struct {
	FontPath string
}

type RateLimit struct {
	QuizStartsPerMinute int
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
	v.SetDefault("DATABASE_DRIVER", "sqlite")
	v.SetDefault("DATABASE_PORT", "5432")
	v.SetDefault("SQLITE_PATH", "quizx.db")
	v.SetDefault("STORE_DRIVER", "gorm")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_TOKEN_TTL", "720h")
	v.SetDefault("SESSION_IDLE_TTL", "2h")
	v.SetDefault("QUIZ_QUESTION_COUNT", 10)
	v.SetDefault("QUIZ_TICK_INTERVAL", "1s")
	v.SetDefault("QUOTA_FREE_LIMIT", 3)
	v.SetDefault("QUOTA_WINDOW", "168h")
	v.SetDefault("QUOTA_REFUND_ON_FAILURE", false)
	v.SetDefault("GEMINI_QUIZ_MODEL", "gemini-1.5-flash")
	v.SetDefault("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image")
	v.SetDefault("RATE_LIMIT_QUIZ_PER_MINUTE", 6)
}

func NewConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	var config Config

	config.Server.Port = v.GetString("SERVER_PORT")
	config.Server.Mode = v.GetString("GIN_MODE")
	config.Server.CORSAllowedOrigins = splitList(v.GetString("CORS_ALLOWED_ORIGINS"))

	config.Log.Level = v.GetString("LOG_LEVEL")
	config.Log.Format = v.GetString("LOG_FORMAT")
	config.Log.File = v.GetString("LOG_FILE")

	config.Database.Driver = v.GetString("DATABASE_DRIVER")
	config.Database.Host = v.GetString("DATABASE_HOST")
	config.Database.Port = v.GetString("DATABASE_PORT")
	config.Database.User = v.GetString("DATABASE_USER")
	config.Database.Password = v.GetString("DATABASE_PASSWORD")
	config.Database.Name = v.GetString("DATABASE_NAME")
	config.Database.SQLitePath = v.GetString("SQLITE_PATH")

	config.Store.Driver = v.GetString("STORE_DRIVER")

	config.Redis.Addr = v.GetString("REDIS_ADDR")
	config.Redis.Password = v.GetString("REDIS_PASSWORD")
	config.Redis.DB = v.GetInt("REDIS_DB")

	config.Session.Secret = v.GetString("SESSION_SECRET")
	config.Session.TokenTTL = v.GetDuration("SESSION_TOKEN_TTL")
	config.Session.IdleTTL = v.GetDuration("SESSION_IDLE_TTL")

	config.Quiz.QuestionCount = v.GetInt("QUIZ_QUESTION_COUNT")
	config.Quiz.TickInterval = v.GetDuration("QUIZ_TICK_INTERVAL")

	config.Quota.FreeLimit = v.GetInt("QUOTA_FREE_LIMIT")
	config.Quota.Window = v.GetDuration("QUOTA_WINDOW")
	config.Quota.RefundOnFailure = v.GetBool("QUOTA_REFUND_ON_FAILURE")

	config.Auth.GoogleClientID = v.GetString("GOOGLE_CLIENT_ID")
	config.Certificate.FontPath = v.GetString("CERTIFICATE_FONT_PATH")
	config.RateLimit.QuizStartsPerMinute = v.GetInt("RATE_LIMIT_QUIZ_PER_MINUTE")

	config.GeminiApiKey = v.GetString("GEMINI_API_KEY")
	config.GeminiQuizModel = v.GetString("GEMINI_QUIZ_MODEL")
	config.GeminiImageModel = v.GetString("GEMINI_IMAGE_MODEL")

	if config.Session.Secret == "" {
		log.Warn().Msg("SESSION_SECRET is not set. Using an insecure development secret.")
		config.Session.Secret = "quizx-dev-secret"
	}

	log.Info().
		Str("port", config.Server.Port).
		Str("databaseDriver", config.Database.Driver).
		Str("storeDriver", config.Store.Driver).
		Bool("geminiConfigured", config.GeminiApiKey != "").
		Msg("Config loaded")
	return &config
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
