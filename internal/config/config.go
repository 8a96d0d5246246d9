package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	SMTP      SMTPConfig
	OpenAI    OpenAIConfig
	Concierge ConciergeConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	LLMLogFilePath     string
	CorsAllowedOrigins string
	RedisURL           string
	AdminEmail         string
}

type DatabaseConfig struct {
	Connection string
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
	TimeoutSecs int
	MaxRetries  int
	RPMLimit    int // requests per minute against the upstream API
}

type ConciergeConfig struct {
	MemoryWindow        int // turns of history fed back into the prompt
	RateLimitPerHour    int // per user/IP chat budget
	MaxMessageLength    int
	DailyTokenLimit     int
	EmergencyTokenLimit int
	LearningTopicName   string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			LLMLogFilePath:     getEnv("LLM_LOG_FILE_PATH", "logs/llm.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			AdminEmail:         getEnv("ADMIN_EMAIL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "GrantInsight"),
		},
		OpenAI: OpenAIConfig{
			APIKey:      getEnv("OPENAI_API_KEY", ""),
			Model:       getEnv("OPENAI_MODEL", "gpt-4"),
			MaxTokens:   getEnvAsInt("OPENAI_MAX_TOKENS", 1500),
			Temperature: getEnvAsFloat("OPENAI_TEMPERATURE", 0.7),
			TimeoutSecs: getEnvAsInt("OPENAI_TIMEOUT_SECONDS", 60),
			MaxRetries:  getEnvAsInt("OPENAI_MAX_RETRIES", 3),
			RPMLimit:    getEnvAsInt("OPENAI_RPM_LIMIT", 60),
		},
		Concierge: ConciergeConfig{
			MemoryWindow:        getEnvAsInt("CONCIERGE_MEMORY_WINDOW", 10),
			RateLimitPerHour:    getEnvAsInt("CONCIERGE_RATE_LIMIT_PER_HOUR", 60),
			MaxMessageLength:    getEnvAsInt("CONCIERGE_MAX_MESSAGE_LENGTH", 1000),
			DailyTokenLimit:     getEnvAsInt("CONCIERGE_DAILY_TOKEN_LIMIT", 100000),
			EmergencyTokenLimit: getEnvAsInt("CONCIERGE_EMERGENCY_TOKEN_LIMIT", 200000),
			LearningTopicName:   getEnv("CONCIERGE_LEARNING_TOPIC_NAME", "CONCIERGE_TURN_RECORDED"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}
