package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"decidely-be/pkg/progress"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Progress ProgressConfig
	Relay    RelayConfig
	Tracing  TracingConfig
	Coach    CoachConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
	JwtSecret          string
	JwtTTL             time.Duration
	InstanceID         string
	AttemptsTopic      string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	LLMProvider      string // "ollama" or "openrouter"
	LLMModel         string
	OllamaBaseURL    string
	OpenRouterURL    string
	OpenRouterAPIKey string
}

// ProgressConfig holds one scoring profile per entry point.
type ProgressConfig struct {
	Timezone string
	Profiles map[string]progress.Config
}

type RelayConfig struct {
	RedisChannel   string
	SendBuffer     int
	MaxMessageSize int64
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

type CoachConfig struct {
	PerHour int
	PerDay  int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	tz := getEnv("PROGRESS_TIMEZONE", "UTC")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("Warn: unknown PROGRESS_TIMEZONE %q, falling back to UTC", tz)
		loc = time.UTC
	}
	window := getEnvAsInt("PROGRESS_DECISIVENESS_WINDOW_DAYS", progress.DefaultDecisivenessDays)

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
			JwtSecret:          getEnv("JWT_SECRET", ""),
			JwtTTL:             time.Duration(getEnvAsInt("JWT_TTL_HOURS", 72)) * time.Hour,
			InstanceID:         getEnv("INSTANCE_ID", ""),
			AttemptsTopic:      getEnv("ATTEMPTS_TOPIC", "scenario_attempts"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			LLMProvider:      getEnv("LLM_PROVIDER", "ollama"),
			LLMModel:         getEnv("LLM_MODEL", "llama3"),
			OllamaBaseURL:    getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OpenRouterURL:    getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			OpenRouterAPIKey: getEnv("OPENROUTER_API_KEY", ""),
		},
		Progress: ProgressConfig{
			Timezone: tz,
			Profiles: map[string]progress.Config{
				progress.ProfileScenario: {
					XPPerLevel:             getEnvAsInt("PROGRESS_SCENARIO_XP_PER_LEVEL", 100),
					Strategy:               progress.Strategy(getEnv("PROGRESS_SCENARIO_STRATEGY", string(progress.StrategyAccuracy))),
					Weight:                 getEnvAsFloat("PROGRESS_SCENARIO_WEIGHT", progress.DefaultWeight),
					DecisivenessWindowDays: window,
					Location:               loc,
				},
				progress.ProfileChallenge: {
					XPPerLevel:             getEnvAsInt("PROGRESS_CHALLENGE_XP_PER_LEVEL", 500),
					Strategy:               progress.Strategy(getEnv("PROGRESS_CHALLENGE_STRATEGY", string(progress.StrategyAccuracy))),
					Weight:                 getEnvAsFloat("PROGRESS_CHALLENGE_WEIGHT", progress.DefaultWeight),
					DecisivenessWindowDays: window,
					Location:               loc,
				},
				progress.ProfileReflection: {
					XPPerLevel:             getEnvAsInt("PROGRESS_REFLECTION_XP_PER_LEVEL", 1000),
					Strategy:               progress.Strategy(getEnv("PROGRESS_REFLECTION_STRATEGY", string(progress.StrategyWeighted))),
					Weight:                 getEnvAsFloat("PROGRESS_REFLECTION_WEIGHT", progress.DefaultWeight),
					DecisivenessWindowDays: window,
					Location:               loc,
				},
			},
		},
		Relay: RelayConfig{
			RedisChannel:   getEnv("RELAY_REDIS_CHANNEL", "relay_events"),
			SendBuffer:     getEnvAsInt("RELAY_SEND_BUFFER", 256),
			MaxMessageSize: int64(getEnvAsInt("RELAY_MAX_MESSAGE_SIZE", 8192)),
		},
		Tracing: TracingConfig{
			Enabled:     getEnv("OTEL_ENABLED", "false") == "true",
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "decidely-backend"),
		},
		Coach: CoachConfig{
			PerHour: getEnvAsInt("COACH_MESSAGES_PER_HOUR", 50),
			PerDay:  getEnvAsInt("COACH_MESSAGES_PER_DAY", 200),
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
