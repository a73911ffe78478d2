package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	PublicBaseURL string

	// Object storage. When MinioEndpoint is empty the service falls back to
	// the local generated-files directory served under /static.
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	MinioBaseURL   string
	GeneratedDir   string

	// Music synthesis provider.
	MusicAPIKey  string
	MusicBaseURL string
	MusicModel   string

	// Voice conversion provider.
	VoiceAPIKey  string
	VoiceBaseURL string

	// Lyric LLM chain.
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	GeminiAPIKey  string
	GeminiBaseURL string
	GeminiModel   string

	// Artwork generation.
	ArtworkAPIKey  string
	ArtworkBaseURL string

	// Media extraction.
	YtdlpPath   string
	FfprobePath string

	PollInterval time.Duration
	PollAttempts int

	// Browser origins allowed by CORS. "*" allows any origin.
	AllowedOrigins []string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. A missing DATABASE_URL is not an error: the service
// starts in a degraded mode where jobs are accepted but never persisted.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:8080"),

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getEnv("MINIO_BUCKET", "songforge"),
		MinioUseSSL:    getEnvBool("MINIO_USE_SSL", false),
		MinioBaseURL:   os.Getenv("MINIO_PUBLIC_BASE"),
		GeneratedDir:   getEnv("GENERATED_DIR", "./generated"),

		MusicAPIKey:  os.Getenv("MUSIC_API_KEY"),
		MusicBaseURL: getEnv("MUSIC_BASE_URL", "https://api.minimax.io/v1"),
		MusicModel:   getEnv("MUSIC_MODEL", "music-1.5"),

		VoiceAPIKey:  os.Getenv("VOICE_API_KEY"),
		VoiceBaseURL: getEnv("VOICE_BASE_URL", "https://api.replicate.com/v1"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),

		ArtworkAPIKey:  os.Getenv("ARTWORK_API_KEY"),
		ArtworkBaseURL: getEnv("ARTWORK_BASE_URL", "https://api.minimax.io/v1"),

		YtdlpPath:   getEnv("YTDLP_PATH", "yt-dlp"),
		FfprobePath: getEnv("FFPROBE_PATH", "ffprobe"),

		PollInterval: time.Second * time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 2)),
		PollAttempts: getEnvInt("POLL_MAX_ATTEMPTS", 60),

		AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 60)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
