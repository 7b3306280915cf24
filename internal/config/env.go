package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL  string
	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string

	AIAPIKey             string
	EmbedModel           string
	MultimodalEmbedModel string
	GenModel             string
	LanguageHint         string

	FFmpegPath  string
	FFprobePath string

	SegmentSeconds    float64
	MinSegmentSeconds float64
	VideoByteCeiling  int64
	BatchSize         int
	FailureTolerance  float64
	SegmentTimeout    time.Duration
	MaxTextTokens     int
	TempDir           string

	JWTSecret string
	Port      string
}

// LoadConfig loads the environment variables and return config
func LoadConfig() *Config {

	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", "mediora-uploads"),

		AIAPIKey:             getEnv("GEMINI_API_KEY", ""),
		EmbedModel:           getEnv("EMBED_MODEL", "text-embedding-004"),
		MultimodalEmbedModel: getEnv("MULTIMODAL_EMBED_MODEL", "multimodal-embedding-001"),
		GenModel:             getEnv("GEN_MODEL", "gemini-1.5-flash"),
		LanguageHint:         getEnv("LANGUAGE_HINT", ""),

		FFmpegPath:  getEnv("FFMPEG_PATH", "ffmpeg"),
		FFprobePath: getEnv("FFPROBE_PATH", "ffprobe"),

		SegmentSeconds:    getEnvFloat("SEGMENT_SECONDS", 30),
		MinSegmentSeconds: getEnvFloat("MIN_SEGMENT_SECONDS", 5),
		VideoByteCeiling:  int64(getEnvInt("VIDEO_BYTE_CEILING", 20<<20)),
		BatchSize:         getEnvInt("SEGMENT_BATCH_SIZE", 4),
		FailureTolerance:  getEnvFloat("SEGMENT_FAILURE_TOLERANCE", 0),
		SegmentTimeout:    getEnvDuration("SEGMENT_TIMEOUT", 2*time.Minute),
		MaxTextTokens:     getEnvInt("MAX_TEXT_TOKENS", 2048),
		TempDir:           getEnv("TEMP_DIR", os.TempDir()),

		JWTSecret: getEnv("JWT_SECRET", ""),
		Port:      getEnv("PORT", "8080"),
	}

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	if cfg.FailureTolerance < 0 || cfg.FailureTolerance > 1 {
		log.Fatalf("SEGMENT_FAILURE_TOLERANCE=%v out of range [0,1]", cfg.FailureTolerance)
	}

	return cfg
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("WARN: %s=%q not an int, using default %d", key, v, def)
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("WARN: %s=%q not a float, using default %v", key, v, def)
		return def
	}
	return f
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("WARN: %s=%q not a duration, using default %v", key, v, def)
		return def
	}
	return d
}
