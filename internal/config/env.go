package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	SDKGenerativeAI = "generative-ai-go"
	SDKGenAI        = "genai"
)

var defaultModelCandidates = []string{
	"gemini-2.5-flash",
	"gemini-2.0-flash",
	"gemini-2.0-flash-001",
	"gemini-2.0-flash-lite-001",
	"gemini-2.5-flash-lite",
}

type Config struct {
	Port string `yaml:"port"`

	ScanAPIKey      string   `yaml:"scan_api_key"`
	ChatAPIKey      string   `yaml:"chat_api_key"`
	ModelCandidates []string `yaml:"model_candidates"`
	LLMSDK          string   `yaml:"llm_sdk"`

	ElevenLabsAPIKey  string `yaml:"eleven_labs_api_key"`
	ElevenLabsVoiceID string `yaml:"eleven_labs_voice_id"`
	ElevenLabsModelID string `yaml:"eleven_labs_model_id"`
	ElevenLabsBaseURL string `yaml:"eleven_labs_base_url"`

	MaxUploadBytes        int64    `yaml:"max_upload_bytes"`
	AudioDir              string   `yaml:"audio_dir"`
	OCRLanguage           string   `yaml:"ocr_language"`
	OCRWorkers            int      `yaml:"ocr_workers"`
	RequestTimeoutSeconds int      `yaml:"request_timeout_seconds"`
	CORSOrigins           []string `yaml:"cors_origins"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`

	DatabaseURL string `yaml:"database_url"`
	SslCertPath string `yaml:"ssl_cert_path"`

	AwsAccessKey string `yaml:"aws_access_key"`
	AwsSecretKey string `yaml:"aws_secret_key"`
	AwsRegion    string `yaml:"aws_region"`
	BucketName   string `yaml:"bucket_name"`
}

// LoadConfig loads .env, the optional YAML file named by LEGALSCAN_CONFIG,
// then environment overrides, and returns a validated config.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path := getEnv("LEGALSCAN_CONFIG", ""); path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	gemini := getEnv("GEMINI_API_KEY", "")

	c.Port = getEnv("PORT", c.Port)
	c.ScanAPIKey = firstNonEmpty(getEnv("SCAN_API_KEY", ""), c.ScanAPIKey, gemini)
	c.ChatAPIKey = firstNonEmpty(getEnv("CHAT_API_KEY", ""), c.ChatAPIKey, gemini)
	c.ModelCandidates = getEnvList("MODEL_CANDIDATES", c.ModelCandidates)
	c.LLMSDK = getEnv("LLM_SDK", c.LLMSDK)

	c.ElevenLabsAPIKey = getEnv("ELEVEN_LABS_API_KEY", c.ElevenLabsAPIKey)
	c.ElevenLabsVoiceID = getEnv("ELEVEN_LABS_VOICE_ID", c.ElevenLabsVoiceID)
	c.ElevenLabsModelID = getEnv("ELEVEN_LABS_MODEL_ID", c.ElevenLabsModelID)
	c.ElevenLabsBaseURL = getEnv("ELEVEN_LABS_BASE_URL", c.ElevenLabsBaseURL)

	c.MaxUploadBytes = int64(getEnvInt("MAX_UPLOAD_BYTES", int(c.MaxUploadBytes)))
	c.AudioDir = getEnv("AUDIO_DIR", c.AudioDir)
	c.OCRLanguage = getEnv("OCR_LANGUAGE", c.OCRLanguage)
	c.OCRWorkers = getEnvInt("OCR_WORKERS", c.OCRWorkers)
	c.RequestTimeoutSeconds = getEnvInt("REQUEST_TIMEOUT_SECONDS", c.RequestTimeoutSeconds)
	c.CORSOrigins = getEnvList("CORS_ORIGINS", c.CORSOrigins)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)

	c.RedisAddr = getEnv("REDIS_ADDR", c.RedisAddr)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getEnvInt("REDIS_DB", c.RedisDB)

	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.SslCertPath = getEnv("SSL_CERT_PATH", c.SslCertPath)

	c.AwsAccessKey = getEnv("AWS_ACCESS_KEY", c.AwsAccessKey)
	c.AwsSecretKey = getEnv("AWS_SECRET_KEY", c.AwsSecretKey)
	c.AwsRegion = getEnv("AWS_REGION", c.AwsRegion)
	c.BucketName = getEnv("BUCKET_NAME", c.BucketName)
}

// Validate fills defaults and rejects values the service cannot run with.
func (c *Config) Validate() error {
	if c.Port == "" {
		c.Port = "3001"
	}
	if len(c.ModelCandidates) == 0 {
		c.ModelCandidates = append([]string(nil), defaultModelCandidates...)
	}
	switch c.LLMSDK {
	case "":
		c.LLMSDK = SDKGenerativeAI
	case SDKGenerativeAI, SDKGenAI:
	default:
		return fmt.Errorf("LLM_SDK must be %q or %q, got %q", SDKGenerativeAI, SDKGenAI, c.LLMSDK)
	}
	if c.ElevenLabsVoiceID == "" {
		c.ElevenLabsVoiceID = "21m00Tcm4TlvDq8ikWAM"
	}
	if c.ElevenLabsModelID == "" {
		c.ElevenLabsModelID = "eleven_multilingual_v2"
	}
	if c.ElevenLabsBaseURL == "" {
		c.ElevenLabsBaseURL = "https://api.elevenlabs.io/v1/text-to-speech"
	}
	if c.MaxUploadBytes <= 0 {
		c.MaxUploadBytes = 10 << 20
	}
	if c.AudioDir == "" {
		c.AudioDir = "uploads/audio"
	}
	if c.OCRLanguage == "" {
		c.OCRLanguage = "eng"
	}
	if c.OCRWorkers <= 0 {
		c.OCRWorkers = 4
	}
	if c.RequestTimeoutSeconds <= 0 {
		c.RequestTimeoutSeconds = 120
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	if c.RedisDB < 0 {
		return fmt.Errorf("REDIS_DB must be non-negative, got %d", c.RedisDB)
	}
	if c.AwsRegion == "" {
		c.AwsRegion = "us-east-2"
	}
	return nil
}

// NarrationEnabled reports whether a speech credential is configured.
func (c *Config) NarrationEnabled() bool { return c.ElevenLabsAPIKey != "" }

// S3MirrorEnabled reports whether narration audio should also go to S3.
func (c *Config) S3MirrorEnabled() bool {
	return c.BucketName != "" && c.AwsAccessKey != "" && c.AwsSecretKey != ""
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

// comma separated, blanks dropped
func getEnvList(key string, def []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
