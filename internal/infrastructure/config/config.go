package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	Detection   DetectionConfig `mapstructure:"detection"`
	Gemini      GeminiConfig    `mapstructure:"gemini"`
	Image       ImageConfig     `mapstructure:"image"`
	Session     SessionConfig   `mapstructure:"session"`
	Redis       RedisConfig     `mapstructure:"redis"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
	LogFile     string          `mapstructure:"log_file"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// DetectionConfig 食材偵測設定
type DetectionConfig struct {
	MockMode     bool               `mapstructure:"mock_mode"`
	Serverless   bool               `mapstructure:"serverless"`
	Roboflow     RoboflowConfig     `mapstructure:"roboflow"`
	Microservice MicroserviceConfig `mapstructure:"microservice"`
}

// RoboflowConfig Roboflow 託管模型設定
type RoboflowConfig struct {
	Model      string        `mapstructure:"model"`
	APIKey     string        `mapstructure:"api_key"`
	Endpoint   string        `mapstructure:"endpoint"`
	Confidence int           `mapstructure:"confidence"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// Enabled 模型 ID 與 API Key 皆有設定
func (r RoboflowConfig) Enabled() bool {
	return strings.TrimSpace(r.Model) != "" && strings.TrimSpace(r.APIKey) != ""
}

// MicroserviceConfig 自架 YOLO 服務設定
type MicroserviceConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// GeminiConfig Gemini 設定
type GeminiConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
	RecipeCount int           `mapstructure:"recipe_count"`
}

// ImageConfig 圖片配置
type ImageConfig struct {
	MaxSizeBytes int64 `mapstructure:"max_size_bytes"`
	MaxEdge      int   `mapstructure:"max_edge"`
	JPEGQuality  int   `mapstructure:"jpeg_quality"`
}

// SessionConfig session 設定
type SessionConfig struct {
	Backend         string        `mapstructure:"backend"` // memory 或 redis
	TTL             time.Duration `mapstructure:"ttl"`
	MaxSize         int           `mapstructure:"max_size"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// RedisConfig Redis 連線設定
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定；.env 檔不存在時只使用環境變數與預設值
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	bindings := map[string][]string{
		"detection.mock_mode":           {"MOCK_DETECTION", "DETECTION_MOCK_MODE"},
		"detection.serverless":          {"SERVERLESS", "VERCEL"},
		"detection.roboflow.model":      {"ROBOFLOW_MODEL"},
		"detection.roboflow.api_key":    {"ROBOFLOW_API_KEY"},
		"detection.roboflow.endpoint":   {"ROBOFLOW_ENDPOINT"},
		"detection.roboflow.confidence": {"ROBOFLOW_CONFIDENCE"},
		"detection.microservice.url":    {"YOLO_SERVICE_URL"},
		"gemini.api_key":                {"GEMINI_API_KEY"},
		"gemini.model":                  {"GEMINI_MODEL"},
		"session.backend":               {"SESSION_BACKEND"},
		"redis.addr":                    {"REDIS_ADDR"},
		"redis.password":                {"REDIS_PASSWORD"},
		"rate_limit.enabled":            {"RATE_LIMIT_ENABLED"},
		"rate_limit.requests":           {"RATE_LIMIT_REQUESTS"},
		"rate_limit.window":             {"RATE_LIMIT_WINDOW"},
		"dedup_window":                  {"DEDUP_WINDOW"},
		"log_level":                     {"LOG_LEVEL"},
		"log_file":                      {"LOG_FILE"},
		"server.port":                   {"PORT"},
	}
	for key, envs := range bindings {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	// 解析設定
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// MaskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func MaskAPIKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "pantry-pal")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.max_body_bytes", 12<<20)
	v.SetDefault("server.allowed_origins", []string{"*"})

	// 食材偵測
	v.SetDefault("detection.mock_mode", false)
	v.SetDefault("detection.serverless", false)
	v.SetDefault("detection.roboflow.endpoint", "https://detect.roboflow.com")
	v.SetDefault("detection.roboflow.confidence", 40)
	v.SetDefault("detection.roboflow.timeout", "10s")
	v.SetDefault("detection.microservice.timeout", "30s")

	// Gemini
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("gemini.max_tokens", 4096)
	v.SetDefault("gemini.temperature", 0.2)
	v.SetDefault("gemini.timeout", "20s")
	v.SetDefault("gemini.recipe_count", 4)

	// 圖片設定
	v.SetDefault("image.max_size_bytes", 10<<20) // 10MB
	v.SetDefault("image.max_edge", 1024)
	v.SetDefault("image.jpeg_quality", 80)

	// session
	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.max_size", 10000)
	v.SetDefault("session.cleanup_interval", "10m")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "pantrypal:session:")

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 60)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
}

// validateConfig 驗證設定
func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 {
		return fmt.Errorf("server port is required")
	}
	if cfg.Detection.Roboflow.Timeout <= 0 || cfg.Detection.Microservice.Timeout <= 0 {
		return fmt.Errorf("detection timeouts must be positive")
	}
	if cfg.Detection.Roboflow.Confidence < 0 || cfg.Detection.Roboflow.Confidence > 100 {
		return fmt.Errorf("roboflow confidence must be between 0 and 100")
	}
	if cfg.Gemini.Timeout <= 0 {
		return fmt.Errorf("gemini timeout must be positive")
	}
	if cfg.Gemini.RecipeCount < 1 || cfg.Gemini.RecipeCount > 12 {
		return fmt.Errorf("gemini recipe count must be between 1 and 12")
	}
	if cfg.Image.MaxEdge <= 0 {
		return fmt.Errorf("invalid image max edge")
	}
	if cfg.Image.JPEGQuality < 1 || cfg.Image.JPEGQuality > 100 {
		return fmt.Errorf("invalid jpeg quality")
	}

	switch cfg.Session.Backend {
	case "memory":
		if cfg.Session.MaxSize <= 0 {
			return fmt.Errorf("invalid session max size")
		}
		if cfg.Session.CleanupInterval <= 0 {
			return fmt.Errorf("invalid session cleanup interval")
		}
	case "redis":
		if cfg.Redis.Addr == "" {
			return fmt.Errorf("redis address is required for the redis session backend")
		}
	default:
		return fmt.Errorf("unknown session backend %q", cfg.Session.Backend)
	}
	if cfg.Session.TTL <= 0 {
		return fmt.Errorf("invalid session ttl")
	}

	if cfg.RateLimit.Enabled && (cfg.RateLimit.Requests <= 0 || cfg.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit settings")
	}

	return nil
}
