package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Redis       RedisConfig     `mapstructure:"redis"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Security    SecurityConfig  `mapstructure:"security"`
	Offline     OfflineConfig   `mapstructure:"offline"`
	PDF         PDFConfig       `mapstructure:"pdf"`
	Metrics     MetricsConfig   `mapstructure:"metrics"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
	LogDir      string          `mapstructure:"log_dir"`
	NoServe     bool            `mapstructure:"no_serve"`
	SelfTest    bool            `mapstructure:"self_test"`
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
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	SafeHost        string        `mapstructure:"safe_host"`
	SafePort        int           `mapstructure:"safe_port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
}

// Address 主要監聽位址
func (s ServerConfig) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// SafeAddress 備援監聽位址
func (s ServerConfig) SafeAddress() string {
	return net.JoinHostPort(s.SafeHost, strconv.Itoa(s.SafePort))
}

// CacheConfig PDF 檔案快取配置
type CacheConfig struct {
	Backend         string        `mapstructure:"backend"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
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
	Burst    int           `mapstructure:"burst"`
}

// SecurityConfig 允許嵌入頁面的來源
type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// OfflineConfig 離線檔案輸出目錄
type OfflineConfig struct {
	Dir string `mapstructure:"dir"`
}

// PDFConfig PDF 匯出設定
type PDFConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// MetricsConfig Prometheus 設定
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// 支援的快取後端
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// LoadConfig 載入設定，args 為不含程式名稱的命令列參數
func LoadConfig(args []string) (*Config, error) {
	v := viper.New()

	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// 加載 .env 文件，檔案不存在時略過
	envFile, _ := fs.GetString("config")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	// 設定預設值
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	bindings := map[string]string{
		"server.host":         "HOST",
		"server.port":         "PORT",
		"server.safe_host":    "SAFE_HOST",
		"server.safe_port":    "SAFE_PORT",
		"no_serve":            "NO_SERVE",
		"log_level":           "LOG_LEVEL",
		"log_dir":             "LOG_DIR",
		"cache.backend":       "CACHE_BACKEND",
		"cache.ttl":           "CACHE_TTL",
		"redis.addr":          "REDIS_ADDR",
		"redis.password":      "REDIS_PASSWORD",
		"rate_limit.enabled":  "RATE_LIMIT_ENABLED",
		"rate_limit.requests": "RATE_LIMIT_REQUESTS",
		"rate_limit.window":   "RATE_LIMIT_WINDOW",
		"dedup_window":        "DEDUP_WINDOW",
		"offline.dir":         "OFFLINE_DIR",
		"pdf.enabled":         "PDF_ENABLED",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, "APP_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	// 命令列參數優先於環境變數
	flagKeys := map[string]string{
		"host":     "server.host",
		"port":     "server.port",
		"no-serve": "no_serve",
		"test":     "self_test",
	}
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}

	// 解析設定
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet("travel-drink-generator", pflag.ContinueOnError)
	fs.String("host", "127.0.0.1", "listen host")
	fs.Int("port", 5000, "listen port")
	fs.Bool("test", false, "run the self-test suite, print JSON and exit")
	fs.Bool("no-serve", false, "generate offline artifacts and exit")
	fs.String("config", ".env", "path to an optional .env file")
	return fs
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", false)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "Travel Drink Generator")

	// 伺服器設定
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.safe_host", "0.0.0.0")
	v.SetDefault("server.safe_port", 8000)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "5s")
	v.SetDefault("server.max_body_bytes", 64*1024)

	// PDF 快取設定
	v.SetDefault("cache.backend", CacheBackendMemory)
	v.SetDefault("cache.max_size", 256)
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.cleanup_interval", "5m")

	// Redis 設定
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "drinkplan:pdf:")

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 60)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("rate_limit.burst", 10)

	// 可嵌入來源
	v.SetDefault("security.allowed_origins", []string{
		"https://app.gohighlevel.com",
		"https://my.gohighlevel.com",
	})

	v.SetDefault("offline.dir", ".")
	v.SetDefault("pdf.enabled", true)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_dir", "")
	v.SetDefault("no_serve", false)
	v.SetDefault("self_test", false)
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", config.Server.Port)
	}
	if config.Server.SafePort <= 0 || config.Server.SafePort > 65535 {
		return fmt.Errorf("invalid safe port %d", config.Server.SafePort)
	}
	if config.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("invalid max body bytes")
	}

	// 驗證快取設定
	switch config.Cache.Backend {
	case CacheBackendMemory:
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	case CacheBackendRedis:
		if strings.TrimSpace(config.Redis.Addr) == "" {
			return fmt.Errorf("redis address is required for the redis cache backend")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", config.Cache.Backend)
	}
	if config.Cache.TTL <= 0 {
		return fmt.Errorf("invalid cache ttl")
	}

	// 驗證限流設定
	if config.RateLimit.Enabled {
		if config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0 {
			return fmt.Errorf("invalid rate limit")
		}
		if config.RateLimit.Burst <= 0 {
			return fmt.Errorf("invalid rate limit burst")
		}
	}

	return nil
}
