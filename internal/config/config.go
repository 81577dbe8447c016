package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，例如 RIZALLAMP_LLM_API_KEY 覆盖 llm.api_key
const EnvPrefix = "RIZALLAMP"

const (
	BackendQdrant  = "qdrant"
	BackendChromem = "chromem"

	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"

	PersistStrict     = "strict"
	PersistBestEffort = "best_effort"
	PersistAsync      = "async"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Memory    MemoryConfig    `mapstructure:"memory"`
	Qdrant    QdrantConfig    `mapstructure:"qdrant"`
	Chromem   ChromemConfig   `mapstructure:"chromem"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Persona   PersonaConfig   `mapstructure:"persona"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

type EmbeddingConfig struct {
	APIKey    string `mapstructure:"api_key"`
	BaseURL   string `mapstructure:"base_url"`
	Model     string `mapstructure:"model"`
	CacheSize int64  `mapstructure:"cache_size"`
}

type LLMConfig struct {
	Provider      string  `mapstructure:"provider"`
	APIKey        string  `mapstructure:"api_key"`
	BaseURL       string  `mapstructure:"base_url"`
	Model         string  `mapstructure:"model"`
	Temperature   float32 `mapstructure:"temperature"`
	MaxTokens     int     `mapstructure:"max_tokens"`
	GateModel     string  `mapstructure:"gate_model"`
	GateMaxTokens int     `mapstructure:"gate_max_tokens"`
}

type MemoryConfig struct {
	Backend        string        `mapstructure:"backend"`
	CollectionName string        `mapstructure:"collection_name"`
	TopK           int           `mapstructure:"top_k"`
	VectorSize     uint64        `mapstructure:"vector_size"`
	PersistMode    string        `mapstructure:"persist_mode"`
	PersistTimeout time.Duration `mapstructure:"persist_timeout"`
}

type QdrantConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	APIKey string `mapstructure:"api_key"`
	UseTLS bool   `mapstructure:"use_tls"`
}

type ChromemConfig struct {
	Path     string `mapstructure:"path"`
	Compress bool   `mapstructure:"compress"`
}

// DatabaseConfig 对话流水账，DSN 为空则不落库
type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type PersonaConfig struct {
	Name       string `mapstructure:"name"`
	ScriptFile string `mapstructure:"script_file"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// setDefaults 每个 key 都要注册默认值，否则 AutomaticEnv 在 Unmarshal 时读不到环境变量
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)

	v.SetDefault("embedding.api_key", "")
	v.SetDefault("embedding.base_url", "")
	v.SetDefault("embedding.model", "text-embedding-ada-002")
	v.SetDefault("embedding.cache_size", 0)

	v.SetDefault("llm.provider", ProviderOpenAI)
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.model", "gpt-4")
	v.SetDefault("llm.temperature", 0.9)
	v.SetDefault("llm.max_tokens", 120)
	v.SetDefault("llm.gate_model", "gpt-3.5-turbo")
	v.SetDefault("llm.gate_max_tokens", 10)

	v.SetDefault("memory.backend", BackendQdrant)
	v.SetDefault("memory.collection_name", "")
	v.SetDefault("memory.top_k", 5)
	v.SetDefault("memory.vector_size", 1536)
	v.SetDefault("memory.persist_mode", PersistBestEffort)
	v.SetDefault("memory.persist_timeout", 10*time.Second)

	v.SetDefault("qdrant.host", "")
	v.SetDefault("qdrant.port", 6334)
	v.SetDefault("qdrant.api_key", "")
	v.SetDefault("qdrant.use_tls", false)

	v.SetDefault("chromem.path", "")
	v.SetDefault("chromem.compress", false)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.dsn", "")

	v.SetDefault("persona.name", "")
	v.SetDefault("persona.script_file", "")

	v.SetDefault("metrics.enabled", true)
}

// LoadConfig 读取配置文件
// paths 为空时在 "." 和 "./config" 下查找 config.yaml；找不到文件不算错，完全走环境变量也可以
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// 向量化默认复用 LLM 的 Key (同一个 OpenAI 账号)
	if cfg.Embedding.APIKey == "" && cfg.LLM.Provider == ProviderOpenAI {
		cfg.Embedding.APIKey = cfg.LLM.APIKey
		if cfg.Embedding.BaseURL == "" {
			cfg.Embedding.BaseURL = cfg.LLM.BaseURL
		}
	}

	return &cfg, nil
}

// Validate 缺少凭证或集合名直接报错，启动阶段就失败，而不是等到第一次调用
func (c *Config) Validate() error {
	var errs []error

	if c.Embedding.APIKey == "" {
		errs = append(errs, errors.New("embedding.api_key is required"))
	}
	if c.LLM.APIKey == "" {
		errs = append(errs, errors.New("llm.api_key is required"))
	}
	switch c.LLM.Provider {
	case ProviderOpenAI, ProviderAnthropic:
	default:
		errs = append(errs, fmt.Errorf("llm.provider %q is not supported", c.LLM.Provider))
	}
	if c.LLM.Model == "" || c.LLM.GateModel == "" {
		errs = append(errs, errors.New("llm.model and llm.gate_model are required"))
	}

	if c.Memory.CollectionName == "" {
		errs = append(errs, errors.New("memory.collection_name is required"))
	}
	if c.Memory.TopK <= 0 {
		errs = append(errs, errors.New("memory.top_k must be positive"))
	}
	switch c.Memory.Backend {
	case BackendQdrant:
		if c.Qdrant.Host == "" || c.Qdrant.Port <= 0 {
			errs = append(errs, errors.New("qdrant.host and qdrant.port are required for the qdrant backend"))
		}
		if c.Memory.VectorSize == 0 {
			errs = append(errs, errors.New("memory.vector_size is required for the qdrant backend"))
		}
	case BackendChromem:
	default:
		errs = append(errs, fmt.Errorf("memory.backend %q is not supported", c.Memory.Backend))
	}
	switch c.Memory.PersistMode {
	case PersistStrict, PersistBestEffort, PersistAsync:
	default:
		errs = append(errs, fmt.Errorf("memory.persist_mode %q is not supported", c.Memory.PersistMode))
	}

	if c.Database.DSN != "" && c.Database.Driver != "mysql" && c.Database.Driver != "postgres" {
		errs = append(errs, fmt.Errorf("database.driver %q is not supported", c.Database.Driver))
	}

	return errors.Join(errs...)
}
