package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL       = "https://api.orionlabs.io/api"
	DefaultStreamURL    = "wss://alnilam.orionlabs.io/stream/wss"
	DefaultLyreURL      = "https://lyre.api.orionaster.com/lyre"
	DefaultOV2WAVURL    = "https://locris.api.orionaster.com/ov2wav"
	DefaultSTTURL       = "https://locris.api.orionaster.com/stt"
	DefaultTranslateURL = "https://locris.api.orionaster.com/translate"
	DefaultWAV2OVURL    = "https://locris.api.orionaster.com/wav2ov"
)

// APIConfig Orion REST / 事件流配置
type APIConfig struct {
	BaseURL    string        `yaml:"base_url"`
	StreamURL  string        `yaml:"stream_url"`
	Timeout    time.Duration `yaml:"timeout"`
	RetryCount int           `yaml:"retry_count"`
}

// ServicesConfig Lyre / Locris 服务地址
type ServicesConfig struct {
	LyreURL      string `yaml:"lyre_url"`
	OV2WAVURL    string `yaml:"ov2wav_url"`
	STTURL       string `yaml:"stt_url"`
	TranslateURL string `yaml:"translate_url"`
	WAV2OVURL    string `yaml:"wav2ov_url"`
}

// CredentialsConfig 登录凭证与默认群组
type CredentialsConfig struct {
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	Groups   []string `yaml:"groups"`
}

// SessionConfig 登录会话缓存
type SessionConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

// Config 应用配置
type Config struct {
	API         APIConfig         `yaml:"api"`
	Services    ServicesConfig    `yaml:"services"`
	Credentials CredentialsConfig `yaml:"credentials"`
	Session     SessionConfig     `yaml:"session"`
	Log         LogConfig         `yaml:"log"`
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:    DefaultAPIURL,
			StreamURL:  DefaultStreamURL,
			Timeout:    30 * time.Second,
			RetryCount: 0,
		},
		Services: ServicesConfig{
			LyreURL:      DefaultLyreURL,
			OV2WAVURL:    DefaultOV2WAVURL,
			STTURL:       DefaultSTTURL,
			TranslateURL: DefaultTranslateURL,
			WAV2OVURL:    DefaultWAV2OVURL,
		},
		Session: SessionConfig{TTL: 10 * time.Minute},
		Log: LogConfig{
			Level:      "info",
			MaxSize:    100, // 100MB
			MaxBackups: 3,
			MaxAge:     7, // 7天
		},
	}
}

// Load 加载配置（优先级：环境变量 > .env > 配置文件 > 默认值）
// path 为空时跳过配置文件
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	// .env 不覆盖已存在的环境变量
	if err := godotenv.Load(); err != nil && !os.IsNotExist(errors.Cause(err)) {
		return nil, errors.Wrap(err, "加载 .env 失败")
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "配置验证失败")
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "读取配置文件失败 %s", path)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf(err, "解析配置文件失败 %s", path)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.API.BaseURL, "ORION_API_URL")
	setString(&cfg.API.StreamURL, "ORION_STREAM_URL")
	setString(&cfg.Services.LyreURL, "LYRE_URL")
	setString(&cfg.Services.OV2WAVURL, "LOCRIS_OV2WAV")
	setString(&cfg.Services.STTURL, "LOCRIS_STT")
	setString(&cfg.Services.TranslateURL, "LOCRIS_TRANSLATE")
	setString(&cfg.Services.WAV2OVURL, "LOCRIS_WAV2OV")
	setString(&cfg.Credentials.Username, "ORION_USERNAME")
	setString(&cfg.Credentials.Password, "ORION_PASSWORD")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.File, "LOG_FILE")

	if v := strings.TrimSpace(os.Getenv("ORION_GROUPS")); v != "" {
		cfg.Credentials.Groups = SplitList(v)
	}
	if v := strings.TrimSpace(os.Getenv("ORION_API_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrapf(err, "ORION_API_TIMEOUT 无效: %q", v)
		}
		cfg.API.Timeout = d
	}
	if v := strings.TrimSpace(os.Getenv("ORION_RETRY_COUNT")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(err, "ORION_RETRY_COUNT 无效: %q", v)
		}
		cfg.API.RetryCount = n
	}
	if v := strings.TrimSpace(os.Getenv("ORION_SESSION_TTL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrapf(err, "ORION_SESSION_TTL 无效: %q", v)
		}
		cfg.Session.TTL = d
	}
	return nil
}

func setString(dst *string, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		*dst = v
	}
}

// SplitList 拆分逗号分隔的列表，忽略空项
func SplitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate 验证配置
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return fmt.Errorf("api.base_url 不能为空")
	}
	if strings.TrimSpace(c.API.StreamURL) == "" {
		return fmt.Errorf("api.stream_url 不能为空")
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout 不能为负数: %v", c.API.Timeout)
	}
	if c.API.RetryCount < 0 {
		return fmt.Errorf("api.retry_count 不能为负数: %d", c.API.RetryCount)
	}
	if c.Session.TTL < 0 {
		return fmt.Errorf("session.ttl 不能为负数: %v", c.Session.TTL)
	}
	return nil
}

// HasCredentials 是否配置了用户名和密码
func (c *Config) HasCredentials() bool {
	return c.Credentials.Username != "" && c.Credentials.Password != ""
}
