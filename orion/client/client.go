// Package client Orion REST 客户端：认证、用户、群组、媒体与消息
package client

import (
	"time"

	"github.com/pkg/errors"

	"github.com/betbot/go-orion/orion/stream"
	"github.com/betbot/go-orion/orion/types"
	"github.com/betbot/go-orion/pkg/cache"
)

const (
	// DefaultBaseURL 默认 API 地址
	DefaultBaseURL = "https://api.orionlabs.io/api"
	// DefaultUserAgent 默认 User-Agent
	DefaultUserAgent = "go-orion/1.0"
	// DefaultSessionTTL 登录会话缓存时长
	DefaultSessionTTL = 10 * time.Minute
)

// Config 客户端配置
type Config struct {
	BaseURL    string
	StreamURL  string
	Timeout    time.Duration
	RetryCount int
	UserAgent  string
	// SessionTTL 登录会话缓存时长；0 使用默认值，负数关闭缓存
	SessionTTL time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		BaseURL:    DefaultBaseURL,
		StreamURL:  stream.DefaultURL,
		Timeout:    30 * time.Second,
		UserAgent:  DefaultUserAgent,
		SessionTTL: DefaultSessionTTL,
	}
}

// Client Orion 客户端
type Client struct {
	http       *httpClient
	stream     *stream.Stream
	sessions   cache.Cache[types.LoginResponse]
	sessionTTL time.Duration
	now        func() time.Time
}

// NewClient 使用默认配置创建客户端
func NewClient() (*Client, error) {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig 使用自定义配置创建客户端，零值字段使用默认值
func NewClientWithConfig(config *Config) (*Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.StreamURL == "" {
		config.StreamURL = stream.DefaultURL
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.SessionTTL == 0 {
		config.SessionTTL = DefaultSessionTTL
	}

	c := &Client{
		http:       newHTTPClient(config.BaseURL, config.UserAgent, config.Timeout, config.RetryCount),
		sessionTTL: config.SessionTTL,
		now:        time.Now,
	}

	if config.SessionTTL > 0 {
		sessions, err := cache.NewBadgerCache[types.LoginResponse]("orion:session:", config.SessionTTL)
		if err != nil {
			return nil, errors.Wrap(err, "orion: open session cache")
		}
		c.sessions = sessions
	}

	streamCfg := stream.DefaultConfig()
	streamCfg.URL = config.StreamURL
	streamCfg.Pong = c.Pong
	c.stream = stream.New(streamCfg)

	return c, nil
}

// Stream 返回共享的事件流句柄
func (c *Client) Stream() *stream.Stream {
	return c.stream
}

// Close 关闭事件流并释放会话缓存
func (c *Client) Close() error {
	var first error
	if err := c.stream.Close(); err != nil {
		first = err
	}
	if c.sessions != nil {
		if err := c.sessions.Close(); err != nil && first == nil {
			first = errors.Wrap(err, "orion: close session cache")
		}
	}
	return first
}
