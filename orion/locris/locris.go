// Package locris Lyre（文本转语音中继）与 Locris（音频转换、识别、翻译）服务客户端
package locris

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/betbot/go-orion/orion/client"
	"github.com/betbot/go-orion/orion/types"
	"github.com/betbot/go-orion/pkg/logger"
)

// 默认服务地址
const (
	DefaultLyreURL      = "https://lyre.api.orionaster.com/lyre"
	DefaultOV2WAVURL    = "https://locris.api.orionaster.com/ov2wav"
	DefaultSTTURL       = "https://locris.api.orionaster.com/stt"
	DefaultTranslateURL = "https://locris.api.orionaster.com/translate"
	DefaultWAV2OVURL    = "https://locris.api.orionaster.com/wav2ov"
)

// Config 服务地址配置
type Config struct {
	LyreURL      string
	OV2WAVURL    string
	STTURL       string
	TranslateURL string
	WAV2OVURL    string
	Timeout      time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		LyreURL:      DefaultLyreURL,
		OV2WAVURL:    DefaultOV2WAVURL,
		STTURL:       DefaultSTTURL,
		TranslateURL: DefaultTranslateURL,
		WAV2OVURL:    DefaultWAV2OVURL,
		Timeout:      60 * time.Second,
	}
}

// Client Lyre / Locris 客户端
type Client struct {
	cfg  Config
	http *resty.Client
}

// New 创建客户端，零值字段使用默认值
func New(config *Config) *Client {
	def := DefaultConfig()
	if config == nil {
		config = def
	}
	cfg := *config
	if cfg.LyreURL == "" {
		cfg.LyreURL = def.LyreURL
	}
	if cfg.OV2WAVURL == "" {
		cfg.OV2WAVURL = def.OV2WAVURL
	}
	if cfg.STTURL == "" {
		cfg.STTURL = def.STTURL
	}
	if cfg.TranslateURL == "" {
		cfg.TranslateURL = def.TranslateURL
	}
	if cfg.WAV2OVURL == "" {
		cfg.WAV2OVURL = def.WAV2OVURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}

	return &Client{
		cfg: cfg,
		http: resty.New().
			SetTimeout(cfg.Timeout).
			SetHeader("Content-Type", "application/json").
			SetHeader("Accept", "*/*"),
	}
}

// Config 返回生效的配置
func (c *Client) Config() Config {
	return c.cfg
}

func (c *Client) post(ctx context.Context, url string, body any) (*resty.Response, error) {
	start := time.Now()
	resp, err := c.http.R().SetContext(ctx).SetBody(body).Post(url)
	if err != nil {
		return nil, errors.Wrapf(err, "locris: POST %s", url)
	}
	logger.WithField("component", "locris").Debugf("POST %s -> %d (%v)", url, resp.StatusCode(), time.Since(start))
	if resp.StatusCode() != http.StatusOK {
		return nil, client.NewStatusError(http.MethodPost, url, resp.StatusCode(), resp.Status(), resp.Body())
	}
	return resp, nil
}

// Lyre 通过 Lyre 向群组发送文本转语音消息，message 与 media 为空时发送 null
// 返回服务端响应体（通常为 "OK"）
func (c *Client) Lyre(ctx context.Context, token string, groups []string, message, media, target string) (string, error) {
	if len(groups) == 0 {
		return "", client.ErrNoGroups
	}
	req := types.LyreRequest{
		Token:    token,
		GroupIDs: groups,
		Message:  optional(message),
		Media:    optional(media),
		Target:   target,
	}
	resp, err := c.post(ctx, c.cfg.LyreURL, req)
	if err != nil {
		return "", err
	}
	return string(resp.Body()), nil
}

// OV2WAV 将 Opus/OV 音频转为 WAV
func (c *Client) OV2WAV(ctx context.Context, ev *types.AudioEvent) (*types.AudioEvent, error) {
	return c.audio(ctx, c.cfg.OV2WAVURL, ev)
}

// STT 语音识别
func (c *Client) STT(ctx context.Context, ev *types.AudioEvent) (*types.AudioEvent, error) {
	return c.audio(ctx, c.cfg.STTURL, ev)
}

// Translate 翻译
func (c *Client) Translate(ctx context.Context, ev *types.AudioEvent) (*types.AudioEvent, error) {
	return c.audio(ctx, c.cfg.TranslateURL, ev)
}

// WAV2OV 将 WAV 音频转为 OV
func (c *Client) WAV2OV(ctx context.Context, ev *types.AudioEvent) (*types.AudioEvent, error) {
	return c.audio(ctx, c.cfg.WAV2OVURL, ev)
}

func (c *Client) audio(ctx context.Context, url string, ev *types.AudioEvent) (*types.AudioEvent, error) {
	if ev == nil {
		return nil, errors.New("locris: event is nil")
	}
	resp, err := c.post(ctx, url, ev)
	if err != nil {
		return nil, err
	}

	var out types.AudioEvent
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, errors.Wrapf(err, "locris: decode response from %s", url)
	}
	if ev.WantsBuffer() || out.WantsBuffer() {
		if err := out.DecodePayload(); err != nil {
			return nil, errors.Wrapf(err, "locris: decode payload from %s", url)
		}
	}
	return &out, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
