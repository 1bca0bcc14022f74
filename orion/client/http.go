package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/betbot/go-orion/pkg/logger"
)

// HTTP 客户端封装（resty）
type httpClient struct {
	client *resty.Client
}

// restyLogger 将 resty 日志转发到 pkg/logger
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...interface{}) {
	logger.WithField("component", "resty").Errorf(format, v...)
}

func (restyLogger) Warnf(format string, v ...interface{}) {
	logger.WithField("component", "resty").Warnf(format, v...)
}

func (restyLogger) Debugf(format string, v ...interface{}) {
	logger.WithField("component", "resty").Debugf(format, v...)
}

// newHTTPClient 创建 resty 客户端（resty 会自动读取 HTTP_PROXY 等环境变量）
func newHTTPClient(baseURL, userAgent string, timeout time.Duration, retryCount int) *httpClient {
	c := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "*/*").
		SetLogger(restyLogger{})
	if retryCount > 0 {
		c = c.SetRetryCount(retryCount).
			SetRetryWaitTime(500 * time.Millisecond).
			SetRetryMaxWaitTime(5 * time.Second)
	}
	return &httpClient{client: c}
}

// requestOptions 单次请求参数
type requestOptions struct {
	Token       string
	Body        any
	ContentType string
	Stream      bool
}

// do 执行请求并检查状态码，expect 为允许的状态码列表
func (h *httpClient) do(ctx context.Context, method, endpoint string, opt requestOptions, expect ...int) (*resty.Response, error) {
	r := h.client.R()
	if ctx != nil {
		r.SetContext(ctx)
	}
	if opt.Token != "" {
		r.SetHeader("Authorization", opt.Token)
	}
	if opt.Body != nil {
		ct := opt.ContentType
		if ct == "" {
			ct = "application/json"
		}
		r.SetHeader("Content-Type", ct)
		r.SetBody(opt.Body)
	}
	if opt.Stream {
		r.SetDoNotParseResponse(true)
	}

	start := time.Now()
	resp, err := r.Execute(method, endpoint)
	entry := logger.WithField("component", "orion-http")
	if err != nil {
		entry.Debugf("%s %s failed after %v: %v", method, endpoint, time.Since(start), err)
		return nil, errors.Wrapf(err, "orion: %s %s", method, endpoint)
	}
	entry.Debugf("%s %s -> %d (%v)", method, endpoint, resp.StatusCode(), time.Since(start))

	if len(expect) == 0 {
		expect = []int{http.StatusOK}
	}
	for _, code := range expect {
		if resp.StatusCode() == code {
			return resp, nil
		}
	}

	var body []byte
	if opt.Stream {
		if rb := resp.RawBody(); rb != nil {
			body, _ = io.ReadAll(io.LimitReader(rb, 4096))
			rb.Close()
		}
	} else {
		body = resp.Body()
	}
	return nil, NewStatusError(method, resp.Request.URL, resp.StatusCode(), resp.Status(), body)
}

// decode 解析 JSON 响应体
func decode(resp *resty.Response, out any) error {
	body := resp.Body()
	if err := json.Unmarshal(body, out); err != nil {
		preview := string(body)
		if len(preview) > 240 {
			preview = preview[:240] + "...(truncated)"
		}
		return errors.Wrapf(err, "orion: decode response from %s (body: %s)", resp.Request.URL, preview)
	}
	return nil
}
