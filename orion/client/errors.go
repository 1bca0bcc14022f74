package client

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrNoMediaBase engage 响应中没有 mediabase，无法上传媒体
	ErrNoMediaBase = errors.New("orion: engage response has no media base")
	// ErrNoGroups 未指定群组
	ErrNoGroups = errors.New("orion: no groups given")
	// ErrNoUserID 未指定用户 ID
	ErrNoUserID = errors.New("orion: no user id given")
)

// StatusError 响应状态码与期望不符，ID 为 HTTP 状态码
type StatusError struct {
	ID     int             `json:"id"`
	Status string          `json:"status"`
	Method string          `json:"method"`
	URL    string          `json:"url"`
	Body   json.RawMessage `json:"body,omitempty"`
	raw    []byte
}

// NewStatusError 根据响应构造 StatusError
func NewStatusError(method, url string, code int, status string, body []byte) *StatusError {
	e := &StatusError{
		ID:     code,
		Status: status,
		Method: method,
		URL:    url,
		raw:    body,
	}
	if json.Valid(body) {
		e.Body = append(json.RawMessage(nil), body...)
	}
	return e
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(string(e.raw))
	if len(body) > 240 {
		body = body[:240] + "...(truncated)"
	}
	if body == "" {
		return fmt.Sprintf("orion: %s %s: HTTP %d", e.Method, e.URL, e.ID)
	}
	return fmt.Sprintf("orion: %s %s: HTTP %d: %s", e.Method, e.URL, e.ID, body)
}

// RawBody 返回原始响应体
func (e *StatusError) RawBody() []byte {
	return e.raw
}

// IsStatus 判断 err 是否为指定状态码的 StatusError
func IsStatus(err error, code int) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.ID == code
	}
	return false
}
