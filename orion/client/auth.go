package client

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"github.com/betbot/go-orion/orion/types"
	"github.com/betbot/go-orion/pkg/logger"
)

// Login 用户名密码登录
func (c *Client) Login(ctx context.Context, username, password string) (*types.LoginResponse, error) {
	resp, err := c.http.do(ctx, http.MethodPost, EndpointLogin, requestOptions{
		Body: types.LoginRequest{UID: username, Password: password},
	})
	if err != nil {
		return nil, err
	}
	var out types.LoginResponse
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout 注销会话，返回服务端原始响应
func (c *Client) Logout(ctx context.Context, token, sessionID string) ([]byte, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, errors.New("orion: session id is empty")
	}
	resp, err := c.http.do(ctx, http.MethodGet, logoutPath(sessionID), requestOptions{Token: token})
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// Whoami 获取当前 token 对应的用户
func (c *Client) Whoami(ctx context.Context, token string) (*types.User, error) {
	resp, err := c.http.do(ctx, http.MethodGet, EndpointWhoami, requestOptions{Token: token})
	if err != nil {
		return nil, err
	}
	var out types.User
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// sessionPrefix 用户名转义后不含 ':'，前缀只匹配该用户
func sessionPrefix(username string) string {
	return url.QueryEscape(username) + ":"
}

// sessionKey 缓存键包含密码摘要，密码错误时不会命中
func sessionKey(username, password string) string {
	sum := sha256.Sum256([]byte(password))
	return sessionPrefix(username) + hex.EncodeToString(sum[:])
}

// Session 登录并缓存结果，相同用户名和密码命中缓存时不发请求
func (c *Client) Session(ctx context.Context, username, password string) (*types.LoginResponse, error) {
	key := sessionKey(username, password)
	if c.sessions != nil {
		sess, ok, err := c.sessions.Get(key)
		if err != nil {
			logger.WithField("component", "orion-client").Warnf("session cache read failed: %v", err)
		} else if ok && sess.Token != "" {
			return &sess, nil
		}
	}

	sess, err := c.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if c.sessions != nil {
		if err := c.sessions.Set(key, *sess, c.sessionTTL); err != nil {
			logger.WithField("component", "orion-client").Warnf("session cache write failed: %v", err)
		}
	}
	return sess, nil
}

// InvalidateSession 删除该用户缓存的全部会话
func (c *Client) InvalidateSession(username string) {
	if c.sessions == nil {
		return
	}
	if _, err := c.sessions.DeletePrefix(sessionPrefix(username)); err != nil {
		logger.WithField("component", "orion-client").Debugf("session cache delete failed: %v", err)
	}
}

// LogoutAs 注销缓存的会话并使其失效
func (c *Client) LogoutAs(ctx context.Context, username, password string) ([]byte, error) {
	sess, err := c.Session(ctx, username, password)
	if err != nil {
		return nil, err
	}
	c.InvalidateSession(username)
	return c.Logout(ctx, sess.Token, sess.SessionID)
}
