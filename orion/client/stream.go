package client

import (
	"context"

	"github.com/betbot/go-orion/orion/stream"
)

// ConnectStream 打开共享事件流；已连接或正在连接时直接复用
func (c *Client) ConnectStream(ctx context.Context, token string) (*stream.Stream, error) {
	err := c.stream.Connect(ctx, token, func(ctx context.Context) (string, error) {
		return c.GetTicket(ctx, token)
	})
	if err != nil {
		return nil, err
	}
	return c.stream, nil
}

// ConnectStreamAs 登录后打开共享事件流
func (c *Client) ConnectStreamAs(ctx context.Context, username, password string) (*stream.Stream, error) {
	sess, err := c.Session(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return c.ConnectStream(ctx, sess.Token)
}
