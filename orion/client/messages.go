package client

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/betbot/go-orion/orion/types"
	"github.com/betbot/go-orion/pkg/logger"
)

// MediaExtension 上传的语音对象后缀
const MediaExtension = ".ov"

// PTTOptions PTT 的可选参数
type PTTOptions struct {
	TargetUserID string
	StreamKey    string
}

// SendPTTEvent 向单个群组发送 PTT 事件
func (c *Client) SendPTTEvent(ctx context.Context, token, groupID string, ev *types.PTTEvent) error {
	if groupID == "" {
		return ErrNoGroups
	}
	_, err := c.http.do(ctx, http.MethodPost, pttPath(groupID), requestOptions{
		Token: token,
		Body:  ev,
	})
	return err
}

// SendPTT engage 群组，上传语音到 mediabase，然后并发向每个群组发送 PTT 事件
// 返回上传后的媒体地址
func (c *Client) SendPTT(ctx context.Context, token string, media []byte, groups []string, opts *PTTOptions) (string, error) {
	if len(groups) == 0 {
		return "", ErrNoGroups
	}
	if opts == nil {
		opts = &PTTOptions{}
	}

	engaged, err := c.Engage(ctx, token, groups, types.VerbosityActive)
	if err != nil {
		return "", err
	}
	base := engaged.Configuration.MediaBase
	if base == "" {
		return "", ErrNoMediaBase
	}

	mediaURL := base + uuid.NewString() + MediaExtension
	if err := c.PutMedia(ctx, mediaURL, media); err != nil {
		return "", err
	}

	ts := c.timestamp()
	g, gctx := errgroup.WithContext(ctx)
	for _, group := range groups {
		g.Go(func() error {
			return c.SendPTTEvent(gctx, token, group, &types.PTTEvent{
				EventType:    types.EventPTT,
				ID:           uuid.NewString(),
				TS:           ts,
				Media:        mediaURL,
				TargetUserID: opts.TargetUserID,
				StreamKey:    opts.StreamKey,
			})
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	logger.WithField("component", "orion-client").Infof("ptt sent to %s: %s", strings.Join(groups, ","), mediaURL)
	return mediaURL, nil
}

// SendPTTAs 登录后发送 PTT
func (c *Client) SendPTTAs(ctx context.Context, username, password string, media []byte, groups []string, opts *PTTOptions) (string, error) {
	sess, err := c.Session(ctx, username, password)
	if err != nil {
		return "", err
	}
	return c.SendPTT(ctx, sess.Token, media, groups, opts)
}

// SendTextMessage 并发向每个群组发送文本消息，targetUserID 可为空
func (c *Client) SendTextMessage(ctx context.Context, token, text string, groups []string, targetUserID string) error {
	if len(groups) == 0 {
		return ErrNoGroups
	}
	ts := c.timestamp()
	g, gctx := errgroup.WithContext(ctx)
	for _, group := range groups {
		g.Go(func() error {
			_, err := c.http.do(gctx, http.MethodPost, textPath(group), requestOptions{
				Token: token,
				Body: &types.TextEvent{
					EventType:    types.EventText,
					ID:           uuid.NewString(),
					TS:           ts,
					Text:         text,
					TargetUserID: targetUserID,
				},
			})
			return err
		})
	}
	return g.Wait()
}

// timestamp 事件时间戳（秒，带小数）
func (c *Client) timestamp() float64 {
	return float64(c.now().UnixMilli()) / 1000
}
