package client

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/pkg/errors"

	"github.com/betbot/go-orion/pkg/logger"
)

// MediaContentType 上传媒体使用的 Content-Type
const MediaContentType = "application/octet-stream"

// PutMedia 上传媒体到 url（通常为 mediabase + 对象名）
func (c *Client) PutMedia(ctx context.Context, url string, data []byte) error {
	_, err := c.http.do(ctx, http.MethodPut, url, requestOptions{
		Body:        data,
		ContentType: MediaContentType,
	})
	return err
}

// GetMedia 下载媒体到内存
func (c *Client) GetMedia(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.http.do(ctx, http.MethodGet, url, requestOptions{})
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// DownloadMedia 流式下载媒体到临时文件，返回文件路径，调用方负责删除
func (c *Client) DownloadMedia(ctx context.Context, url string) (string, error) {
	resp, err := c.http.do(ctx, http.MethodGet, url, requestOptions{Stream: true})
	if err != nil {
		return "", err
	}
	body := resp.RawBody()
	if body == nil {
		return "", errors.Errorf("orion: GET %s: empty body", url)
	}
	defer body.Close()

	f, err := os.CreateTemp("", "orion-media-*.ov")
	if err != nil {
		return "", errors.Wrap(err, "orion: create temp file")
	}
	n, err := io.Copy(f, body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return "", errors.Wrapf(err, "orion: download %s", url)
	}

	logger.WithField("component", "orion-client").Debugf("downloaded %d bytes from %s to %s", n, url, f.Name())
	return f.Name(), nil
}
