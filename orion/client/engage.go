package client

import (
	"context"
	"net/http"

	"github.com/betbot/go-orion/orion/types"
)

// Engage 订阅群组事件，verbosity 为空时使用 active
func (c *Client) Engage(ctx context.Context, token string, groups []string, verbosity types.Verbosity) (*types.EngageResponse, error) {
	if len(groups) == 0 {
		return nil, ErrNoGroups
	}
	if verbosity == "" {
		verbosity = types.VerbosityActive
	}
	req := types.EngageRequest{
		Seqnum:   c.now().UnixMilli(),
		GroupIDs: groups,
		Destinations: []types.Destination{
			{Destination: types.DestinationEventStream, Verbosity: verbosity},
		},
	}
	resp, err := c.http.do(ctx, http.MethodPost, EndpointEngage, requestOptions{
		Token: token,
		Body:  req,
	})
	if err != nil {
		return nil, err
	}
	var out types.EngageResponse
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// EngageAs 登录后订阅群组；groups 为空时订阅用户的全部群组
func (c *Client) EngageAs(ctx context.Context, username, password string, groups []string, verbosity types.Verbosity) (*types.EngageResponse, error) {
	sess, err := c.Session(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		all, err := c.GetAllUserGroups(ctx, sess.Token, sess.ID)
		if err != nil {
			return nil, err
		}
		groups = types.GroupIDs(all)
	}
	return c.Engage(ctx, sess.Token, groups, verbosity)
}

// GetTicket 获取打开事件流所需的票据
func (c *Client) GetTicket(ctx context.Context, token string) (string, error) {
	resp, err := c.http.do(ctx, http.MethodGet, EndpointTicket, requestOptions{Token: token})
	if err != nil {
		return "", err
	}
	var out types.Ticket
	if err := decode(resp, &out); err != nil {
		return "", err
	}
	return out.Ticket, nil
}

// Pong 回应事件流中的 ping
func (c *Client) Pong(ctx context.Context, token string) error {
	_, err := c.http.do(ctx, http.MethodPost, EndpointPong, requestOptions{Token: token},
		http.StatusOK, http.StatusNoContent)
	return err
}
