package client

import (
	"context"
	"net/http"

	"github.com/betbot/go-orion/orion/types"
)

// GetUser 获取用户资料
func (c *Client) GetUser(ctx context.Context, token, userID string) (*types.User, error) {
	if userID == "" {
		return nil, ErrNoUserID
	}
	resp, err := c.http.do(ctx, http.MethodGet, userPath(userID), requestOptions{Token: token})
	if err != nil {
		return nil, err
	}
	var out types.User
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetAllUserGroups 获取用户所在的全部群组，userID 为空时查询当前用户
func (c *Client) GetAllUserGroups(ctx context.Context, token, userID string) ([]types.GroupRef, error) {
	var (
		user *types.User
		err  error
	)
	if userID == "" {
		user, err = c.Whoami(ctx, token)
	} else {
		user, err = c.GetUser(ctx, token, userID)
	}
	if err != nil {
		return nil, err
	}
	return user.Groups, nil
}

// GetAllUserGroupsAs 登录后获取当前用户的全部群组
func (c *Client) GetAllUserGroupsAs(ctx context.Context, username, password string) ([]types.GroupRef, error) {
	sess, err := c.Session(ctx, username, password)
	if err != nil {
		return nil, err
	}
	return c.GetAllUserGroups(ctx, sess.Token, sess.ID)
}

// GetUserStatus 获取用户状态
func (c *Client) GetUserStatus(ctx context.Context, token, userID string) (*types.UserStatus, error) {
	if userID == "" {
		return nil, ErrNoUserID
	}
	resp, err := c.http.do(ctx, http.MethodGet, userStatusPath(userID), requestOptions{Token: token})
	if err != nil {
		return nil, err
	}
	var out types.UserStatus
	if err := decode(resp, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUserStatus 更新用户状态，成功时服务端返回 204
func (c *Client) UpdateUserStatus(ctx context.Context, token string, status *types.UserStatus) error {
	if status == nil || status.ID == "" {
		return ErrNoUserID
	}
	_, err := c.http.do(ctx, http.MethodPatch, userStatusPath(status.ID), requestOptions{
		Token: token,
		Body:  status,
	}, http.StatusNoContent)
	return err
}

// UpdateUserStatusAs 登录后更新状态，status.ID 为空时使用登录用户
func (c *Client) UpdateUserStatusAs(ctx context.Context, username, password string, status *types.UserStatus) error {
	sess, err := c.Session(ctx, username, password)
	if err != nil {
		return err
	}
	if status == nil {
		status = &types.UserStatus{}
	}
	if status.ID == "" {
		status.ID = sess.ID
	}
	return c.UpdateUserStatus(ctx, sess.Token, status)
}
