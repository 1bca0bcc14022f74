package client

import (
	"net/url"
)

// API 端点（相对 BaseURL）
const (
	EndpointLogin  = "/login"
	EndpointLogout = "/logout/"
	EndpointWhoami = "/whoami"
	EndpointUsers  = "/users/"
	EndpointEngage = "/engage"
	EndpointTicket = "/ticket"
	EndpointPong   = "/pong"
	EndpointPTT    = "/ptt/"
	EndpointText   = "/text/"
)

func userPath(userID string) string {
	return EndpointUsers + url.PathEscape(userID)
}

func userStatusPath(userID string) string {
	return userPath(userID) + "/status"
}

func logoutPath(sessionID string) string {
	return EndpointLogout + url.PathEscape(sessionID)
}

func pttPath(groupID string) string {
	return EndpointPTT + url.PathEscape(groupID)
}

func textPath(groupID string) string {
	return EndpointText + url.PathEscape(groupID)
}
