package types

import (
	"encoding/json"
)

// Destination engage 目的地
type Destination struct {
	Destination string    `json:"destination"`
	Verbosity   Verbosity `json:"verbosity"`
}

// EngageRequest 订阅群组事件流的请求
type EngageRequest struct {
	Seqnum       int64         `json:"seqnum"`
	GroupIDs     []string      `json:"groupIds"`
	Destinations []Destination `json:"destinations"`
}

// Configuration engage 返回的服务配置
type Configuration struct {
	MediaBase    string `json:"mediabase"`
	ArchivalHost string `json:"archival_host,omitempty"`
}

// EngageResponse engage 响应
type EngageResponse struct {
	Configuration Configuration     `json:"configuration"`
	MissedPTTs    []json.RawMessage `json:"missedPTTs"`
	StreamURL     string            `json:"streamURL"`
	UserStatuses  []UserStatus      `json:"userStatuses"`
	Welcomes      []json.RawMessage `json:"welcomes"`
}

// Ticket 打开事件流前获取的票据
type Ticket struct {
	Ticket string `json:"ticket"`
}
