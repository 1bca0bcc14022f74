package types

import (
	"encoding/json"
	"fmt"
)

// EventType 事件流中的事件类型
type EventType string

const (
	EventPing       EventType = "ping"
	EventPTT        EventType = "ptt"
	EventText       EventType = "text"
	EventUserStatus EventType = "userstatus"
	EventWelcome    EventType = "welcome"
)

// PTTEvent 发送到群组的语音消息事件
type PTTEvent struct {
	EventType    EventType `json:"event_type"`
	ID           string    `json:"id,omitempty"`
	TS           float64   `json:"ts"`
	Media        string    `json:"media"`
	TargetUserID string    `json:"target_user_id,omitempty"`
	StreamKey    string    `json:"stream_key,omitempty"`
}

// TextEvent 发送到群组的文本消息事件
type TextEvent struct {
	EventType    EventType `json:"event_type"`
	ID           string    `json:"id,omitempty"`
	TS           float64   `json:"ts"`
	Text         string    `json:"text"`
	TargetUserID string    `json:"target_user_id,omitempty"`
}

// Event 事件流中收到的一帧
type Event struct {
	EventType    EventType `json:"event_type"`
	ID           string    `json:"id,omitempty"`
	TS           float64   `json:"ts,omitempty"`
	Sender       string    `json:"sender,omitempty"`
	SenderName   string    `json:"sender_name,omitempty"`
	GroupID      string    `json:"group_id,omitempty"`
	TargetUserID string    `json:"target_user_id,omitempty"`
	Media        string    `json:"media,omitempty"`
	Text         string    `json:"text,omitempty"`

	// Raw 原始 JSON
	Raw json.RawMessage `json:"-"`
}

// ParseEvent 解析一帧事件
func ParseEvent(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("failed to parse event: %w", err)
	}
	ev.Raw = append(json.RawMessage(nil), data...)
	return &ev, nil
}

// ParseUserStatus 将 userstatus 事件解析为 UserStatus
func (e *Event) ParseUserStatus() (*UserStatus, error) {
	if e.EventType != EventUserStatus {
		return nil, fmt.Errorf("event %q is not a userstatus event", e.EventType)
	}
	var status UserStatus
	if err := json.Unmarshal(e.Raw, &status); err != nil {
		return nil, fmt.Errorf("failed to parse userstatus: %w", err)
	}
	return &status, nil
}
