package types

import (
	"encoding/json"
	"fmt"
)

// LyreRequest Lyre TTS 中继请求，message/media 为空时发送 null
type LyreRequest struct {
	Token    string   `json:"token"`
	GroupIDs []string `json:"group_ids"`
	Message  *string  `json:"message"`
	Media    *string  `json:"media"`
	Target   string   `json:"target"`
}

// AudioEvent Locris 服务的音频事件（ov2wav / stt / translate / wav2ov）
type AudioEvent struct {
	Payload    json.RawMessage `json:"payload,omitempty"`
	Media      string          `json:"media,omitempty"`
	ReturnType string          `json:"return_type,omitempty"`
	Lang       string          `json:"lang,omitempty"`
	TargetLang string          `json:"target_lang,omitempty"`
	Transcript string          `json:"transcript,omitempty"`

	// Bytes return_type 为 buffer 时解析出的 payload 字节
	Bytes Buffer `json:"-"`
	// Extra 透传的其他字段
	Extra map[string]json.RawMessage `json:"-"`
}

var audioKnownFields = []string{"payload", "media", "return_type", "lang", "target_lang", "transcript"}

// NewAudioEvent 以音频字节构造事件，payload 按 Node Buffer 格式编码
func NewAudioEvent(audio []byte) (*AudioEvent, error) {
	ev := &AudioEvent{}
	if err := ev.SetPayload(audio); err != nil {
		return nil, err
	}
	return ev, nil
}

// SetPayload 设置 payload 字节
func (a *AudioEvent) SetPayload(audio []byte) error {
	raw, err := json.Marshal(Buffer(audio))
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	a.Payload = raw
	a.Bytes = Buffer(audio)
	return nil
}

// DecodePayload 将 payload 解析为字节并写入 Bytes
func (a *AudioEvent) DecodePayload() error {
	if len(a.Payload) == 0 {
		a.Bytes = nil
		return nil
	}
	var b Buffer
	if err := json.Unmarshal(a.Payload, &b); err != nil {
		return err
	}
	a.Bytes = b
	return nil
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (a *AudioEvent) UnmarshalJSON(data []byte) error {
	type plain AudioEvent
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range audioKnownFields {
		delete(all, k)
	}
	if len(all) > 0 {
		p.Extra = all
	}
	*a = AudioEvent(p)
	return nil
}

// MarshalJSON 合并 Extra 字段输出
func (a AudioEvent) MarshalJSON() ([]byte, error) {
	type plain AudioEvent
	return mergeExtra(plain(a), a.Extra)
}

func mergeExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	base, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(extra) == 0 {
		return base, nil
	}

	var known map[string]json.RawMessage
	if err := json.Unmarshal(base, &known); err != nil {
		return nil, err
	}
	merged := make(map[string]json.RawMessage, len(extra)+len(known))
	for k, v := range extra {
		merged[k] = v
	}
	for k, v := range known {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// WantsBuffer 请求是否要求以字节返回 payload
func (a *AudioEvent) WantsBuffer() bool {
	return a != nil && a.ReturnType == ReturnTypeBuffer
}
