package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Verbosity 事件流订阅详细程度
type Verbosity string

const (
	VerbosityActive  Verbosity = "active"
	VerbosityPassive Verbosity = "passive"
)

// DestinationEventStream engage 请求中唯一使用的目的地
const DestinationEventStream = "EventStream"

// ReturnTypeBuffer Locris 事件的 return_type，响应 payload 以字节返回
const ReturnTypeBuffer = "buffer"

// Buffer 可以从 Node 风格 {"type":"Buffer","data":[...]}、字节数组或字符串（UTF-8 字节）解析的字节串
type Buffer []byte

type nodeBuffer struct {
	Type string `json:"type"`
	Data []int  `json:"data"`
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (b *Buffer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*b = nil
		return nil
	}

	switch data[0] {
	case '{':
		var nb nodeBuffer
		if err := json.Unmarshal(data, &nb); err != nil {
			return fmt.Errorf("cannot unmarshal %s into Buffer: %w", truncate(data, 64), err)
		}
		if nb.Type != "" && nb.Type != "Buffer" {
			return fmt.Errorf("unexpected buffer type %q", nb.Type)
		}
		out, err := intsToBytes(nb.Data)
		if err != nil {
			return err
		}
		*b = out
		return nil
	case '[':
		var ints []int
		if err := json.Unmarshal(data, &ints); err != nil {
			return fmt.Errorf("cannot unmarshal %s into Buffer: %w", truncate(data, 64), err)
		}
		out, err := intsToBytes(ints)
		if err != nil {
			return err
		}
		*b = out
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		// 与 Buffer.from(string) 一致，按 UTF-8 取字节
		*b = []byte(s)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into Buffer", truncate(data, 64))
}

// MarshalJSON 按 Node Buffer 的 JSON 形式输出，Locris 服务按此格式接收
func (b Buffer) MarshalJSON() ([]byte, error) {
	if b == nil {
		return []byte("null"), nil
	}
	ints := make([]int, len(b))
	for i, v := range b {
		ints[i] = int(v)
	}
	return json.Marshal(nodeBuffer{Type: "Buffer", Data: ints})
}

func intsToBytes(ints []int) ([]byte, error) {
	out := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("buffer byte %d out of range: %d", i, v)
		}
		out[i] = byte(v)
	}
	return out, nil
}

// GroupRef 群组引用，接口有时返回纯 ID 字符串，有时返回对象
type GroupRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (g *GroupRef) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		*g = GroupRef{ID: id}
		return nil
	}

	type plain GroupRef
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("cannot unmarshal %s into GroupRef: %w", truncate(data, 64), err)
	}
	*g = GroupRef(p)
	return nil
}

// GroupIDs 提取群组 ID 列表
func GroupIDs(groups []GroupRef) []string {
	ids := make([]string, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}
	return ids
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
