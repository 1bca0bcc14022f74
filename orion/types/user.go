package types

import (
	"encoding/json"
)

// LoginRequest 登录请求
type LoginRequest struct {
	UID      string `json:"uid"`
	Password string `json:"password"`
}

// LoginResponse 登录响应，token 为不透明的 bearer token
type LoginResponse struct {
	ID        string `json:"id"`
	Token     string `json:"token"`
	SessionID string `json:"sessionId,omitempty"`
}

// ContactPoint 邮箱或电话
type ContactPoint struct {
	Body     string `json:"body"`
	Verified bool   `json:"verified"`
	ID       string `json:"id"`
}

// User 用户资料（whoami / users/{id}）
type User struct {
	ID                    string            `json:"id"`
	UID                   string            `json:"uid,omitempty"`
	Name                  string            `json:"name,omitempty"`
	Initials              string            `json:"initials,omitempty"`
	Language              string            `json:"language,omitempty"`
	OrganizationID        string            `json:"organization_id,omitempty"`
	OrganizationName      string            `json:"organization_name,omitempty"`
	IsOrganizationManager bool              `json:"is_organization_manager,omitempty"`
	IsOrganizationOwner   bool              `json:"is_organization_owner,omitempty"`
	Emails                []ContactPoint    `json:"emails,omitempty"`
	Phones                []ContactPoint    `json:"phones,omitempty"`
	Avatars               map[string]string `json:"avatars,omitempty"`
	Groups                []GroupRef        `json:"groups,omitempty"`
	SystemFlags           []string          `json:"system_flags,omitempty"`
	PTTMode               string            `json:"ptt_mode,omitempty"`
	CreatedTS             int64             `json:"created_ts,omitempty"`

	// Extra 保留未建模的字段
	Extra map[string]json.RawMessage `json:"-"`
}

var userKnownFields = map[string]struct{}{
	"id": {}, "uid": {}, "name": {}, "initials": {}, "language": {},
	"organization_id": {}, "organization_name": {}, "is_organization_manager": {},
	"is_organization_owner": {}, "emails": {}, "phones": {}, "avatars": {},
	"groups": {}, "system_flags": {}, "ptt_mode": {}, "created_ts": {},
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for k := range userKnownFields {
		delete(all, k)
	}
	if len(all) > 0 {
		p.Extra = all
	}

	*u = User(p)
	return nil
}

// UserStatus 用户状态（位置、在线状态等）
type UserStatus struct {
	ID             string          `json:"id"`
	Lat            *float64        `json:"lat,omitempty"`
	Lng            *float64        `json:"lng,omitempty"`
	Presence       string          `json:"presence,omitempty"`
	Muted          *bool           `json:"muted,omitempty"`
	Groups         []string        `json:"groups,omitempty"`
	Location       json.RawMessage `json:"location,omitempty"`
	IndoorLocation json.RawMessage `json:"indoor_location,omitempty"`
	SensorData     json.RawMessage `json:"sensor_data,omitempty"`
	EventType      string          `json:"event_type,omitempty"`

	// Extra 透传的其他字段
	Extra map[string]json.RawMessage `json:"-"`
}

var statusKnownFields = []string{
	"id", "lat", "lng", "presence", "muted", "groups",
	"location", "indoor_location", "sensor_data", "event_type",
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (s *UserStatus) UnmarshalJSON(data []byte) error {
	type plain UserStatus
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range statusKnownFields {
		delete(all, k)
	}
	if len(all) > 0 {
		p.Extra = all
	}
	*s = UserStatus(p)
	return nil
}

// MarshalJSON 合并 Extra 字段输出，已建模字段优先
func (s UserStatus) MarshalJSON() ([]byte, error) {
	type plain UserStatus
	return mergeExtra(plain(s), s.Extra)
}

// Float 返回 float 指针，便于构造 UserStatus
func Float(v float64) *float64 {
	return &v
}

// Bool 返回 bool 指针
func Bool(v bool) *bool {
	return &v
}
