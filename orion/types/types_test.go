package types

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestBuffer_UnmarshalForms(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []byte
	}{
		{"node buffer", `{"type":"Buffer","data":[1,2,255]}`, []byte{1, 2, 255}},
		{"array", `[7, 8]`, []byte{7, 8}},
		{"string", `"hello"`, []byte("hello")},
		{"base64 looking string", `"aGk="`, []byte("aGk=")},
		{"utf8 string", `"héllo"`, []byte("héllo")},
		{"null", `null`, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var b Buffer
			if err := json.Unmarshal([]byte(tc.raw), &b); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			if !bytes.Equal(b, tc.want) {
				t.Fatalf("got %v, want %v", []byte(b), tc.want)
			}
		})
	}
}

func TestBuffer_UnmarshalErrors(t *testing.T) {
	for _, raw := range []string{`{"type":"Blob","data":[1]}`, `[256]`, `true`} {
		var b Buffer
		if err := json.Unmarshal([]byte(raw), &b); err == nil {
			t.Errorf("expected error for %s", raw)
		}
	}
}

func TestBuffer_MarshalNodeForm(t *testing.T) {
	out, err := json.Marshal(Buffer{0, 16})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != `{"type":"Buffer","data":[0,16]}` {
		t.Fatalf("unexpected json: %s", out)
	}
}

func TestGroupRef_StringOrObject(t *testing.T) {
	var groups []GroupRef
	raw := `["g1", {"id":"g2","name":"Bravo"}]`
	if err := json.Unmarshal([]byte(raw), &groups); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(groups) != 2 || groups[0].ID != "g1" || groups[1].Name != "Bravo" {
		t.Fatalf("unexpected groups: %+v", groups)
	}
	ids := GroupIDs(groups)
	if len(ids) != 2 || ids[1] != "g2" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestUser_Extra(t *testing.T) {
	raw := []byte(`{"id":"u1","name":"Ann","groups":["g1"],"favorite_color":"teal"}`)
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if u.ID != "u1" || u.Name != "Ann" || len(u.Groups) != 1 {
		t.Fatalf("unexpected user: %+v", u)
	}
	if string(u.Extra["favorite_color"]) != `"teal"` {
		t.Fatalf("extra field missing: %v", u.Extra)
	}
	if _, ok := u.Extra["name"]; ok {
		t.Fatal("known field should not be in Extra")
	}
}

func TestUserStatus_Extra(t *testing.T) {
	raw := []byte(`{"id":"u1","presence":"online","battery":87,"device":{"os":"ios"}}`)
	var st UserStatus
	if err := json.Unmarshal(raw, &st); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if st.ID != "u1" || st.Presence != "online" {
		t.Fatalf("unexpected status: %+v", st)
	}
	if string(st.Extra["battery"]) != "87" || len(st.Extra) != 2 {
		t.Fatalf("unexpected extra: %v", st.Extra)
	}

	out, err := json.Marshal(st)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var back map[string]json.RawMessage
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal map failed: %v", err)
	}
	if string(back["device"]) != `{"os":"ios"}` || string(back["presence"]) != `"online"` {
		t.Fatalf("extra fields not passed through: %s", out)
	}
}

func TestParseEvent(t *testing.T) {
	ev, err := ParseEvent([]byte(`{"event_type":"userstatus","id":"u1","lat":1.5,"presence":"online"}`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if ev.EventType != EventUserStatus || len(ev.Raw) == 0 {
		t.Fatalf("unexpected event: %+v", ev)
	}
	st, err := ev.ParseUserStatus()
	if err != nil {
		t.Fatalf("parse userstatus failed: %v", err)
	}
	if st.ID != "u1" || st.Lat == nil || *st.Lat != 1.5 || st.Presence != "online" {
		t.Fatalf("unexpected status: %+v", st)
	}

	text, err := ParseEvent([]byte(`{"event_type":"text","text":"hi"}`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if _, err := text.ParseUserStatus(); err == nil {
		t.Fatal("expected error for non-userstatus event")
	}

	if _, err := ParseEvent([]byte(`nope`)); err == nil {
		t.Fatal("expected error for invalid json")
	}
}

func TestEngageRequest_JSON(t *testing.T) {
	out, err := json.Marshal(EngageRequest{
		Seqnum:       42,
		GroupIDs:     []string{"g1"},
		Destinations: []Destination{{Destination: DestinationEventStream, Verbosity: VerbosityActive}},
	})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	want := `{"seqnum":42,"groupIds":["g1"],"destinations":[{"destination":"EventStream","verbosity":"active"}]}`
	if string(out) != want {
		t.Fatalf("got %s, want %s", out, want)
	}
}

func TestAudioEvent_PayloadAndExtra(t *testing.T) {
	ev, err := NewAudioEvent([]byte{9, 8})
	if err != nil {
		t.Fatalf("new event failed: %v", err)
	}
	ev.ReturnType = ReturnTypeBuffer
	ev.Extra = map[string]json.RawMessage{"rate": json.RawMessage(`16000`)}

	out, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var back AudioEvent
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !back.WantsBuffer() {
		t.Fatal("return_type lost")
	}
	if string(back.Extra["rate"]) != "16000" {
		t.Fatalf("extra lost: %v", back.Extra)
	}
	if err := back.DecodePayload(); err != nil {
		t.Fatalf("decode payload failed: %v", err)
	}
	if !bytes.Equal(back.Bytes, []byte{9, 8}) {
		t.Fatalf("unexpected bytes: %v", back.Bytes)
	}

	var empty AudioEvent
	if err := empty.DecodePayload(); err != nil || empty.Bytes != nil {
		t.Fatalf("empty payload should decode to nil: %v %v", err, empty.Bytes)
	}
}

func TestLyreRequest_NullFields(t *testing.T) {
	out, err := json.Marshal(LyreRequest{Token: "t", GroupIDs: []string{"g"}})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if !bytes.Contains(out, []byte(`"message":null`)) || !bytes.Contains(out, []byte(`"media":null`)) {
		t.Fatalf("expected null message and media: %s", out)
	}
}
