package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betbot/go-orion/internal/mockorion"
	"github.com/betbot/go-orion/orion/stream"
	"github.com/betbot/go-orion/orion/types"
)

var fixedNow = time.UnixMilli(1700000000123)

func newTestClient(t *testing.T, cfg mockorion.Config) (*Client, *mockorion.Server, *httptest.Server) {
	t.Helper()
	mock := mockorion.New(cfg)
	srv := httptest.NewServer(mock.Router())
	t.Cleanup(srv.Close)

	c, err := NewClientWithConfig(&Config{
		BaseURL:   srv.URL + "/api",
		StreamURL: "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream/wss",
		Timeout:   5 * time.Second,
	})
	require.NoError(t, err)
	c.now = func() time.Time { return fixedNow }
	t.Cleanup(func() { _ = c.Close() })
	return c, mock, srv
}

func login(t *testing.T, c *Client) *types.LoginResponse {
	t.Helper()
	sess, err := c.Login(context.Background(), mockorion.DemoUsername, mockorion.DemoPassword)
	require.NoError(t, err)
	return sess
}

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient()
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, stream.DefaultURL, c.Stream().URL())
	assert.Equal(t, DefaultSessionTTL, c.sessionTTL)
	assert.NotNil(t, c.sessions)
}

func TestNewClientSessionCacheDisabled(t *testing.T) {
	c, err := NewClientWithConfig(&Config{SessionTTL: -1})
	require.NoError(t, err)
	defer c.Close()
	assert.Nil(t, c.sessions)
}

func TestLoginAndWhoami(t *testing.T) {
	c, _, _ := newTestClient(t, mockorion.Config{})
	sess := login(t, c)
	assert.Equal(t, mockorion.DemoUserID, sess.ID)
	assert.NotEmpty(t, sess.Token)
	assert.NotEmpty(t, sess.SessionID)

	me, err := c.Whoami(context.Background(), sess.Token)
	require.NoError(t, err)
	assert.Equal(t, mockorion.DemoUserID, me.ID)
	assert.Equal(t, mockorion.DemoUsername, me.UID)
	assert.Len(t, me.Groups, 2)
}

func TestLoginBadCredentials(t *testing.T) {
	c, _, _ := newTestClient(t, mockorion.Config{})
	_, err := c.Login(context.Background(), mockorion.DemoUsername, "wrong")
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.ID)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
	assert.Contains(t, se.Error(), "HTTP 401")
	assert.Contains(t, string(se.RawBody()), "invalid credentials")
}

func TestUnauthorizedToken(t *testing.T) {
	c, _, _ := newTestClient(t, mockorion.Config{})
	_, err := c.Whoami(context.Background(), "bogus")
	assert.True(t, IsStatus(err, http.StatusUnauthorized))
}

func TestTransportErrorIsNotStatusError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewClientWithConfig(&Config{BaseURL: base, Timeout: time.Second, SessionTTL: -1})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Whoami(context.Background(), "t")
	require.Error(t, err)
	var se *StatusError
	assert.False(t, errors.As(err, &se))
}

func TestSessionCache(t *testing.T) {
	c, mock, _ := newTestClient(t, mockorion.Config{})
	ctx := context.Background()

	first, err := c.Session(ctx, mockorion.DemoUsername, mockorion.DemoPassword)
	require.NoError(t, err)
	second, err := c.Session(ctx, mockorion.DemoUsername, mockorion.DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, first.Token, second.Token)
	assert.Equal(t, 1, mock.Logins())

	c.InvalidateSession(mockorion.DemoUsername)
	third, err := c.Session(ctx, mockorion.DemoUsername, mockorion.DemoPassword)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, third.Token)
	assert.Equal(t, 2, mock.Logins())
}

func TestSessionRejectsWrongPasswordAfterCachedLogin(t *testing.T) {
	c, mock, _ := newTestClient(t, mockorion.Config{})
	ctx := context.Background()

	_, err := c.Session(ctx, mockorion.DemoUsername, mockorion.DemoPassword)
	require.NoError(t, err)

	_, err = c.Session(ctx, mockorion.DemoUsername, "wrong")
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusUnauthorized))

	groups, err := c.GetAllUserGroupsAs(ctx, mockorion.DemoUsername, "wrong")
	require.Error(t, err)
	assert.Nil(t, groups)

	// the correct password still hits the cache
	_, err = c.Session(ctx, mockorion.DemoUsername, mockorion.DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, 1, mock.Logins())
}

func TestLogout(t *testing.T) {
	c, mock, _ := newTestClient(t, mockorion.Config{})
	sess := login(t, c)

	body, err := c.Logout(context.Background(), sess.Token, sess.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "OK", string(body))
	assert.Equal(t, []string{sess.SessionID}, mock.Logouts())

	_, err = c.Logout(context.Background(), sess.Token, "")
	assert.Error(t, err)
}

func TestLogoutAsInvalidatesSession(t *testing.T) {
	c, mock, _ := newTestClient(t, mockorion.Config{})
	ctx := context.Background()

	_, err := c.LogoutAs(ctx, mockorion.DemoUsername, mockorion.DemoPassword)
	require.NoError(t, err)
	_, err = c.Session(ctx, mockorion.DemoUsername, mockorion.DemoPassword)
	require.NoError(t, err)
	assert.Equal(t, 2, mock.Logins())
}

func TestUserStatus(t *testing.T) {
	c, mock, _ := newTestClient(t, mockorion.Config{})
	ctx := context.Background()

	err := c.UpdateUserStatusAs(ctx, mockorion.DemoUsername, mockorion.DemoPassword, &types.UserStatus{
		Lat:      types.Float(37.77),
		Lng:      types.Float(-122.41),
		Presence: "online",
		Extra:    map[string]json.RawMessage{"battery": json.RawMessage(`87`)},
	})
	require.NoError(t, err)

	stored, ok := mock.Status(mockorion.DemoUserID)
	require.True(t, ok)
	assert.Equal(t, "online", stored.Presence)
	assert.JSONEq(t, `87`, string(stored.Extra["battery"]))

	sess, err := c.Session(ctx, mockorion.DemoUsername, mockorion.DemoPassword)
	require.NoError(t, err)
	got, err := c.GetUserStatus(ctx, sess.Token, mockorion.DemoUserID)
	require.NoError(t, err)
	require.NotNil(t, got.Lat)
	assert.InDelta(t, 37.77, *got.Lat, 1e-9)
	assert.JSONEq(t, `87`, string(got.Extra["battery"]))
}

func TestUpdateUserStatusRequiresNoContent(t *testing.T) {
	c, mock, _ := newTestClient(t, mockorion.Config{})
	sess := login(t, c)
	mock.ForceStatus("/api/users/"+mockorion.DemoUserID+"/status", http.StatusOK)

	err := c.UpdateUserStatus(context.Background(), sess.Token, &types.UserStatus{ID: mockorion.DemoUserID})
	assert.True(t, IsStatus(err, http.StatusOK))

	assert.ErrorIs(t, c.UpdateUserStatus(context.Background(), sess.Token, &types.UserStatus{}), ErrNoUserID)
}

func TestGetUserAndGroups(t *testing.T) {
	c, _, _ := newTestClient(t, mockorion.Config{})
	sess := login(t, c)
	ctx := context.Background()

	u, err := c.GetUser(ctx, sess.Token, mockorion.DemoUserID)
	require.NoError(t, err)
	assert.Equal(t, "Demo User", u.Name)

	_, err = c.GetUser(ctx, sess.Token, "nobody")
	assert.True(t, IsStatus(err, http.StatusNotFound))

	groups, err := c.GetAllUserGroups(ctx, sess.Token, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"group-alpha", "group-bravo"}, types.GroupIDs(groups))

	groups, err = c.GetAllUserGroupsAs(ctx, mockorion.DemoUsername, mockorion.DemoPassword)
	require.NoError(t, err)
	assert.Len(t, groups, 2)
}

func TestEngage(t *testing.T) {
	c, mock, srv := newTestClient(t, mockorion.Config{})
	sess := login(t, c)

	resp, err := c.Engage(context.Background(), sess.Token, []string{"group-alpha"}, "")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/media/", resp.Configuration.MediaBase)

	engages := mock.Engages()
	require.Len(t, engages, 1)
	assert.Equal(t, fixedNow.UnixMilli(), engages[0].Seqnum)
	assert.Equal(t, []string{"group-alpha"}, engages[0].GroupIDs)
	require.Len(t, engages[0].Destinations, 1)
	assert.Equal(t, types.DestinationEventStream, engages[0].Destinations[0].Destination)
	assert.Equal(t, types.VerbosityActive, engages[0].Destinations[0].Verbosity)

	_, err = c.Engage(context.Background(), sess.Token, nil, "")
	assert.ErrorIs(t, err, ErrNoGroups)
}

func TestEngageAsAllGroups(t *testing.T) {
	c, mock, _ := newTestClient(t, mockorion.Config{})
	_, err := c.EngageAs(context.Background(), mockorion.DemoUsername, mockorion.DemoPassword, nil, types.VerbosityPassive)
	require.NoError(t, err)

	engages := mock.Engages()
	require.Len(t, engages, 1)
	assert.Equal(t, []string{"group-alpha", "group-bravo"}, engages[0].GroupIDs)
	assert.Equal(t, types.VerbosityPassive, engages[0].Destinations[0].Verbosity)
}

func TestSendPTT(t *testing.T) {
	c, mock, srv := newTestClient(t, mockorion.Config{})
	media := []byte("OggS-fake-opus")

	mediaURL, err := c.SendPTTAs(context.Background(), mockorion.DemoUsername, mockorion.DemoPassword,
		media, []string{"group-alpha", "group-bravo"}, &PTTOptions{TargetUserID: "user-x"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(mediaURL, srv.URL+"/media/"))
	assert.True(t, strings.HasSuffix(mediaURL, MediaExtension))

	stored, ok := mock.Media(strings.TrimPrefix(mediaURL, srv.URL+"/media/"))
	require.True(t, ok)
	assert.Equal(t, media, stored)

	ptts := mock.PTTs()
	require.Len(t, ptts, 2)
	seen := map[string]bool{}
	for _, p := range ptts {
		seen[p.GroupID] = true
		assert.Equal(t, mediaURL, p.Event.Media)
		assert.Equal(t, types.EventPTT, p.Event.EventType)
		assert.Equal(t, "user-x", p.Event.TargetUserID)
		assert.InDelta(t, 1700000000.123, p.Event.TS, 1e-6)
	}
	assert.True(t, seen["group-alpha"] && seen["group-bravo"])
}

func TestSendPTTNoMediaBase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"configuration":{}}`))
	}))
	defer srv.Close()

	c, err := NewClientWithConfig(&Config{BaseURL: srv.URL, SessionTTL: -1})
	require.NoError(t, err)
	defer c.Close()

	_, err = c.SendPTT(context.Background(), "t", []byte("x"), []string{"g"}, nil)
	assert.ErrorIs(t, err, ErrNoMediaBase)
}

func TestSendPTTGroupFailure(t *testing.T) {
	c, mock, _ := newTestClient(t, mockorion.Config{})
	sess := login(t, c)
	mock.ForceStatus("/api/ptt/group-bravo", http.StatusForbidden)

	_, err := c.SendPTT(context.Background(), sess.Token, []byte("x"), []string{"group-alpha", "group-bravo"}, nil)
	assert.True(t, IsStatus(err, http.StatusForbidden))
}

func TestSendTextMessage(t *testing.T) {
	c, mock, _ := newTestClient(t, mockorion.Config{})
	sess := login(t, c)

	err := c.SendTextMessage(context.Background(), sess.Token, "hello", []string{"group-alpha", "group-bravo"}, "")
	require.NoError(t, err)

	texts := mock.Texts()
	require.Len(t, texts, 2)
	for _, tr := range texts {
		assert.Equal(t, "hello", tr.Event.Text)
		assert.Equal(t, types.EventText, tr.Event.EventType)
	}

	assert.ErrorIs(t, c.SendTextMessage(context.Background(), sess.Token, "x", nil, ""), ErrNoGroups)
}

func TestMedia(t *testing.T) {
	c, mock, srv := newTestClient(t, mockorion.Config{})
	ctx := context.Background()
	mock.PutMedia("clip.ov", []byte("voice"))

	data, err := c.GetMedia(ctx, srv.URL+"/media/clip.ov")
	require.NoError(t, err)
	assert.Equal(t, []byte("voice"), data)

	path, err := c.DownloadMedia(ctx, srv.URL+"/media/clip.ov")
	require.NoError(t, err)
	defer os.Remove(path)
	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("voice"), onDisk)

	_, err = c.DownloadMedia(ctx, srv.URL+"/media/missing.ov")
	assert.True(t, IsStatus(err, http.StatusNotFound))

	require.NoError(t, c.PutMedia(ctx, srv.URL+"/media/up.ov", []byte("up")))
	up, ok := mock.Media("up.ov")
	require.True(t, ok)
	assert.Equal(t, []byte("up"), up)
}

func TestPutMediaUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c, err := NewClientWithConfig(&Config{SessionTTL: -1})
	require.NoError(t, err)
	defer c.Close()

	err = c.PutMedia(context.Background(), srv.URL+"/x.ov", []byte("x"))
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusAccepted, se.ID)
}

func TestConnectStreamAnswersPing(t *testing.T) {
	c, mock, _ := newTestClient(t, mockorion.Config{PingOnConnect: true})
	ctx := context.Background()

	welcome := make(chan struct{}, 1)
	c.Stream().On(string(types.EventWelcome), func(ev *types.Event) error {
		welcome <- struct{}{}
		return nil
	})

	s, err := c.ConnectStreamAs(ctx, mockorion.DemoUsername, mockorion.DemoPassword)
	require.NoError(t, err)
	assert.Same(t, c.Stream(), s)
	assert.Equal(t, stream.Open, s.State())

	select {
	case <-welcome:
	case <-time.After(2 * time.Second):
		t.Fatal("no welcome event")
	}
	require.Eventually(t, func() bool { return mock.Pongs() == 1 }, 2*time.Second, 10*time.Millisecond)

	again, err := c.ConnectStreamAs(ctx, mockorion.DemoUsername, mockorion.DemoPassword)
	require.NoError(t, err)
	assert.Same(t, s, again)
	assert.Equal(t, 1, mock.Dials())

	require.NoError(t, s.Close())
	assert.Equal(t, stream.Closed, s.State())

	_, err = c.ConnectStreamAs(ctx, mockorion.DemoUsername, mockorion.DemoPassword)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return mock.Dials() == 2 }, 2*time.Second, 10*time.Millisecond)
}

func TestConnectStreamReceivesText(t *testing.T) {
	c, _, _ := newTestClient(t, mockorion.Config{})
	sess := login(t, c)
	ctx := context.Background()

	welcome := make(chan struct{}, 1)
	got := make(chan *types.Event, 1)
	c.Stream().On(string(types.EventWelcome), func(ev *types.Event) error {
		welcome <- struct{}{}
		return nil
	})
	c.Stream().On(string(types.EventText), func(ev *types.Event) error {
		got <- ev
		return nil
	})
	_, err := c.ConnectStream(ctx, sess.Token)
	require.NoError(t, err)

	// the mock registers the socket before sending welcome
	select {
	case <-welcome:
	case <-time.After(2 * time.Second):
		t.Fatal("no welcome event")
	}

	require.NoError(t, c.SendTextMessage(ctx, sess.Token, "over", []string{"group-alpha"}, ""))
	select {
	case ev := <-got:
		assert.Equal(t, "over", ev.Text)
		assert.Equal(t, "group-alpha", ev.GroupID)
		assert.Equal(t, mockorion.DemoUserID, ev.Sender)
	case <-time.After(2 * time.Second):
		t.Fatal("text event not delivered")
	}
}
