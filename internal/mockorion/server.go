// Package mockorion is an in-memory stand-in for the Orion API, event stream,
// media store, Lyre and Locris. It backs the SDK tests and cmd/orion-mock.
package mockorion

import (
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/betbot/go-orion/orion/types"
)

// Default demo account.
const (
	DemoUsername = "demo"
	DemoPassword = "demo"
	DemoUserID   = "user-demo"
)

// Config controls optional behaviour of the fake.
type Config struct {
	// PingOnConnect sends a ping event right after the welcome frame.
	PingOnConnect bool
	// SkipDemoUser leaves the account table empty.
	SkipDemoUser bool
}

type account struct {
	password string
	user     types.User
}

// PTTRecord is a PTT event received for a group.
type PTTRecord struct {
	GroupID string
	Token   string
	Event   types.PTTEvent
}

// TextRecord is a text event received for a group.
type TextRecord struct {
	GroupID string
	Token   string
	Event   types.TextEvent
}

type streamConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (sc *streamConn) writeJSON(v any) error {
	sc.writeMu.Lock()
	defer sc.writeMu.Unlock()
	return sc.conn.WriteJSON(v)
}

// Server is the fake vendor.
type Server struct {
	cfg Config

	mu       sync.Mutex
	accounts map[string]*account // by uid
	tokens   map[string]string   // token -> user id
	tickets  map[string]string   // ticket -> token
	statuses map[string]types.UserStatus
	media    map[string][]byte
	ptts     []PTTRecord
	texts    []TextRecord
	lyre     []types.LyreRequest
	locris   []string
	engages  []types.EngageRequest
	logouts  []string
	forced   map[string]int
	pongs    int
	logins   int
	dials    int

	streamsMu sync.Mutex
	streams   map[*streamConn]struct{}

	upgrader websocket.Upgrader
}

// New creates the fake, seeded with the demo account unless disabled.
func New(cfg Config) *Server {
	s := &Server{
		cfg:      cfg,
		accounts: make(map[string]*account),
		tokens:   make(map[string]string),
		tickets:  make(map[string]string),
		statuses: make(map[string]types.UserStatus),
		media:    make(map[string][]byte),
		forced:   make(map[string]int),
		streams:  make(map[*streamConn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	if !cfg.SkipDemoUser {
		s.AddUser(DemoUsername, DemoPassword, types.User{
			ID:       DemoUserID,
			UID:      DemoUsername,
			Name:     "Demo User",
			Initials: "DU",
			Groups: []types.GroupRef{
				{ID: "group-alpha", Name: "Alpha"},
				{ID: "group-bravo", Name: "Bravo"},
			},
		})
	}
	return s
}

// AddUser registers an account. user.UID is set to uid.
func (s *Server) AddUser(uid, password string, user types.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user.UID = uid
	s.accounts[uid] = &account{password: password, user: user}
}

// ForceStatus makes every request to path answer with code. Zero clears it.
func (s *Server) ForceStatus(path string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code == 0 {
		delete(s.forced, path)
		return
	}
	s.forced[path] = code
}

// Router returns the HTTP handler. The REST API lives under /api.
func (s *Server) Router() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.forceStatus)

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	api := r.Group("/api")
	api.POST("/login", s.handleLogin)
	api.GET("/logout/:sessionID", s.auth, s.handleLogout)
	api.GET("/whoami", s.auth, s.handleWhoami)
	api.GET("/users/:userID", s.auth, s.handleUser)
	api.GET("/users/:userID/status", s.auth, s.handleGetStatus)
	api.PATCH("/users/:userID/status", s.auth, s.handleUpdateStatus)
	api.POST("/engage", s.auth, s.handleEngage)
	api.GET("/ticket", s.auth, s.handleTicket)
	api.POST("/pong", s.auth, s.handlePong)
	api.POST("/ptt/:groupID", s.auth, s.handlePTT)
	api.POST("/text/:groupID", s.auth, s.handleText)

	r.PUT("/media/*name", s.handlePutMedia)
	r.GET("/media/*name", s.handleGetMedia)

	r.GET("/stream/wss", s.handleStream)

	r.POST("/lyre", s.handleLyre)
	locris := r.Group("/locris")
	locris.POST("/:op", s.handleLocris)

	return r
}

func (s *Server) forceStatus(c *gin.Context) {
	s.mu.Lock()
	code, ok := s.forced[c.Request.URL.Path]
	s.mu.Unlock()
	if ok {
		c.AbortWithStatusJSON(code, gin.H{"error": http.StatusText(code)})
		return
	}
	c.Next()
}

func (s *Server) auth(c *gin.Context) {
	token := c.GetHeader("Authorization")
	s.mu.Lock()
	userID, ok := s.tokens[token]
	s.mu.Unlock()
	if token == "" || !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	c.Set("userID", userID)
	c.Set("token", token)
	c.Next()
}

func (s *Server) userByID(id string) (types.User, bool) {
	for _, a := range s.accounts {
		if a.user.ID == id {
			return a.user, true
		}
	}
	return types.User{}, false
}

func (s *Server) handleLogin(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[req.UID]
	if !ok || a.password != req.Password {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	s.logins++
	token := "tok-" + uuid.NewString()
	s.tokens[token] = a.user.ID
	c.JSON(http.StatusOK, types.LoginResponse{
		ID:        a.user.ID,
		Token:     token,
		SessionID: uuid.NewString(),
	})
}

func (s *Server) handleLogout(c *gin.Context) {
	s.mu.Lock()
	s.logouts = append(s.logouts, c.Param("sessionID"))
	delete(s.tokens, c.GetString("token"))
	s.mu.Unlock()
	c.String(http.StatusOK, "OK")
}

func (s *Server) handleWhoami(c *gin.Context) {
	s.mu.Lock()
	user, ok := s.userByID(c.GetString("userID"))
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) handleUser(c *gin.Context) {
	s.mu.Lock()
	user, ok := s.userByID(c.Param("userID"))
	s.mu.Unlock()
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such user"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) handleGetStatus(c *gin.Context) {
	id := c.Param("userID")
	s.mu.Lock()
	st, ok := s.statuses[id]
	s.mu.Unlock()
	if !ok {
		st = types.UserStatus{ID: id, Presence: "offline"}
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) handleUpdateStatus(c *gin.Context) {
	var st types.UserStatus
	if err := c.ShouldBindJSON(&st); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	st.ID = c.Param("userID")
	s.mu.Lock()
	s.statuses[st.ID] = st
	s.mu.Unlock()

	ev := st
	ev.EventType = string(types.EventUserStatus)
	s.Broadcast(ev)
	c.Status(http.StatusNoContent)
}

func (s *Server) handleEngage(c *gin.Context) {
	var req types.EngageRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.GroupIDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "groupIds required"})
		return
	}
	s.mu.Lock()
	s.engages = append(s.engages, req)
	statuses := make([]types.UserStatus, 0, len(s.statuses))
	for _, st := range s.statuses {
		statuses = append(statuses, st)
	}
	s.mu.Unlock()

	base := baseURL(c.Request)
	c.JSON(http.StatusOK, types.EngageResponse{
		Configuration: types.Configuration{MediaBase: base + "/media/"},
		StreamURL:     strings.Replace(base, "http", "ws", 1) + "/stream/wss",
		UserStatuses:  statuses,
	})
}

func (s *Server) handleTicket(c *gin.Context) {
	ticket := uuid.NewString()
	s.mu.Lock()
	s.tickets[ticket] = c.GetString("token")
	s.mu.Unlock()
	c.JSON(http.StatusOK, types.Ticket{Ticket: ticket})
}

func (s *Server) handlePong(c *gin.Context) {
	s.mu.Lock()
	s.pongs++
	s.mu.Unlock()
	c.Status(http.StatusNoContent)
}

func (s *Server) handlePTT(c *gin.Context) {
	var ev types.PTTEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	group := c.Param("groupID")
	s.mu.Lock()
	s.ptts = append(s.ptts, PTTRecord{GroupID: group, Token: c.GetString("token"), Event: ev})
	s.mu.Unlock()

	s.Broadcast(types.Event{
		EventType:    types.EventPTT,
		ID:           ev.ID,
		TS:           ev.TS,
		Sender:       c.GetString("userID"),
		GroupID:      group,
		TargetUserID: ev.TargetUserID,
		Media:        ev.Media,
	})
	c.JSON(http.StatusOK, gin.H{"id": ev.ID})
}

func (s *Server) handleText(c *gin.Context) {
	var ev types.TextEvent
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	group := c.Param("groupID")
	s.mu.Lock()
	s.texts = append(s.texts, TextRecord{GroupID: group, Token: c.GetString("token"), Event: ev})
	s.mu.Unlock()

	s.Broadcast(types.Event{
		EventType:    types.EventText,
		ID:           ev.ID,
		TS:           ev.TS,
		Sender:       c.GetString("userID"),
		GroupID:      group,
		TargetUserID: ev.TargetUserID,
		Text:         ev.Text,
	})
	c.JSON(http.StatusOK, gin.H{"id": ev.ID})
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
