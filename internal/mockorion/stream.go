package mockorion

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/betbot/go-orion/orion/types"
)

func (s *Server) handleStream(c *gin.Context) {
	token := c.GetHeader("Authorization")
	ticket := c.Query("ticket")

	s.mu.Lock()
	_, tokenOK := s.tokens[token]
	ticketToken, ticketOK := s.tickets[ticket]
	if ticketOK {
		delete(s.tickets, ticket)
	}
	s.mu.Unlock()

	if !tokenOK && !(ticketOK && ticketToken != "") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token or ticket"})
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	sc := &streamConn{conn: conn}

	s.mu.Lock()
	s.dials++
	s.mu.Unlock()
	s.streamsMu.Lock()
	s.streams[sc] = struct{}{}
	s.streamsMu.Unlock()

	defer func() {
		s.streamsMu.Lock()
		delete(s.streams, sc)
		s.streamsMu.Unlock()
		_ = conn.Close()
	}()

	_ = sc.writeJSON(types.Event{EventType: types.EventWelcome, TS: nowSeconds()})
	if s.cfg.PingOnConnect {
		_ = sc.writeJSON(types.Event{EventType: types.EventPing, TS: nowSeconds()})
	}

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		// text frames from the client are echoed to every listener
		if msgType == websocket.TextMessage {
			s.broadcastRaw(data)
		}
	}
}

// Broadcast sends v to every connected stream.
func (s *Server) Broadcast(v any) {
	s.streamsMu.Lock()
	conns := make([]*streamConn, 0, len(s.streams))
	for sc := range s.streams {
		conns = append(conns, sc)
	}
	s.streamsMu.Unlock()
	for _, sc := range conns {
		_ = sc.writeJSON(v)
	}
}

func (s *Server) broadcastRaw(data []byte) {
	s.streamsMu.Lock()
	conns := make([]*streamConn, 0, len(s.streams))
	for sc := range s.streams {
		conns = append(conns, sc)
	}
	s.streamsMu.Unlock()
	for _, sc := range conns {
		sc.writeMu.Lock()
		_ = sc.conn.WriteMessage(websocket.TextMessage, data)
		sc.writeMu.Unlock()
	}
}

// SendPing pushes a ping event to every connected stream.
func (s *Server) SendPing() {
	s.Broadcast(types.Event{EventType: types.EventPing, TS: nowSeconds()})
}

// DropStreams closes every stream from the server side without a close frame.
func (s *Server) DropStreams() {
	s.streamsMu.Lock()
	defer s.streamsMu.Unlock()
	for sc := range s.streams {
		_ = sc.conn.Close()
	}
}

func nowSeconds() float64 {
	return float64(time.Now().UnixMilli()) / 1000
}
