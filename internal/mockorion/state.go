package mockorion

import (
	"github.com/betbot/go-orion/orion/types"
)

// Logins returns how many successful logins were served.
func (s *Server) Logins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins
}

// Pongs returns how many pong calls arrived.
func (s *Server) Pongs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pongs
}

// Dials returns how many stream sockets were accepted.
func (s *Server) Dials() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dials
}

// StreamCount returns the number of currently connected sockets.
func (s *Server) StreamCount() int {
	s.streamsMu.Lock()
	defer s.streamsMu.Unlock()
	return len(s.streams)
}

// Media returns the stored object under name (the path after /media/).
func (s *Server) Media(name string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.media[name]
	return b, ok
}

// PutMedia stores an object directly.
func (s *Server) PutMedia(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.media[name] = append([]byte(nil), data...)
}

// PTTs returns the PTT events received so far.
func (s *Server) PTTs() []PTTRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]PTTRecord(nil), s.ptts...)
}

// Texts returns the text events received so far.
func (s *Server) Texts() []TextRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]TextRecord(nil), s.texts...)
}

// Engages returns the engage requests received so far.
func (s *Server) Engages() []types.EngageRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.EngageRequest(nil), s.engages...)
}

// LyreRequests returns the Lyre requests received so far.
func (s *Server) LyreRequests() []types.LyreRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.LyreRequest(nil), s.lyre...)
}

// LocrisCalls returns the Locris operations called, in order.
func (s *Server) LocrisCalls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.locris...)
}

// Logouts returns the session ids logged out.
func (s *Server) Logouts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.logouts...)
}

// Status returns the stored status for a user.
func (s *Server) Status(userID string) (types.UserStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.statuses[userID]
	return st, ok
}
