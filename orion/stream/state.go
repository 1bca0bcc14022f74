package stream

// ReadyState mirrors the WebSocket readyState values.
type ReadyState int32

const (
	// Connecting means the handshake is in flight.
	Connecting ReadyState = iota
	// Open means the socket is usable.
	Open
	// Closing means a close was requested and the read loop is draining.
	Closing
	// Closed means there is no usable socket.
	Closed
)

// String returns the string representation of the ReadyState.
func (s ReadyState) String() string {
	switch s {
	case Connecting:
		return "CONNECTING"
	case Open:
		return "OPEN"
	case Closing:
		return "CLOSING"
	case Closed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// Reusable reports whether a handle in this state may be handed out again.
func (s ReadyState) Reusable() bool {
	return s < Closing
}
