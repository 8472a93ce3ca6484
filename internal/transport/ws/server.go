package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/GhanbarT/ball-and-hole/internal/protocol"
)

// Server streams round frames to observers. Observers open a websocket, send
// HELLO, receive WELCOME with the run parameters and then a FRAME per round.
// Observers are read-only; a slow observer loses frames rather than stalling
// the round loop.
type Server struct {
	log *log.Logger

	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	mu      sync.Mutex
	welcome protocol.WelcomeMsg
	latest  []byte
	subs    map[uint64]chan []byte
}

func NewServer(welcome protocol.WelcomeMsg, logger *log.Logger) *Server {
	return &Server{
		log: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
		welcome: welcome,
		subs:    map[uint64]chan []byte{},
	}
}

// Broadcast fans one frame out to every connected observer. Full observer
// queues are skipped; the next frame supersedes the lost one anyway.
func (s *Server) Broadcast(msg protocol.FrameMsg) {
	b, err := json.Marshal(msg)
	if err != nil {
		return
	}

	s.mu.Lock()
	s.welcome.Round = msg.Round
	s.latest = b
	for _, ch := range s.subs {
		select {
		case ch <- b:
		default:
		}
	}
	s.mu.Unlock()
}

// ObserverCount reports connected observers, for the server's status log.
func (s *Server) ObserverCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		// Handshake: must send HELLO first.
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var hello protocol.HelloMsg
		if err := json.Unmarshal(msg, &hello); err != nil || hello.Type != protocol.TypeHello {
			s.reject(conn, protocol.ErrProtoBadRequest, "expected HELLO")
			return
		}
		if hello.ProtocolVersion != protocol.Version {
			s.reject(conn, protocol.ErrProtoVersion, "unsupported protocol version")
			return
		}

		s.mu.Lock()
		welcome := s.welcome
		latest := s.latest
		sid := s.nextID.Add(1)
		out := make(chan []byte, 16)
		s.subs[sid] = out
		s.mu.Unlock()

		defer func() {
			s.mu.Lock()
			delete(s.subs, sid)
			s.mu.Unlock()
		}()

		if s.log != nil {
			s.log.Printf("observer %d connected (%s)", sid, hello.ObserverName)
		}

		_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(welcome); err != nil {
			return
		}
		// Catch the new observer up with the most recent frame.
		if latest != nil {
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, latest); err != nil {
				return
			}
		}

		// Writer goroutine.
		writeErr := make(chan error, 1)
		done := make(chan struct{})
		go func() {
			for {
				select {
				case <-done:
					writeErr <- nil
					return
				case b := <-out:
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						writeErr <- err
						return
					}
				}
			}
		}()

		// Reader loop: observers send nothing after HELLO, but reading keeps
		// pings flowing and notices disconnects.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(120 * time.Second))
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		close(done)
		select {
		case <-writeErr:
		case <-time.After(500 * time.Millisecond):
		}
	}
}

func (s *Server) reject(conn *websocket.Conn, code, message string) {
	_ = conn.SetWriteDeadline(time.Now().Add(time.Second))
	_ = conn.WriteJSON(protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         message,
	})
	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.ClosePolicyViolation, code),
		time.Now().Add(time.Second))
}
