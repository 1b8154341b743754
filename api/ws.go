package api

import (
	"log"
	"time"

	"github.com/gofiber/contrib/websocket"
)

const (
	// pingPeriod is how often a liveness probe is sent to each subscriber.
	pingPeriod = 10 * time.Second
	// pongWait is how long a subscriber may go without answering a probe
	// before it is dropped. Must exceed pingPeriod.
	pongWait  = 25 * time.Second
	writeWait = 10 * time.Second
)

// handleWebSocket serves one subscriber connection: an initial info message,
// then scan events as they are published, with periodic pings. Any write or
// liveness failure removes the subscriber.
func (s *Server) handleWebSocket(conn *websocket.Conn) {
	sub := s.bus.Subscribe()
	defer s.bus.Unsubscribe(sub)
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{
		"type":    "info",
		"message": "connected",
	}); err != nil {
		log.Printf("websocket %s: initial write failed: %v", sub.ID(), err)
		return
	}

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// Reader goroutine: inbound frames are discarded, but reading is what
	// surfaces close frames and pong responses.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-sub.Events():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("websocket %s: delivery failed, dropping subscriber: %v", sub.ID(), err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-readerDone:
			return
		case <-sub.Done():
			return
		}
	}
}
