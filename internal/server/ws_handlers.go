package server

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// upgrader upgrades HTTP requests to WebSockets.
//
// CheckOrigin returns true: the server is meant to run on localhost for a
// single user and should be restricted if it is ever exposed further.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleWSProgress streams job progress events ("epoch", "warning",
// "converged", "done", "error").
//
// Incoming messages are ignored; the read-loop only detects disconnects.
func (s *Server) handleWSProgress(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	client := s.wsProgress.Add(conn)
	s.log.Debug("websocket client connected", zap.String("remote", r.RemoteAddr))

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			s.wsProgress.Remove(client)
			return
		}
	}
}
