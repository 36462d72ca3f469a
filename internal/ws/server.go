// Package ws exposes the diff session to an embedding browser UI over a
// loopback-only websocket. Requests and responses are small JSON messages
// dispatched on a "type" field; collaborator failures are relayed verbatim
// in an "error" message.
package ws

import (
	"context"
	"log"
	"net"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"

	"diffpack/internal/session"
)

// Server upgrades connections and serves diff requests from one Session.
// The session is single-threaded; requests on a connection are handled
// sequentially in arrival order.
type Server struct {
	Session  *session.Session
	Upgrader websocket.Upgrader
}

// NewServer wires a session behind a loopback-only upgrader. Cross-site
// websocket connections are rejected.
func NewServer(s *session.Session) *Server {
	return &Server{
		Session: s,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					host, _, err := net.SplitHostPort(r.RemoteAddr)
					if err != nil {
						return false
					}
					ip := net.ParseIP(host)
					return ip != nil && ip.IsLoopback()
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				h := u.Hostname()
				if h == "localhost" {
					return true
				}
				ip := net.ParseIP(h)
				return ip != nil && ip.IsLoopback()
			},
		},
	}
}

// HandleWS upgrades the request and serves messages until the peer closes.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}
	defer conn.Close()

	ctx := r.Context()
	for {
		var req request
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("ws read error: %v", err)
			}
			return
		}
		resp := s.dispatch(ctx, req)
		if err := conn.WriteJSON(resp); err != nil {
			log.Printf("ws write error: %v", err)
			return
		}
	}
}

// ListenAndServe mounts the websocket on /ws and blocks.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.HandleWS)
	log.Printf("listening on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) dispatch(ctx context.Context, req request) any {
	switch req.Type {
	case "prefetch":
		if err := s.Session.Prefetch(ctx, req.Registry, req.Package, req.Version); err != nil {
			return errorMessage(req.ID, err)
		}
		return ack{ID: req.ID, Type: "prefetched"}
	case "diffTree":
		tree, err := s.Session.BuildTreeForPackage(ctx, req.Registry, req.Package, req.From, req.To)
		if err != nil {
			return errorMessage(req.ID, err)
		}
		return treeMessage{ID: req.ID, Type: "diffTree", Tree: tree}
	case "fileDiff":
		result, err := s.Session.DiffForPath(req.Path, req.OldPath)
		if err != nil {
			return errorMessage(req.ID, err)
		}
		return fileDiffMessage{ID: req.ID, Type: "fileDiff", Result: result}
	default:
		return errorString(req.ID, "unknown message type: "+req.Type)
	}
}
