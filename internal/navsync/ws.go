package navsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ziadkadry99/doxnav/internal/location"
	"github.com/ziadkadry99/doxnav/internal/navtree"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	Type string `json:"type"` // "hashchange", "follow", "toggle", "sync" or "snapshot"
	Path string `json:"path,omitempty"`
	Hash string `json:"hash,omitempty"`
	Link string `json:"link,omitempty"`
	Node []int  `json:"node,omitempty"`
}

// wsMessage is the outgoing WebSocket message format.
type wsMessage struct {
	Type     string         `json:"type"` // "event", "snapshot" or "error"
	Event    *navtree.Event `json:"event,omitempty"`
	Snapshot *Snapshot      `json:"snapshot,omitempty"`
	Content  string         `json:"content,omitempty"`
}

// wsHandler streams tree events of a session to the client and applies the
// navigation events it sends. Every request is answered with a snapshot.
func wsHandler(m *Manager) http.HandlerFunc {
	return withSession(m, func(w http.ResponseWriter, r *http.Request, sess *Session) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			m.log.Warn("websocket upgrade", zap.Error(err))
			return
		}
		defer conn.Close()

		log := m.log.With(zap.String("session", sess.ID))
		out := make(chan wsMessage, 64)
		done := make(chan struct{})

		unsubscribe := sess.Tree().Subscribe(func(ev navtree.Event) {
			select {
			case out <- wsMessage{Type: "event", Event: &ev}:
			case <-done:
			default:
				log.Debug("websocket client too slow, dropping event", zap.String("kind", string(ev.Kind)))
			}
		})
		defer unsubscribe()

		writerDone := make(chan struct{})
		go func() {
			defer close(writerDone)
			for {
				select {
				case msg := <-out:
					if err := conn.WriteJSON(msg); err != nil {
						log.Debug("websocket write", zap.Error(err))
						return
					}
				case <-done:
					return
				}
			}
		}()
		defer func() {
			close(done)
			<-writerDone
		}()

		send := func(msg wsMessage) {
			select {
			case out <- msg:
			case <-writerDone:
			}
		}
		sendSnapshot := func() {
			snap := sess.Snapshot()
			send(wsMessage{Type: "snapshot", Snapshot: &snap})
		}

		sendSnapshot()
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn("websocket read", zap.Error(err))
				}
				return
			}

			var req wsRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				send(wsMessage{Type: "error", Content: "invalid message format"})
				continue
			}
			if err := applyRequest(r.Context(), sess, req); err != nil {
				send(wsMessage{Type: "error", Content: err.Error()})
				continue
			}
			sendSnapshot()
		}
	})
}

func applyRequest(ctx context.Context, sess *Session, req wsRequest) error {
	switch req.Type {
	case "hashchange":
		return sess.HashChange(ctx, location.Location{Path: req.Path, Hash: req.Hash})
	case "follow":
		if req.Link == "" {
			return errors.New("link is required")
		}
		return sess.FollowLink(ctx, req.Link)
	case "toggle":
		return sess.ToggleNode(ctx, req.Node)
	case "sync":
		_, err := sess.ToggleSync(ctx)
		return err
	case "snapshot":
		return nil
	default:
		return fmt.Errorf("unknown message type: %s", req.Type)
	}
}
