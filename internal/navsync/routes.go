package navsync

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ziadkadry99/doxnav/internal/location"
	"github.com/ziadkadry99/doxnav/internal/navtree"
	"github.com/ziadkadry99/doxnav/internal/site"
)

// RegisterRoutes mounts session endpoints on the given router.
func RegisterRoutes(r chi.Router, m *Manager) {
	r.Get("/api/sessions", listSessionsHandler(m))
	r.Post("/api/sessions", createSessionHandler(m))
	r.Get("/api/sessions/{id}", getSessionHandler(m))
	r.Delete("/api/sessions/{id}", deleteSessionHandler(m))
	r.Post("/api/sessions/{id}/hashchange", hashChangeHandler(m))
	r.Post("/api/sessions/{id}/follow", followHandler(m))
	r.Post("/api/sessions/{id}/toggle", toggleNodeHandler(m))
	r.Post("/api/sessions/{id}/sync", toggleSyncHandler(m))
	r.Get("/api/sessions/{id}/tree.html", treeHTMLHandler(m))
	r.Get("/api/sessions/{id}/ws", wsHandler(m))
}

type followRequest struct {
	Link string `json:"link"`
}

type toggleRequest struct {
	Path []int `json:"path"`
}

func listSessionsHandler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"sessions": m.IDs()})
	}
}

func createSessionHandler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var loc location.Location
		if err := json.NewDecoder(r.Body).Decode(&loc); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if loc.Path == "" {
			loc.Path = m.Site().Index.RootDocument()
		}
		sess, err := m.Create(r.Context(), loc)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, sess.Snapshot())
	}
}

func getSessionHandler(m *Manager) http.HandlerFunc {
	return withSession(m, func(w http.ResponseWriter, r *http.Request, sess *Session) {
		writeJSON(w, http.StatusOK, sess.Snapshot())
	})
}

func deleteSessionHandler(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := m.Delete(chi.URLParam(r, "id")); err != nil {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func hashChangeHandler(m *Manager) http.HandlerFunc {
	return withSession(m, func(w http.ResponseWriter, r *http.Request, sess *Session) {
		var loc location.Location
		if err := json.NewDecoder(r.Body).Decode(&loc); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := sess.HashChange(r.Context(), loc); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, sess.Snapshot())
	})
}

func followHandler(m *Manager) http.HandlerFunc {
	return withSession(m, func(w http.ResponseWriter, r *http.Request, sess *Session) {
		var req followRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Link == "" {
			writeError(w, http.StatusBadRequest, "link is required")
			return
		}
		if err := sess.FollowLink(r.Context(), req.Link); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, sess.Snapshot())
	})
}

func toggleNodeHandler(m *Manager) http.HandlerFunc {
	return withSession(m, func(w http.ResponseWriter, r *http.Request, sess *Session) {
		var req toggleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := sess.ToggleNode(r.Context(), req.Path); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, navtree.ErrBadPath) {
				status = http.StatusNotFound
			}
			writeError(w, status, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, sess.Snapshot())
	})
}

func toggleSyncHandler(m *Manager) http.HandlerFunc {
	return withSession(m, func(w http.ResponseWriter, r *http.Request, sess *Session) {
		if _, err := sess.ToggleSync(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, sess.Snapshot())
	})
}

func treeHTMLHandler(m *Manager) http.HandlerFunc {
	return withSession(m, func(w http.ResponseWriter, r *http.Request, sess *Session) {
		relpath := r.URL.Query().Get("relpath")
		if relpath == "" {
			relpath = m.Site().Relpath
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := site.RenderHTML(w, sess.Tree().Rows(), relpath); err != nil {
			m.log.Warn("rendering tree", zap.String("session", sess.ID), zap.Error(err))
		}
	})
}

func withSession(m *Manager, h func(http.ResponseWriter, *http.Request, *Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		h(w, r, sess)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
