// Package httpapi exposes chat, finalization, archive, search, and migration over HTTP.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/rcliao/daybook/internal/journal"
	"github.com/rcliao/daybook/internal/migrate"
	"github.com/rcliao/daybook/internal/model"
	"github.com/rcliao/daybook/internal/store"
	"github.com/rcliao/daybook/internal/synthesis"
)

// MaxUploadBytes bounds an uploaded journal body.
const MaxUploadBytes = 4 << 20

// Deps are the services the handlers call.
type Deps struct {
	Chat     *journal.Chat
	Pipeline *journal.Pipeline
	Store    store.Store
	Bridge   *migrate.Bridge // nil disables /migrate
	Logger   *slog.Logger
}

// Server routes requests to the journal services.
type Server struct {
	deps   Deps
	logger *slog.Logger
	mux    *http.ServeMux
}

// New creates a server and registers its routes.
func New(d Deps) *Server {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{deps: d, logger: logger, mux: http.NewServeMux()}

	s.mux.HandleFunc("POST /chat", s.handleChat)
	s.mux.HandleFunc("GET /messages", s.handleMessages)
	s.mux.HandleFunc("POST /finalize", s.handleFinalize)
	s.mux.HandleFunc("GET /archive", s.handleArchiveList)
	s.mux.HandleFunc("GET /archive/entry", s.handleArchiveGet)
	s.mux.HandleFunc("GET /archive/download", s.handleArchiveDownload)
	s.mux.HandleFunc("PUT /archive/upload", s.handleArchiveUpload)
	s.mux.HandleFunc("POST /archive/upload", s.handleArchiveUpload)
	s.mux.HandleFunc("GET /search", s.handleSearch)
	s.mux.HandleFunc("POST /migrate", s.handleMigrate)
	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	return s
}

// Handler returns the routed handler wrapped in request-ID and access-log middleware.
func (s *Server) Handler() http.Handler {
	return withRequestID(withAccessLog(s.logger, s.mux))
}

type chatRequest struct {
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Content string `json:"content"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, &model.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}

	var (
		reply journal.Reply
		err   error
	)
	if len(req.Messages) > 0 {
		turns := make([]synthesis.Turn, 0, len(req.Messages))
		for _, m := range req.Messages {
			turns = append(turns, synthesis.Turn{Role: model.Role(m.Role), Content: m.Content})
		}
		reply, err = s.deps.Chat.SendTurns(r.Context(), turns)
	} else {
		reply, err = s.deps.Chat.Send(r.Context(), req.Content)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("date")
	if day != "" {
		if err := model.CheckDayKey("date", day); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	day, msgs, err := s.deps.Chat.Messages(r.Context(), day)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": day, "messages": msgs})
}

func (s *Server) handleFinalize(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Pipeline.Finalize(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"date":    res.Date,
		"size":    res.Size,
		"message": "Journal synthesized and saved",
	})
}

func (s *Server) handleArchiveList(w http.ResponseWriter, r *http.Request) {
	entries, err := s.deps.Store.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"archives": entries})
}

func (s *Server) handleArchiveGet(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.getEntry(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"date": entry.Date, "content": entry.Content})
}

func (s *Server) handleArchiveDownload(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.getEntry(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, store.ObjectKey(entry.Date)))
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, entry.Content)
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) (*model.JournalEntry, bool) {
	day := r.URL.Query().Get("date")
	if err := model.CheckDayKey("date", day); err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	entry, err := s.deps.Store.Get(r.Context(), day)
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return entry, true
}

func (s *Server) handleArchiveUpload(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("date")
	if err := model.CheckDayKey("date", day); err != nil {
		s.writeError(w, r, err)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxUploadBytes))
	if err != nil {
		s.writeError(w, r, &model.ValidationError{Field: "body", Reason: err.Error()})
		return
	}
	content := string(body)
	if strings.TrimSpace(content) == "" {
		s.writeError(w, r, &model.ValidationError{Field: "body", Reason: "empty file"})
		return
	}

	size, err := s.deps.Store.Upsert(r.Context(), day, content)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"date":    day,
		"size":    size,
		"message": "Journal uploaded successfully",
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	searcher, ok := store.AsSearcher(s.deps.Store)
	if !ok {
		s.writeError(w, r, store.ErrSearchUnsupported)
		return
	}

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeError(w, r, &model.ValidationError{Field: "limit", Reason: "must be a positive integer"})
			return
		}
		limit = n
	}

	hits, err := searcher.Search(r.Context(), store.SearchParams{Query: q, Limit: limit})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"query": q, "results": hits})
}

func (s *Server) handleMigrate(w http.ResponseWriter, r *http.Request) {
	if s.deps.Bridge == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no migration source configured"})
		return
	}
	opts := migrate.Options{Cursor: r.URL.Query().Get("cursor")}
	if v := r.URL.Query().Get("max_pages"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, &model.ValidationError{Field: "max_pages", Reason: "must be a non-negative integer"})
			return
		}
		opts.MaxPages = n
	}

	report, err := s.deps.Bridge.Run(r.Context(), opts)
	if err != nil {
		s.logger.Error("migration aborted", "error", err, "request_id", RequestID(r.Context()))
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": err.Error(), "report": report})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrSearchUnsupported):
		return http.StatusNotImplemented
	case errors.Is(err, model.ErrStorageUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, model.ErrSynthesisUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status >= 500 {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "status", status, "error", err, "request_id", RequestID(r.Context()))
		if status == http.StatusInternalServerError {
			msg = "internal error"
		}
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
