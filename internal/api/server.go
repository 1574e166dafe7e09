// Package api exposes the word supply and learning history over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/fujioka8700/Eitan/internal/domain"
	"github.com/fujioka8700/Eitan/internal/service"
)

const defaultWordCount = 10

// Server routes API requests to the word and history services
type Server struct {
	words   *service.WordPoolService
	history *service.HistoryService
	auth    *service.AuthService
	logger  *zap.Logger
}

// NewServer creates a new API server
func NewServer(words *service.WordPoolService, history *service.HistoryService, auth *service.AuthService, logger *zap.Logger) *Server {
	return &Server{
		words:   words,
		history: history,
		auth:    auth,
		logger:  logger,
	}
}

// Handler returns the routed handler for the API
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/words", s.handleWords)
	mux.HandleFunc("/api/learning-histories", s.handleLearningHistories)
	return mux
}

type wordResponse struct {
	ID       int    `json:"id"`
	English  string `json:"english"`
	Japanese string `json:"japanese"`
	Level    string `json:"level"`
}

type recordRequest struct {
	WordID int    `json:"word_id"`
	Event  string `json:"event"`
}

type historyResponse struct {
	WordID                int    `json:"word_id"`
	English               string `json:"english"`
	Japanese              string `json:"japanese"`
	CorrectCount          int    `json:"correct_count"`
	MistakeCount          int    `json:"mistake_count"`
	QuizCorrectCount      int    `json:"quiz_correct_count"`
	QuizMistakeCount      int    `json:"quiz_mistake_count"`
	FlashcardLearnedCount int    `json:"flashcard_learned_count"`
	LastStudiedAt         string `json:"last_studied_at"`
}

// handleWords serves the word supply. The endpoint is public; an empty
// pool is a valid 200 response and the caller decides whether it can
// start a session.
func (s *Server) handleWords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	level := r.URL.Query().Get("level")
	count := defaultWordCount
	if raw := r.URL.Query().Get("count"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "count must be an integer")
			return
		}
		count = parsed
	}

	words, err := s.words.Load(level, count)
	if errors.Is(err, service.ErrNoWords) {
		writeJSON(w, http.StatusOK, []wordResponse{})
		return
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := make([]wordResponse, 0, len(words))
	for _, word := range words {
		resp = append(resp, wordResponse{
			ID:       word.ID,
			English:  word.English,
			Japanese: word.Japanese,
			Level:    word.Level,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLearningHistories(w http.ResponseWriter, r *http.Request) {
	userID, err := s.authorize(r)
	if errors.Is(err, service.ErrUnauthorized) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err != nil {
		s.logger.Error("Failed to resolve credential", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	switch r.Method {
	case http.MethodPost:
		s.recordHistory(w, r, userID)
	case http.MethodGet:
		s.listHistory(w, userID)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) recordHistory(w http.ResponseWriter, r *http.Request, userID int64) {
	var req recordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.WordID == 0 {
		writeError(w, http.StatusBadRequest, "word_id is required")
		return
	}

	if err := s.history.Record(userID, req.WordID, domain.StudyEvent(req.Event)); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"word_id": req.WordID,
		"event":   req.Event,
	})
}

func (s *Server) listHistory(w http.ResponseWriter, userID int64) {
	records, err := s.history.History(userID)
	if err != nil {
		s.logger.Error("Failed to list learning histories",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]historyResponse, 0, len(records))
	for _, record := range records {
		resp = append(resp, historyResponse{
			WordID:                record.WordID,
			English:               record.English,
			Japanese:              record.Japanese,
			CorrectCount:          record.CorrectCount,
			MistakeCount:          record.MistakeCount,
			QuizCorrectCount:      record.QuizCorrectCount,
			QuizMistakeCount:      record.QuizMistakeCount,
			FlashcardLearnedCount: record.FlashcardLearnedCount,
			LastStudiedAt:         record.LastStudiedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// authorize resolves the bearer token on the request to a user ID
func (s *Server) authorize(r *http.Request) (int64, error) {
	header := r.Header.Get("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		token = ""
	}
	return s.auth.ResolveToken(token)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Headers are already out; nothing left to do.
		_ = err
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
