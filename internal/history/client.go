// Package history talks to the learning history API.
package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fujioka8700/Eitan/internal/domain"
	"github.com/fujioka8700/Eitan/internal/service"
)

const requestTimeout = 10 * time.Second

// Client is the HTTP client for the word supply and learning history
// endpoints. It satisfies the repository interfaces the bot wires
// in-process, so local and remote modes are interchangeable.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new API client. An empty token is allowed: the
// word supply is public and history calls come back as unauthorized,
// which callers treat as guest mode.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// ListByLevel fetches up to count words for the level filter
func (c *Client) ListByLevel(level string, count int) ([]domain.Word, error) {
	query := url.Values{}
	if level != "" {
		query.Set("level", level)
	}
	query.Set("count", strconv.Itoa(count))

	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/api/words?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("word supply returned status %d", resp.StatusCode)
	}

	var body []struct {
		ID       int    `json:"id"`
		English  string `json:"english"`
		Japanese string `json:"japanese"`
		Level    string `json:"level"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	words := make([]domain.Word, 0, len(body))
	for _, w := range body {
		words = append(words, domain.Word{
			ID:       w.ID,
			English:  w.English,
			Japanese: w.Japanese,
			Level:    w.Level,
		})
	}
	return words, nil
}

// Record posts one study event. The bearer token identifies the user;
// userID is accepted for interface compatibility with the in-process
// repository.
func (c *Client) Record(userID int64, wordID int, event domain.StudyEvent) error {
	payload, err := json.Marshal(map[string]any{
		"word_id": wordID,
		"event":   string(event),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/api/learning-histories", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer closeBody(resp)

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusOK:
		return nil
	case http.StatusUnauthorized:
		return service.ErrUnauthorized
	default:
		return fmt.Errorf("history write returned status %d", resp.StatusCode)
	}
}

// Histories fetches all touched words for the authenticated user
func (c *Client) Histories() ([]domain.LearningRecord, error) {
	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/api/learning-histories", nil)
	if err != nil {
		return nil, err
	}
	c.setAuth(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer closeBody(resp)

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, service.ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("history read returned status %d", resp.StatusCode)
	}

	var body []struct {
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
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	records := make([]domain.LearningRecord, 0, len(body))
	for _, r := range body {
		studiedAt, err := time.Parse(time.RFC3339, r.LastStudiedAt)
		if err != nil {
			return nil, fmt.Errorf("invalid last_studied_at %q: %w", r.LastStudiedAt, err)
		}
		records = append(records, domain.LearningRecord{
			WordID:                r.WordID,
			English:               r.English,
			Japanese:              r.Japanese,
			CorrectCount:          r.CorrectCount,
			MistakeCount:          r.MistakeCount,
			QuizCorrectCount:      r.QuizCorrectCount,
			QuizMistakeCount:      r.QuizMistakeCount,
			FlashcardLearnedCount: r.FlashcardLearnedCount,
			LastStudiedAt:         studiedAt,
		})
	}
	return records, nil
}

func (c *Client) setAuth(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func closeBody(resp *http.Response) {
	if cerr := resp.Body.Close(); cerr != nil {
		// Best-effort body close.
		_ = cerr
	}
}
