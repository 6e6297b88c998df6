package qdrant

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"time"

	"ragdesk/internal/domain"
	"ragdesk/internal/vectorstore"
)

// Store is a minimal REST client to Qdrant using cosine distance. The
// collection is created on Init if missing.
type Store struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

func New(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	collection := cfg.Collection
	if collection == "" {
		collection = "ragdesk"
	}
	return &Store{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: collection,
		client:     &http.Client{Timeout: timeout},
	}
}

func (s *Store) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.dimension = dimension
	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	// Qdrant answers 200 when the collection already exists with the
	// same schema; a schema conflict propagates as an error.
	return s.putJSON(fmt.Sprintf("%s/collections/%s", s.url, s.collection), body)
}

func (s *Store) Upsert(entries []domain.IndexEntry) error {
	points := make([]map[string]any, len(entries))
	for i, e := range entries {
		points[i] = map[string]any{
			"id":     e.ID,
			"vector": e.Vector,
			"payload": map[string]any{
				"text":         e.Chunk.Text,
				"source_id":    e.Chunk.SourceID,
				"start_offset": e.Chunk.StartOffset,
				"upload_id":    e.Chunk.UploadID,
				"file_type":    e.Chunk.FileType,
			},
		}
	}
	body := map[string]any{"points": points}
	return s.putJSON(fmt.Sprintf("%s/collections/%s/points?wait=true", s.url, s.collection), body)
}

func (s *Store) Search(vector []float32, k int) ([]vectorstore.Scored, error) {
	if k <= 0 {
		return nil, nil
	}
	req := map[string]any{
		"vector":       vector,
		"limit":        k,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			ID      string         `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.postJSON(fmt.Sprintf("%s/collections/%s/points/search", s.url, s.collection), req, &resp); err != nil {
		return nil, err
	}
	scored := make([]vectorstore.Scored, 0, len(resp.Result))
	for _, r := range resp.Result {
		scored = append(scored, vectorstore.Scored{
			Entry: domain.IndexEntry{ID: r.ID, Chunk: chunkFromPayload(r.Payload)},
			Score: r.Score,
		})
	}
	return scored, nil
}

func (s *Store) Stats() (domain.IndexStats, error) {
	stats := domain.IndexStats{CountsByFileType: make(map[string]int)}
	seen := make(map[string]struct{})
	var offset any
	for {
		req := map[string]any{
			"limit":        256,
			"with_payload": []string{"source_id", "file_type"},
			"with_vector":  false,
		}
		if offset != nil {
			req["offset"] = offset
		}
		var resp struct {
			Result struct {
				Points []struct {
					Payload map[string]any `json:"payload"`
				} `json:"points"`
				NextPageOffset any `json:"next_page_offset"`
			} `json:"result"`
		}
		err := s.postJSON(fmt.Sprintf("%s/collections/%s/points/scroll", s.url, s.collection), req, &resp)
		if err != nil {
			// A missing collection means an empty index, not a failure.
			if isNotFound(err) {
				return stats, nil
			}
			return stats, err
		}
		for _, p := range resp.Result.Points {
			stats.Count++
			ch := chunkFromPayload(p.Payload)
			if _, ok := seen[ch.SourceID]; !ok {
				seen[ch.SourceID] = struct{}{}
				stats.DistinctSources = append(stats.DistinctSources, ch.SourceID)
			}
			stats.CountsByFileType[ch.FileType]++
		}
		if resp.Result.NextPageOffset == nil {
			break
		}
		offset = resp.Result.NextPageOffset
	}
	sort.Strings(stats.DistinctSources)
	return stats, nil
}

// Clear deletes every point but keeps the collection, so subsequent
// upserts behave like first-time creation.
func (s *Store) Clear() error {
	body := map[string]any{"filter": map[string]any{}}
	err := s.postJSON(fmt.Sprintf("%s/collections/%s/points/delete?wait=true", s.url, s.collection), body, nil)
	if err != nil && isNotFound(err) {
		return nil
	}
	return err
}

func (s *Store) Close() error { return nil }

func chunkFromPayload(payload map[string]any) domain.Chunk {
	ch := domain.Chunk{}
	if v, ok := payload["text"].(string); ok {
		ch.Text = v
	}
	if v, ok := payload["source_id"].(string); ok {
		ch.SourceID = v
	}
	if v, ok := payload["start_offset"].(float64); ok {
		ch.StartOffset = int(v)
	}
	if v, ok := payload["upload_id"].(string); ok {
		ch.UploadID = v
	}
	if v, ok := payload["file_type"].(string); ok {
		ch.FileType = v
	}
	return ch
}

type statusError struct {
	code   int
	method string
	url    string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("qdrant %s %s failed: status %d", e.method, e.url, e.code)
}

func isNotFound(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.code == http.StatusNotFound
}

func (s *Store) putJSON(url string, body any) error {
	return s.do(http.MethodPut, url, body, nil)
}

func (s *Store) postJSON(url string, body any, out any) error {
	return s.do(http.MethodPost, url, body, out)
}

func (s *Store) do(method, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(method, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return &statusError{code: resp.StatusCode, method: method, url: url}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
