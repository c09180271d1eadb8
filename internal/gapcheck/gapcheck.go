package gapcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Warnings collects human-readable warning strings across checks.
type Warnings struct {
	mu    sync.Mutex
	items []string
}

// Add appends one warning.
func (w *Warnings) Add(format string, args ...any) {
	w.mu.Lock()
	w.items = append(w.items, fmt.Sprintf(format, args...))
	w.mu.Unlock()
}

// Items returns the collected warnings.
func (w *Warnings) Items() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.items...)
}

// Config holds the metadata-gap API settings. An unset token or base URL
// disables the check entirely.
type Config struct {
	BaseURL string
	Token   string
}

// Checker queries the authenticated missing-metadata endpoints and turns
// the results into warnings. It never raises a hard error.
type Checker struct {
	cfg    Config
	httpc  *http.Client
	logger *zap.Logger
}

// NewChecker builds a gap checker.
func NewChecker(cfg Config, logger *zap.Logger) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Checker{
		cfg:    cfg,
		httpc:  &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

type entity struct {
	Address string `json:"address"`
	ID      string `json:"id"`
	Name    string `json:"name"`
}

func (e entity) label() string {
	switch {
	case e.Name != "" && e.Address != "":
		return fmt.Sprintf("%s (%s)", e.Name, e.Address)
	case e.Address != "":
		return e.Address
	case e.ID != "":
		return e.ID
	default:
		return "unknown entity"
	}
}

// Run checks both endpoints and emits one warning per entity lacking
// metadata. When credentials are unset the whole check is skipped.
func (c *Checker) Run(ctx context.Context, warns *Warnings) {
	if c.cfg.BaseURL == "" || c.cfg.Token == "" {
		c.logger.Info("metadata-gap API not configured, skipping check")
		return
	}

	endpoints := []struct {
		path string
		kind string
	}{
		{"/v1/incentive-tokens/missing-metadata", "incentive token"},
		{"/v1/vaults/missing-metadata", "vault"},
	}

	var wg sync.WaitGroup
	for _, ep := range endpoints {
		wg.Add(1)
		go func(path, kind string) {
			defer wg.Done()
			for _, e := range c.fetch(ctx, path) {
				warns.Add("%s %s is missing metadata", kind, e.label())
			}
		}(ep.path, ep.kind)
	}
	wg.Wait()
}

// fetch degrades to an empty list on any HTTP failure, malformed response,
// or network exception.
func (c *Checker) fetch(ctx context.Context, path string) []entity {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+path, nil)
	if err != nil {
		c.logger.Warn("build gap-check request", zap.String("path", path), zap.Error(err))
		return nil
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Warn("gap-check request failed", zap.String("path", path), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("gap-check http error", zap.String("path", path), zap.Int("status", resp.StatusCode))
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Warn("read gap-check response", zap.String("path", path), zap.Error(err))
		return nil
	}

	entities, err := decodeEntities(body)
	if err != nil {
		c.logger.Warn("malformed gap-check response", zap.String("path", path), zap.Error(err))
		return nil
	}
	return entities
}

// decodeEntities resolves the response envelope once at the boundary: the
// API has returned a bare array, {"data": [...]}, and {"items": [...]}
// across revisions.
func decodeEntities(body []byte) ([]entity, error) {
	var bare []entity
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare, nil
	}

	var wrapped struct {
		Data  []entity `json:"data"`
		Items []entity `json:"items"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("unrecognized response envelope: %w", err)
	}
	if wrapped.Data != nil {
		return wrapped.Data, nil
	}
	if wrapped.Items != nil {
		return wrapped.Items, nil
	}
	return nil, fmt.Errorf("response envelope has neither data nor items")
}
