package report

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Entry records one reconciliation outcome for a single vault.
type Entry struct {
	Mode         string `json:"mode"`
	Chain        string `json:"chain"`
	VaultAddress string `json:"vault_address"`
	Detail       string `json:"detail"`
	At           string `json:"at"`
}

// NewEntry builds an entry stamped with the current UTC time.
func NewEntry(mode, chain, vaultAddress, detail string) Entry {
	return Entry{
		Mode:         mode,
		Chain:        chain,
		VaultAddress: vaultAddress,
		Detail:       detail,
		At:           time.Now().UTC().Format(time.RFC3339Nano),
	}
}

// Sink receives reconciliation entries.
type Sink interface {
	Write(ctx context.Context, entries []Entry) error
}

// JSONLSink appends entries to a JSONL report file.
type JSONLSink struct {
	path string
	mu   sync.Mutex
}

// NewJSONLSink builds a JSONL report sink.
func NewJSONLSink(path string) *JSONLSink {
	return &JSONLSink{path: path}
}

// Write appends a batch of entries as JSON lines.
func (s *JSONLSink) Write(_ context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open report file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, entry := range entries {
		line, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("marshal report entry: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write report entry: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush report: %w", err)
	}

	return nil
}
