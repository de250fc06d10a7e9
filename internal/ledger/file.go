package ledger

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// fileState is the on-disk JSON shape. Field names are frozen; existing
// ledgers must keep loading across upgrades.
type fileState struct {
	ProcessedCalls   []string       `json:"processed_calls"`
	MissedCallCounts map[string]int `json:"missed_call_counts"`
	LastUpdated      string         `json:"last_updated"`
}

// Load reads a persisted ledger. A missing file is an empty ledger, not an
// error; a corrupt file is surfaced so duplicate follow-ups are not risked
// silently.
func Load(path string) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse ledger %s: %w", path, err)
	}
	l := New()
	for _, id := range state.ProcessedCalls {
		l.processed[id] = struct{}{}
	}
	for caller, count := range state.MissedCallCounts {
		l.counts[caller] = count
	}
	if state.LastUpdated != "" {
		if ts, err := time.Parse(time.RFC3339, state.LastUpdated); err == nil {
			l.lastCommitted = ts
		}
	}
	return l, nil
}

// Save writes the ledger atomically: temp file in the destination
// directory, then rename, so a crash mid-write leaves the previous file
// intact. Permissions restrict the file to the owning user.
func (l *Ledger) Save(path string) error {
	ids := make([]string, 0, len(l.processed))
	for id := range l.processed {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	now := time.Now().UTC().Truncate(time.Second)
	state := fileState{
		ProcessedCalls:   ids,
		MissedCallCounts: l.counts,
		LastUpdated:      now.Format(time.RFC3339),
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".ledger-*.tmp")
	if err != nil {
		return fmt.Errorf("create ledger temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write ledger temp file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod ledger temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close ledger temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace ledger file: %w", err)
	}
	l.lastCommitted = now
	return nil
}
