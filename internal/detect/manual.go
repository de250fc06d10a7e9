package detect

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"callwatch/internal/call"
)

// ErrTooLarge rejects manual files over the byte cap to bound parse cost.
var ErrTooLarge = errors.New("manual calls file exceeds size limit")

const manualTemplate = `# Add missed calls manually:
# Format: YYYY-MM-DD HH:MM | Caller Name
# Example: 2025-09-11 14:30 | János Kovács

`

// ManualSource reads the human-editable fallback ledger of missed calls.
type ManualSource struct {
	path     string
	maxBytes int64
}

func NewManualSource(path string, maxBytes int64) *ManualSource {
	return &ManualSource{path: path, maxBytes: maxBytes}
}

func (s *ManualSource) Name() string { return "manual-file" }

// Detect yields one unit per candidate line. A missing file is seeded with
// a commented template, as an editing aid, and yields nothing.
func (s *ManualSource) Detect(ctx context.Context) ([]Unit, error) {
	info, err := os.Stat(s.path)
	if os.IsNotExist(err) {
		if werr := os.WriteFile(s.path, []byte(manualTemplate), 0o644); werr != nil {
			return nil, fmt.Errorf("seed manual calls file: %w", werr)
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("stat manual calls file: %w", err)
	}
	if info.Size() > s.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", ErrTooLarge, info.Size(), s.maxBytes)
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open manual calls file: %w", err)
	}
	defer f.Close()

	var units []Unit
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		units = append(units, Unit{
			Payload: line,
			Origin:  call.OriginManual,
			Line:    lineNo,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manual calls file: %w", err)
	}
	return units, nil
}
