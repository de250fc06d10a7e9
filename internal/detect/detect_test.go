package detect

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"callwatch/internal/call"
)

type stubSource struct {
	name  string
	units []Unit
	err   error
	calls int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Detect(ctx context.Context) ([]Unit, error) {
	s.calls++
	return s.units, s.err
}

func TestChainStopsAtFirstNonEmptySource(t *testing.T) {
	first := &stubSource{name: "first", units: []Unit{{Payload: "a", Origin: call.OriginNotification}}}
	second := &stubSource{name: "second", units: []Unit{{Payload: "b", Origin: call.OriginManual}}}
	chain := NewChain(first, second)

	units := chain.Detect(context.Background())
	if len(units) != 1 || units[0].Payload != "a" {
		t.Fatalf("expected first source result, got %+v", units)
	}
	if second.calls != 0 {
		t.Fatal("second source should not have been queried")
	}
}

func TestChainFallsBackOnErrorAndEmpty(t *testing.T) {
	failing := &stubSource{name: "failing", err: errors.New("store unavailable")}
	empty := &stubSource{name: "empty"}
	fallback := &stubSource{name: "fallback", units: []Unit{{Payload: "x", Origin: call.OriginManual}}}
	chain := NewChain(failing, empty, fallback)

	units := chain.Detect(context.Background())
	if len(units) != 1 || units[0].Payload != "x" {
		t.Fatalf("expected fallback result, got %+v", units)
	}
}

func TestChainExhaustedReturnsNil(t *testing.T) {
	chain := NewChain(&stubSource{name: "a", err: errors.New("down")}, &stubSource{name: "b"})
	if units := chain.Detect(context.Background()); units != nil {
		t.Fatalf("expected nil, got %+v", units)
	}
}

func TestManualSourceParsesCandidateLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manual.txt")
	content := "# comment line\n\n2025-09-11 14:30 | A. Test\n   \n2025-09-11 15:00 | B. Test\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	src := NewManualSource(path, 1<<20)
	units, err := src.Detect(context.Background())
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}
	if units[0].Line != 3 || units[1].Line != 5 {
		t.Fatalf("line numbers = %d, %d", units[0].Line, units[1].Line)
	}
	if units[0].Origin != call.OriginManual {
		t.Fatalf("origin = %q", units[0].Origin)
	}
}

func TestManualSourceSeedsMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manual.txt")
	src := NewManualSource(path, 1<<20)

	units, err := src.Detect(context.Background())
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if len(units) != 0 {
		t.Fatalf("expected no units, got %d", len(units))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("template not written: %v", err)
	}
	if !strings.Contains(string(data), "YYYY-MM-DD HH:MM | Caller Name") {
		t.Fatalf("unexpected template: %q", data)
	}
}

func TestManualSourceRejectsOversizedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manual.txt")
	if err := os.WriteFile(path, []byte(strings.Repeat("x", 100)), 0o644); err != nil {
		t.Fatal(err)
	}
	src := NewManualSource(path, 50)
	if _, err := src.Detect(context.Background()); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}
