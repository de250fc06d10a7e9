package call

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// missedCallKeywords mark a notification payload as a missed call. The
// Hungarian variants match what Viber actually delivers on a localized
// system.
var missedCallKeywords = []string{"missed call", "elmulasztott", "hívás"}

// callerPatterns are tried in order against the notification payload; the
// first match wins. Extraction is best effort, extracted names are not
// authoritative identity.
var callerPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)from\s+([^,\n]+)`),
	regexp.MustCompile(`(?i)([^:]+):\s*missed`),
	regexp.MustCompile(`(?i)hívás\s+([^,\n]+)`),
}

const unknownCaller = "Unknown Caller"

// Normalizer turns raw detection output into Records. Now and Loc are
// injected so validation is deterministic under test.
type Normalizer struct {
	Now func() time.Time
	Loc *time.Location

	// Bounds for manual entries. Stale covers weekend-long offline gaps.
	StaleAfter  time.Duration
	FutureLimit time.Duration
}

// FromNotification extracts a missed call from a notification payload.
// Payloads without a missed-call keyword are rejected (ok=false); payloads
// where no caller pattern matches still produce a record attributed to
// "Unknown Caller".
func (n Normalizer) FromNotification(at time.Time, payload string) (Record, bool) {
	lower := strings.ToLower(payload)
	matched := false
	for _, kw := range missedCallKeywords {
		if strings.Contains(lower, kw) {
			matched = true
			break
		}
	}
	if !matched {
		return Record{}, false
	}
	caller := unknownCaller
	for _, pat := range callerPatterns {
		if m := pat.FindStringSubmatch(payload); m != nil {
			if name := SanitizeCaller(m[1]); name != "" {
				caller = name
				break
			}
		}
	}
	return NewRecord(caller, at.In(n.Loc).Truncate(time.Minute), OriginNotification), true
}

// FromManualLine parses a "YYYY-MM-DD HH:MM | Caller Name" line. Malformed
// lines, empty callers, and out-of-bounds timestamps are hard validation
// failures.
func (n Normalizer) FromManualLine(line string) (Record, error) {
	timePart, callerPart, found := strings.Cut(line, "|")
	if !found {
		return Record{}, fmt.Errorf("missing %q delimiter", "|")
	}
	at, err := time.ParseInLocation(idTimeLayout, strings.TrimSpace(timePart), n.Loc)
	if err != nil {
		return Record{}, fmt.Errorf("bad timestamp: %w", err)
	}
	caller := SanitizeCaller(callerPart)
	if caller == "" {
		return Record{}, fmt.Errorf("caller name empty after sanitization")
	}
	now := n.Now()
	if at.After(now.Add(n.FutureLimit)) {
		return Record{}, fmt.Errorf("timestamp %s is in the future", at.Format(idTimeLayout))
	}
	if now.Sub(at) > n.StaleAfter {
		return Record{}, fmt.Errorf("timestamp %s is stale (older than %s)", at.Format(idTimeLayout), n.StaleAfter)
	}
	return NewRecord(caller, at, OriginManual), nil
}
