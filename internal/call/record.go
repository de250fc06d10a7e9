package call

import (
	"strings"
	"time"
	"unicode"
)

// Origin identifies which detection source produced a record.
type Origin string

const (
	OriginNotification Origin = "notification"
	OriginManual       Origin = "manual"
)

// idTimeLayout is minute precision so repeated reads of the same manual
// line always compute the same id.
const idTimeLayout = "2006-01-02 15:04"

const maxCallerLen = 100

// Record is a normalized missed call. Immutable once constructed.
type Record struct {
	Caller     string
	OccurredAt time.Time
	Source     Origin
	ID         string
}

// TimeSlot is a candidate follow-up window. Value type, no identity.
type TimeSlot struct {
	Start time.Time
	End   time.Time
}

// NewRecord builds a Record with its stable composite id.
func NewRecord(caller string, at time.Time, source Origin) Record {
	return Record{
		Caller:     caller,
		OccurredAt: at,
		Source:     source,
		ID:         at.Format(idTimeLayout) + "_" + caller,
	}
}

// SanitizeCaller strips control and markup characters from a caller name,
// collapses whitespace, and truncates to 100 runes. Returns "" when nothing
// usable remains.
func SanitizeCaller(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if unicode.IsControl(r) {
			continue
		}
		switch r {
		case '<', '>', '"', '\'', '`':
			continue
		}
		b.WriteRune(r)
	}
	name := strings.Join(strings.Fields(b.String()), " ")
	runes := []rune(name)
	if len(runes) > maxCallerLen {
		name = string(runes[:maxCallerLen])
	}
	return name
}
