// Package detect finds missed-call candidates from a fixed priority chain
// of sources: the system notification store first, then the manual
// plain-text fallback file.
package detect

import (
	"context"
	"log"
	"time"

	"callwatch/internal/call"
)

// Unit is one raw detection result before normalization.
type Unit struct {
	At      time.Time
	Payload string
	Origin  call.Origin
	Line    int
}

// Source produces raw detection units. A source error means "try the next
// source", never "stop the loop".
type Source interface {
	Name() string
	Detect(ctx context.Context) ([]Unit, error)
}

// Chain tries sources in order and stops at the first non-empty result.
type Chain struct {
	sources []Source
}

func NewChain(sources ...Source) *Chain {
	return &Chain{sources: sources}
}

// Detect returns units from the first source that yields any. Source errors
// are logged and swallowed; an exhausted chain returns nil.
func (c *Chain) Detect(ctx context.Context) []Unit {
	for _, src := range c.sources {
		units, err := src.Detect(ctx)
		if err != nil {
			log.Printf("detect source=%s failed: %v (trying next)", src.Name(), err)
			continue
		}
		if len(units) > 0 {
			return units
		}
	}
	return nil
}
