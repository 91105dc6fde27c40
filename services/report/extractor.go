package report

import (
	"strings"

	"github.com/bjorkit/backupwatch/config"
)

// successColor is the border color the report generators use to mark a
// successful run.
const successColor = "#5DE01B"

// placeholderSystem stands in when a report row carries no system name.
const placeholderSystem = "?"

// Entry is one extracted (client, system, job, percent) tuple.
type Entry struct {
	Client  string
	System  string
	Job     string
	Percent int
}

// Extractor turns one vendor's report markup into normalized entries.
type Extractor interface {
	// Service is the vendor tag recorded on observations.
	Service() string
	// Matches reports whether a subject carries this vendor's signature.
	Matches(subject string) bool
	// Extract parses the decoded markup. Missing optional markup yields
	// defaults, never an error; a structurally unusable report errors.
	Extract(subject, html string) ([]Entry, error)
}

// Registry dispatches a report to the first extractor whose signature
// matches, in fixed priority order. New vendors are added by registering
// a new extractor, not by editing dispatch logic.
type Registry struct {
	extractors []Extractor
}

func NewRegistry(cfg *config.ReportConfig) *Registry {
	splitter := NewSubjectSplitter(cfg)
	return &Registry{
		extractors: []Extractor{
			NewCrashPlanExtractor(),
			NewStorageCraftExtractor(splitter),
			NewAhsayExtractor(splitter, cfg.AhsayMarkerMode),
			NewHyperVExtractor(),
		},
	}
}

// Dispatch returns the first matching extractor, or nil when the subject
// carries no known vendor signature.
func (r *Registry) Dispatch(subject string) Extractor {
	for _, e := range r.extractors {
		if e.Matches(subject) {
			return e
		}
	}
	return nil
}

// textAfter returns the text following the last occurrence of marker,
// trimmed; the whole string when the marker is absent.
func textAfter(s, marker string) string {
	parts := strings.Split(s, marker)
	return strings.TrimSpace(parts[len(parts)-1])
}

// parseStyle splits an inline style attribute into a property map.
func parseStyle(style string) map[string]string {
	props := make(map[string]string)
	for _, decl := range strings.Split(style, ";") {
		parts := strings.SplitN(strings.TrimSpace(decl), ":", 2)
		if len(parts) != 2 {
			continue
		}
		props[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}
	return props
}
