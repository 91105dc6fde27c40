package report

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

// crashPlanExtractor parses CrashPlan PRO (Code42) continuous-backup
// reports. One table row per computer, carrying its own job identity:
// the system name doubles as client and job.
type crashPlanExtractor struct{}

func NewCrashPlanExtractor() Extractor {
	return &crashPlanExtractor{}
}

func (e *crashPlanExtractor) Service() string {
	return "CrashPlan PRO"
}

func (e *crashPlanExtractor) Matches(subject string) bool {
	return strings.Contains(subject, "Code42") && strings.Contains(subject, "Backup Report")
}

func (e *crashPlanExtractor) Extract(subject, html string) ([]Entry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse crashplan report")
	}

	var entries []Entry
	doc.Find("tr.lastForComputer").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")

		system := placeholderSystem
		if cells.Length() > 0 {
			system = strings.TrimSpace(strings.SplitN(cells.Eq(0).Text(), "→", 2)[0])
		}

		percent := 0
		if cells.Length() > 3 {
			raw := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(cells.Eq(3).Text()), "%"))
			if f, err := strconv.ParseFloat(raw, 64); err == nil {
				percent = int(f)
			}
		}

		// A run with no elapsed time never actually backed anything up,
		// whatever the percent column claims.
		duration := ""
		if cells.Length() > 4 {
			duration = cells.Eq(4).Text()
		}
		if !strings.Contains(duration, "hrs") && !strings.Contains(duration, "mins") {
			percent = 0
		}

		entries = append(entries, Entry{
			Client:  system,
			System:  system,
			Job:     system,
			Percent: percent,
		})
	})

	return entries, nil
}
