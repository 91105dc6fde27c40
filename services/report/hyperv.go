package report

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

// normalOperationPhrase is the exact status text a healthy virtual
// machine shows in the host report.
const normalOperationPhrase = "Operating normally"

// hyperVExtractor parses virtualization host reports. A single client is
// named in the heading; the first table lists one VM per row, and the
// system name doubles as the job.
type hyperVExtractor struct{}

func NewHyperVExtractor() Extractor {
	return &hyperVExtractor{}
}

func (e *hyperVExtractor) Service() string {
	return "Hyper-V"
}

func (e *hyperVExtractor) Matches(subject string) bool {
	return strings.Contains(subject, "Hyper-V Server Report")
}

func (e *hyperVExtractor) Extract(subject, html string) ([]Entry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse hyper-v report")
	}

	// Heading reads: Hyper-V report for 'Client Name'
	heading := doc.Find("h2").First().Text()
	parts := strings.Split(heading, "'")
	if len(parts) < 2 {
		return nil, errors.New("hyper-v report has no client heading")
	}
	client := parts[1]

	var entries []Entry
	doc.Find("table").First().Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			// header row
			return
		}
		cells := row.Find("td")

		system := placeholderSystem
		if cells.Length() > 0 {
			system = strings.TrimSpace(cells.Eq(0).Text())
		}

		percent := 0
		if cells.Length() > 2 && strings.TrimSpace(cells.Eq(2).Text()) == normalOperationPhrase {
			percent = 100
		}

		entries = append(entries, Entry{
			Client:  client,
			System:  system,
			Job:     system,
			Percent: percent,
		})
	})

	return entries, nil
}
