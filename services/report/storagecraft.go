package report

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

const storageCraftPrefix = "Online Image Report:"

// storageCraftExtractor parses StorageCraft image-backup scheduler
// reports. Each per-system block is a table with cellspacing 15; the
// system name lives in the first span of a cell and a green border marks
// a successful image.
type storageCraftExtractor struct {
	splitter *SubjectSplitter
}

func NewStorageCraftExtractor(splitter *SubjectSplitter) Extractor {
	return &storageCraftExtractor{splitter: splitter}
}

func (e *storageCraftExtractor) Service() string {
	return "Storage Craft"
}

func (e *storageCraftExtractor) Matches(subject string) bool {
	return strings.Contains(subject, "Online Image Report")
}

func (e *storageCraftExtractor) Extract(subject, html string) ([]Entry, error) {
	job, client, err := e.splitter.Split(textAfter(subject, storageCraftPrefix))
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse storagecraft report")
	}

	var entries []Entry
	doc.Find(`table[cellspacing="15"]`).Each(func(_ int, table *goquery.Selection) {
		system := placeholderSystem
		percent := 0
		// The report interleaves name and status cells, so the system
		// and percent accumulate across the cells of one table. Repeat
		// emissions for the same key collapse in the store.
		table.Find("td").Each(func(_ int, cell *goquery.Selection) {
			if span := cell.Find("span").First(); span.Length() > 0 {
				system = strings.TrimSpace(span.Text())
			}
			if style, ok := cell.Attr("style"); ok {
				if border, ok := parseStyle(style)["border"]; ok && strings.Contains(border, successColor) {
					percent = 100
				}
			}
			entries = append(entries, Entry{
				Client:  client,
				System:  system,
				Job:     job,
				Percent: percent,
			})
		})
	})

	return entries, nil
}
