package report

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

const ahsayPrefix = "Backup Summary:"

// Marker modes for Ahsay summaries; the two generations of the report
// template mark success differently.
const (
	AhsayMarkerText  = "text"
	AhsayMarkerColor = "color"
)

// ahsayExtractor parses Ahsay hosted-backup summary reports. One
// full-width table per backup set; the success marker depends on the
// template generation, selected by markerMode.
type ahsayExtractor struct {
	splitter   *SubjectSplitter
	markerMode string
}

func NewAhsayExtractor(splitter *SubjectSplitter, markerMode string) Extractor {
	if markerMode != AhsayMarkerColor {
		markerMode = AhsayMarkerText
	}
	return &ahsayExtractor{splitter: splitter, markerMode: markerMode}
}

func (e *ahsayExtractor) Service() string {
	return "Ahsay"
}

func (e *ahsayExtractor) Matches(subject string) bool {
	return strings.Contains(subject, ahsayPrefix)
}

func (e *ahsayExtractor) Extract(subject, html string) ([]Entry, error) {
	job, client, err := e.splitter.Split(textAfter(subject, ahsayPrefix))
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse ahsay report")
	}

	var entries []Entry
	doc.Find(`table[width="100%"]`).Each(func(_ int, table *goquery.Selection) {
		system := placeholderSystem
		if cell := table.Find("td").First(); cell.Length() > 0 {
			system = textAfter(strings.TrimSpace(cell.Text()), "Backupset:")
		}

		entries = append(entries, Entry{
			Client:  client,
			System:  system,
			Job:     job,
			Percent: e.percent(table),
		})
	})

	return entries, nil
}

func (e *ahsayExtractor) percent(table *goquery.Selection) int {
	if e.markerMode == AhsayMarkerColor {
		marked := false
		table.Find("td, span").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			if style, ok := sel.Attr("style"); ok && strings.Contains(style, successColor) {
				marked = true
				return false
			}
			return true
		})
		if marked {
			return 100
		}
		return 0
	}

	// Text mode: only the first span is authoritative.
	if span := table.Find("span").First(); span.Length() > 0 && strings.Contains(span.Text(), "SUCCESS") {
		return 100
	}
	return 0
}
