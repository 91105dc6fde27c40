package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const storageCraftSubject = "Online Image Report: Nightly - Acme Corp - Björk IT"

func newStorageCraft() Extractor {
	return NewStorageCraftExtractor(NewSubjectSplitter(testReportConfig()))
}

func TestStorageCraftExtractor_Matches(t *testing.T) {
	e := newStorageCraft()

	assert.True(t, e.Matches(storageCraftSubject))
	assert.False(t, e.Matches("Backup Summary: something"))
}

func TestStorageCraftExtractor_GreenBorderMeansSuccess(t *testing.T) {
	e := newStorageCraft()

	html := `<html><body>
<table cellspacing="15">
<tr><td style="border: 2px solid #5DE01B; padding: 4px"><span>FILESRV</span></td></tr>
</table>
</body></html>`

	entries, err := e.Extract(storageCraftSubject, html)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, Entry{Client: "Acme Corp", System: "FILESRV", Job: "Nightly", Percent: 100}, entries[0])
}

func TestStorageCraftExtractor_OtherBorderColorMeansFailure(t *testing.T) {
	e := newStorageCraft()

	html := `<html><body>
<table cellspacing="15">
<tr><td style="border: 2px solid #E0421B"><span>FILESRV</span></td></tr>
</table>
</body></html>`

	entries, err := e.Extract(storageCraftSubject, html)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 0, entries[0].Percent)
}

func TestStorageCraftExtractor_MissingStyleAndSpanDefault(t *testing.T) {
	e := newStorageCraft()

	html := `<html><body>
<table cellspacing="15"><tr><td>no markup at all</td></tr></table>
</body></html>`

	entries, err := e.Extract(storageCraftSubject, html)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "?", entries[0].System)
	assert.Equal(t, 0, entries[0].Percent)
}

func TestStorageCraftExtractor_SystemCarriesAcrossCells(t *testing.T) {
	e := newStorageCraft()

	// The span naming the system and the colored status cell are separate
	// cells of the same table.
	html := `<html><body>
<table cellspacing="15">
<tr><td><span>FILESRV</span></td><td style="border: 1px solid #5DE01B"></td></tr>
</table>
</body></html>`

	entries, err := e.Extract(storageCraftSubject, html)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	last := entries[len(entries)-1]
	assert.Equal(t, "FILESRV", last.System)
	assert.Equal(t, 100, last.Percent)
}

func TestStorageCraftExtractor_MalformedSubject(t *testing.T) {
	e := newStorageCraft()

	_, err := e.Extract("Online Image Report: nodelimiter", "<html></html>")

	assert.Error(t, err)
}
