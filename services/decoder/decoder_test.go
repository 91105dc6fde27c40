package decoder

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/bjorkit/backupwatch/internal/errors"
)

func message(headers []string, body string) []byte {
	return []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + body)
}

func TestDecode_MultipartAlternativeBase64(t *testing.T) {
	html := "<html><body><p>report</p></body></html>"
	encoded := base64.StdEncoding.EncodeToString([]byte(html))

	raw := message([]string{
		"From: reports@vendor.example",
		"Subject: Backup Summary: Nightly - Acme - Björk IT",
		"Date: Mon, 02 Jan 2023 10:04:05 +0100",
		"MIME-Version: 1.0",
		`Content-Type: multipart/alternative; boundary="b1"`,
	}, strings.Join([]string{
		"--b1",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		"plain body",
		"--b1",
		"Content-Type: text/html; charset=UTF-8",
		"Content-Transfer-Encoding: base64",
		"",
		encoded,
		"--b1--",
		"",
	}, "\r\n"))

	rep, err := Decode(raw)

	require.NoError(t, err)
	assert.Equal(t, "Backup Summary: Nightly - Acme - Björk IT", rep.Subject)
	assert.Contains(t, rep.HTML, "<p>report</p>")
	assert.Equal(t, time.Date(2023, 1, 2, 9, 4, 5, 0, time.UTC), rep.Timestamp)
}

func TestDecode_QuotedPrintable(t *testing.T) {
	raw := message([]string{
		"From: reports@vendor.example",
		"Subject: Hyper-V Server Report",
		"Date: Tue, 03 Jan 2023 08:00:00 +0000",
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=UTF-8",
		"Content-Transfer-Encoding: quoted-printable",
	}, "<p>caf=C3=A9</p>\r\n")

	rep, err := Decode(raw)

	require.NoError(t, err)
	assert.Contains(t, rep.HTML, "café")
}

func TestDecode_SubjectDateTokensStripped(t *testing.T) {
	tests := []struct {
		subject string
		want    string
	}{
		{"Backup Summary: Job - Client (1/2/2023)", "Backup Summary: Job - Client"},
		{"Backup Summary: Job - Client 1/2/2023", "Backup Summary: Job - Client"},
		{"No dates here", "No dates here"},
	}

	for _, tt := range tests {
		raw := message([]string{
			"Subject: " + tt.subject,
			"Date: Mon, 02 Jan 2023 11:00:00 +0000",
			"Content-Type: text/html; charset=UTF-8",
		}, "<p>x</p>\r\n")

		rep, err := Decode(raw)

		require.NoError(t, err)
		assert.Equal(t, tt.want, rep.Subject)
	}
}

func TestDecode_NoHTML(t *testing.T) {
	raw := message([]string{
		"Subject: plain only",
		"Date: Mon, 02 Jan 2023 11:00:00 +0000",
		"Content-Type: text/plain; charset=UTF-8",
	}, "just words, no markup\r\n")

	_, err := Decode(raw)

	assert.ErrorIs(t, err, apperrors.ErrNoHTMLBody)
}

func TestDecode_MissingDate(t *testing.T) {
	raw := message([]string{
		"Subject: Hyper-V Server Report",
		"Content-Type: text/html; charset=UTF-8",
	}, "<p>x</p>\r\n")

	_, err := Decode(raw)

	assert.ErrorIs(t, err, apperrors.ErrMissingDate)
}

func TestDecode_SinglePartMarkupWithoutHTMLType(t *testing.T) {
	// Some generators declare text/plain but ship markup anyway.
	raw := message([]string{
		"Subject: Hyper-V Server Report",
		"Date: Mon, 02 Jan 2023 11:00:00 +0000",
		"Content-Type: text/plain; charset=UTF-8",
	}, "<h2>Report for 'Acme'</h2>\r\n")

	rep, err := Decode(raw)

	require.NoError(t, err)
	assert.Contains(t, rep.HTML, "Acme")
}
