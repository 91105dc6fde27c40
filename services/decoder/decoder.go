package decoder

import (
	"bytes"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"
	"github.com/pkg/errors"

	apperrors "github.com/bjorkit/backupwatch/internal/errors"
)

// dateToken matches literal dates some vendors embed in subject lines,
// either parenthesized "(1/2/2023)" or bare "1/2/2023".
var dateToken = regexp.MustCompile(`(\(\d+/\d+/\d+\)|\d+/\d+/\d+)`)

// Report is a decoded vendor report message.
type Report struct {
	Subject   string
	Timestamp time.Time
	HTML      string
}

// Decode parses a raw message, selects the HTML alternative out of the
// MIME tree with its transfer encoding reversed, and normalizes the
// subject and date headers. Any failure is recoverable per message.
func Decode(raw []byte) (*Report, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse message")
	}

	html := env.HTML
	if html == "" {
		// Some reports arrive as a single text part that carries the
		// markup without a text/html declaration.
		if strings.Contains(env.Text, "<") && strings.Contains(env.Text, ">") {
			html = env.Text
		} else {
			return nil, apperrors.ErrNoHTMLBody
		}
	}

	timestamp, err := parseDate(env.GetHeader("Date"))
	if err != nil {
		return nil, err
	}

	subject := dateToken.ReplaceAllString(env.GetHeader("Subject"), "")
	subject = strings.TrimSpace(subject)

	return &Report{
		Subject:   subject,
		Timestamp: timestamp,
		HTML:      html,
	}, nil
}

func parseDate(header string) (time.Time, error) {
	if header == "" {
		return time.Time{}, apperrors.ErrMissingDate
	}
	t, err := mail.ParseDate(header)
	if err != nil {
		return time.Time{}, errors.Wrap(apperrors.ErrMissingDate, err.Error())
	}
	return t.UTC().Truncate(time.Second), nil
}
