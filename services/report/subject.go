package report

import (
	"strings"

	"github.com/bjorkit/backupwatch/config"
	apperrors "github.com/bjorkit/backupwatch/internal/errors"
)

// SubjectSplitter parses a free-text report subject into its job and
// client identifiers.
type SubjectSplitter struct {
	companyName     string
	companyVariants []string
}

func NewSubjectSplitter(cfg *config.ReportConfig) *SubjectSplitter {
	return &SubjectSplitter{
		companyName:     cfg.CompanyName,
		companyVariants: cfg.CompanyVariants,
	}
}

// Split breaks a subject into (job, client). The delimiter is a bare "-"
// when the subject contains exactly two of them, otherwise " - ". A third
// segment carries the reporting company's own name and is discarded; with
// only two segments the operator's name is assumed. Some vendors emit the
// client and company segments in reversed order, detected by the operator
// name showing up where the client belongs, and corrected by swapping.
func (s *SubjectSplitter) Split(subject string) (string, string, error) {
	delimiter := " - "
	if strings.Count(subject, "-") == 2 {
		delimiter = "-"
	}

	segments := strings.Split(subject, delimiter)
	for i := range segments {
		segments[i] = strings.TrimSpace(segments[i])
	}

	var job, client, company string
	switch {
	case len(segments) >= 3:
		job, client, company = segments[0], segments[1], segments[2]
	case len(segments) == 2:
		job, client, company = segments[0], segments[1], s.companyName
	default:
		return "", "", apperrors.ErrMalformedSubject
	}

	// Drop a leading SUCCESS marker some vendors prepend to the job.
	jobParts := strings.Split(job, "SUCCESS")
	job = strings.TrimSpace(jobParts[len(jobParts)-1])

	if s.containsOperator(client) || s.containsOperator(job) {
		client = company
	}

	return job, client, nil
}

func (s *SubjectSplitter) containsOperator(segment string) bool {
	for _, variant := range s.companyVariants {
		if variant != "" && strings.Contains(segment, variant) {
			return true
		}
	}
	return false
}
