package pipeline

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/bjorkit/backupwatch/interfaces"
	apperrors "github.com/bjorkit/backupwatch/internal/errors"
	"github.com/bjorkit/backupwatch/internal/logger"
	"github.com/bjorkit/backupwatch/internal/models"
	"github.com/bjorkit/backupwatch/internal/tracing"
	"github.com/bjorkit/backupwatch/services/decoder"
	"github.com/bjorkit/backupwatch/services/report"
	"github.com/bjorkit/backupwatch/services/status"
)

// Pipeline drives one poll cycle: fetch report mail, extract and
// catalogue observations, relocate the catalogued messages, then alert
// on recent failures.
type Pipeline struct {
	transport         interfaces.MailboxTransport
	repo              interfaces.ObservationRepository
	registry          *report.Registry
	aggregator        *status.Aggregator
	notifier          interfaces.FailureNotifier
	log               logger.Logger
	failureWindowDays int
}

func NewPipeline(
	transport interfaces.MailboxTransport,
	repo interfaces.ObservationRepository,
	registry *report.Registry,
	aggregator *status.Aggregator,
	notifier interfaces.FailureNotifier,
	log logger.Logger,
	failureWindowDays int,
) *Pipeline {
	return &Pipeline{
		transport:         transport,
		repo:              repo,
		registry:          registry,
		aggregator:        aggregator,
		notifier:          notifier,
		log:               log,
		failureWindowDays: failureWindowDays,
	}
}

// RunCycle executes one full poll cycle. Transport errors abort the
// cycle; per-message problems are logged and the message stays in the
// inbox for the next run.
func (p *Pipeline) RunCycle(ctx context.Context) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "Pipeline.RunCycle")
	defer span.Finish()
	tracing.TagComponentService(span)

	if err := p.ingest(ctx); err != nil {
		tracing.TraceErr(span, err)
		return err
	}

	failures, err := p.aggregator.DetectFailures(ctx, p.failureWindowDays)
	if err != nil {
		tracing.TraceErr(span, err)
		return err
	}
	if len(failures) == 0 {
		return nil
	}
	return p.notifier.NotifyFailures(ctx, failures)
}

func (p *Pipeline) ingest(ctx context.Context) error {
	p.log.Info("parsing e-mails...")

	if err := p.transport.Connect(ctx); err != nil {
		return err
	}
	defer func() {
		if err := p.transport.Close(); err != nil {
			p.log.Warnf("mailbox close: %v", err)
		}
	}()

	refs, err := p.transport.List(ctx)
	if err != nil {
		return err
	}

	var catalogued []uint32
	for _, ref := range refs {
		err := p.processMessage(ctx, ref, &catalogued)
		if err == nil {
			continue
		}
		var transportErr *apperrors.TransportError
		if errors.As(err, &transportErr) {
			return err
		}
		// Recoverable: leave the message where it is and retry next cycle.
		p.log.Warnf("skipping message uid=%d: %v", ref.UID, err)
	}

	if len(catalogued) > 0 {
		if err := p.transport.Relocate(ctx, catalogued); err != nil {
			return err
		}
	}

	p.log.Infof("%d e-mails catalogued", len(catalogued))
	return nil
}

// processMessage runs one message through decode, extraction and the
// catalogue. Its uid joins the relocation set only once the insert batch
// has committed.
func (p *Pipeline) processMessage(ctx context.Context, ref interfaces.MessageRef, catalogued *[]uint32) error {
	raw, err := p.transport.Fetch(ctx, ref.SeqNum)
	if err != nil {
		return err
	}

	rep, err := decoder.Decode(raw)
	if err != nil {
		return err
	}

	extractor := p.registry.Dispatch(rep.Subject)
	if extractor == nil {
		// Not an error: unrecognized mail stays visible for manual triage.
		p.log.Infof("junk mail? uid=%d subject=%q", ref.UID, rep.Subject)
		return nil
	}

	entries, err := extractor.Extract(rep.Subject, rep.HTML)
	if err != nil {
		return err
	}

	observations := make([]*models.Observation, 0, len(entries))
	for _, e := range entries {
		observations = append(observations, &models.Observation{
			Timestamp: rep.Timestamp,
			Service:   extractor.Service(),
			Client:    e.Client,
			System:    e.System,
			Job:       e.Job,
			Percent:   e.Percent,
		})
	}

	if _, err := p.repo.InsertBatch(ctx, observations); err != nil {
		return err
	}

	*catalogued = append(*catalogued, ref.UID)
	return nil
}
