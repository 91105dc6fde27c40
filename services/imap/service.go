package imap

import (
	"context"
	"io"
	"time"

	goimap "github.com/emersion/go-imap"
	uidplus "github.com/emersion/go-imap-uidplus"
	"github.com/emersion/go-imap/client"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/bjorkit/backupwatch/config"
	"github.com/bjorkit/backupwatch/interfaces"
	apperrors "github.com/bjorkit/backupwatch/internal/errors"
	"github.com/bjorkit/backupwatch/internal/logger"
	"github.com/bjorkit/backupwatch/internal/tracing"
)

// MailboxService is the IMAP implementation of the mailbox transport.
// It is not safe for concurrent use; the poll cycle is its only caller.
type MailboxService struct {
	cfg *config.MailboxConfig
	log logger.Logger

	client          *client.Client
	supportsMove    bool
	supportsUIDPlus bool
}

func NewMailboxService(cfg *config.MailboxConfig, log logger.Logger) interfaces.MailboxTransport {
	return &MailboxService{
		cfg: cfg,
		log: log,
	}
}

func (s *MailboxService) Connect(ctx context.Context) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "MailboxService.Connect")
	defer span.Finish()
	tracing.TagComponentService(span)

	c, err := s.connectMailbox(ctx, s.cfg)
	if err != nil {
		tracing.TraceErr(span, err)
		return apperrors.NewTransportError("connect", err)
	}

	if _, err := c.Select(s.cfg.SourceFolder, false); err != nil {
		c.Logout()
		tracing.TraceErr(span, err)
		return apperrors.NewTransportError("select", err)
	}

	s.client = c
	return nil
}

// List returns every message in the source folder in server order, pairing
// each sequence number with its stable UID.
func (s *MailboxService) List(ctx context.Context) ([]interfaces.MessageRef, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "MailboxService.List")
	defer span.Finish()
	tracing.TagComponentService(span)

	if s.client == nil {
		return nil, apperrors.ErrMailboxNotConnected
	}

	mbox := s.client.Mailbox()
	if mbox == nil {
		return nil, apperrors.ErrMailboxNotConnected
	}
	if mbox.Messages == 0 {
		return nil, nil
	}

	seqSet := new(goimap.SeqSet)
	seqSet.AddRange(1, mbox.Messages)

	messages := make(chan *goimap.Message, 16)
	done := make(chan error, 1)
	go func() {
		done <- s.client.Fetch(seqSet, []goimap.FetchItem{goimap.FetchUid}, messages)
	}()

	var refs []interfaces.MessageRef
	for msg := range messages {
		refs = append(refs, interfaces.MessageRef{SeqNum: msg.SeqNum, UID: msg.Uid})
	}
	if err := <-done; err != nil {
		tracing.TraceErr(span, err)
		return nil, apperrors.NewTransportError("fetch uids", err)
	}

	span.SetTag("messages.total", len(refs))
	return refs, nil
}

func (s *MailboxService) Fetch(ctx context.Context, seqNum uint32) ([]byte, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "MailboxService.Fetch")
	defer span.Finish()
	tracing.TagComponentService(span)
	span.SetTag("seq_num", seqNum)

	if s.client == nil {
		return nil, apperrors.ErrMailboxNotConnected
	}

	seqSet := new(goimap.SeqSet)
	seqSet.AddNum(seqNum)

	section := &goimap.BodySectionName{}
	items := []goimap.FetchItem{section.FetchItem()}

	messages := make(chan *goimap.Message, 1)
	if err := s.client.Fetch(seqSet, items, messages); err != nil {
		tracing.TraceErr(span, err)
		return nil, apperrors.NewTransportError("fetch", err)
	}

	msg, ok := <-messages
	if !ok || msg == nil {
		err := errors.Errorf("no message returned for sequence number %d", seqNum)
		tracing.TraceErr(span, err)
		return nil, apperrors.NewTransportError("fetch", err)
	}

	body := msg.GetBody(section)
	if body == nil {
		err := errors.Errorf("message %d has no body section", seqNum)
		tracing.TraceErr(span, err)
		return nil, apperrors.NewTransportError("fetch", err)
	}

	raw, err := io.ReadAll(body)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, apperrors.NewTransportError("fetch", err)
	}
	return raw, nil
}

// Relocate moves the given messages to the processed folder. The UIDs are
// coalesced into contiguous ranges to keep the command count down.
func (s *MailboxService) Relocate(ctx context.Context, uids []uint32) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "MailboxService.Relocate")
	defer span.Finish()
	tracing.TagComponentService(span)
	span.SetTag("messages.total", len(uids))

	if s.client == nil {
		return apperrors.ErrMailboxNotConnected
	}
	if len(uids) == 0 {
		return nil
	}

	for _, rng := range CoalesceUIDs(uids) {
		if err := s.relocateRange(rng); err != nil {
			tracing.TraceErr(span, err)
			return err
		}
	}
	return nil
}

// relocateRange moves one contiguous UID range using the most capable
// strategy the server advertised: atomic MOVE; else COPY + delete flag +
// UID EXPUNGE under UIDPLUS; else COPY + delete flag, leaving the purge
// to session close.
func (s *MailboxService) relocateRange(rng UIDRange) error {
	seqSet := new(goimap.SeqSet)
	seqSet.AddRange(rng.Start, rng.Stop)
	target := s.cfg.ProcessedFolder

	if s.supportsMove {
		if err := s.client.UidMove(seqSet, target); err != nil {
			return apperrors.NewTransportError("uid move", err)
		}
		return nil
	}

	if err := s.client.UidCopy(seqSet, target); err != nil {
		return apperrors.NewTransportError("uid copy", err)
	}

	flagItem := goimap.FormatFlagsOp(goimap.AddFlags, true)
	flags := []interface{}{goimap.DeletedFlag}
	if err := s.client.UidStore(seqSet, flagItem, flags, nil); err != nil {
		return apperrors.NewTransportError("uid store", err)
	}

	if s.supportsUIDPlus {
		if err := uidplus.NewClient(s.client).UidExpunge(seqSet, nil); err != nil {
			return apperrors.NewTransportError("uid expunge", err)
		}
	}
	return nil
}

func (s *MailboxService) Close() error {
	if s.client == nil {
		return nil
	}
	c := s.client
	s.client = nil

	// CLOSE expunges messages still flagged \Deleted on servers without
	// MOVE or UIDPLUS.
	c.Timeout = 30 * time.Second
	if err := c.Close(); err != nil {
		c.Logout()
		return apperrors.NewTransportError("close", err)
	}
	if err := c.Logout(); err != nil {
		return apperrors.NewTransportError("logout", err)
	}
	return nil
}
