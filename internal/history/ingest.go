package history

import (
	"context"
	"fmt"
	"log/slog"

	"buddybot/internal/domain"
)

// Ingestor drives one sequential pass over a channel's history and produces a
// rendered corpus. Processing is strictly in fetch order: reply self-reference
// detection and the checkpoint cursor both depend on it.
type Ingestor struct {
	transport   domain.ChatTransport
	directory   *Directory
	renderer    *Renderer
	checkpoints domain.CheckpointStore
	logger      *slog.Logger
}

type IngestorConfig struct {
	Transport   domain.ChatTransport
	Directory   *Directory
	Checkpoints domain.CheckpointStore
	Logger      *slog.Logger
}

func NewIngestor(cfg IngestorConfig) *Ingestor {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Directory == nil {
		cfg.Directory = NewDirectory(DirectoryConfig{Resolver: cfg.Transport, Logger: cfg.Logger})
	}
	return &Ingestor{
		transport:   cfg.Transport,
		directory:   cfg.Directory,
		renderer:    NewRenderer(cfg.Logger),
		checkpoints: cfg.Checkpoints,
		logger:      cfg.Logger,
	}
}

// Run ingests channelID oldest-first and returns the corpus. resumeFrom is a
// message id floor (0 = full history); messages at or below it are skipped by
// the transport, and reprocessing on overlap is safe because each run's corpus
// supersedes the previous one. On success the checkpoint store records the
// last processed message id; a checkpoint write failure fails the whole run.
func (ing *Ingestor) Run(ctx context.Context, channelID string, resumeFrom int64) (domain.Corpus, error) {
	return ing.RunFiltered(ctx, channelID, domain.IterOptions{OffsetID: resumeFrom})
}

// RunFiltered is Run with full iteration options, including a server-side
// search filter.
func (ing *Ingestor) RunFiltered(ctx context.Context, channelID string, opts domain.IterOptions) (domain.Corpus, error) {
	var (
		corpus domain.Corpus
		lastID int64
	)

	err := ing.transport.ForEachMessage(ctx, channelID, opts, func(raw domain.RawMessage) error {
		msg := domain.Message{
			MessageBase: domain.MessageBase{
				UserID: senderID(raw.Sender),
				Name:   ing.directory.Resolve(ctx, raw.Sender),
				Text:   raw.Text,
				Media:  domain.ClassifyMedia(raw.MediaRef),
			},
			Time:    raw.Time,
			ReplyTo: ing.resolveReply(ctx, channelID, raw),
		}
		ing.renderer.Render(&msg)

		corpus = append(corpus, msg)
		lastID = raw.ID
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate channel %s: %w", channelID, err)
	}

	if lastID != 0 {
		if err := ing.checkpoints.Upsert(ctx, channelID, lastID); err != nil {
			return nil, fmt.Errorf("checkpoint channel %s at %d: %w", channelID, lastID, err)
		}
	}

	ing.logger.Info("channel ingested", "channel", channelID, "messages", len(corpus), "last_id", lastID)
	return corpus, nil
}

// resolveReply fetches the single-hop reply target. Any failure downgrades to
// no reply; a missing reply never fails the run.
func (ing *Ingestor) resolveReply(ctx context.Context, channelID string, raw domain.RawMessage) *domain.Reply {
	if raw.ReplyToID == 0 {
		return nil
	}

	target, err := ing.transport.GetMessage(ctx, channelID, raw.ReplyToID)
	if err != nil {
		ing.logger.Warn("reply fetch failed", "channel", channelID, "reply_to", raw.ReplyToID, "err", err)
		return nil
	}
	if target == nil {
		return nil
	}

	return &domain.Reply{
		UserID: senderID(target.Sender),
		Name:   ing.directory.Resolve(ctx, target.Sender),
		Text:   target.Text,
		Media:  domain.ClassifyMedia(target.MediaRef),
	}
}

func senderID(ref *domain.PeerRef) int64 {
	if ref == nil {
		return 0
	}
	return ref.UserID
}
