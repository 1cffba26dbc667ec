// Package history turns a channel's raw message stream into a rendered,
// serializable corpus: identity resolution, reply resolution, media
// classification and context-sentence rendering.
package history

import (
	"context"
	"log/slog"
	"sync"

	"buddybot/internal/domain"
)

// UnknownSenderName is the display name used when a message has no sender or
// the sender's profile cannot be fetched.
const UnknownSenderName = "stranger"

// EntityResolver is the slice of the chat transport the directory needs.
type EntityResolver interface {
	ResolveEntity(ctx context.Context, ref domain.PeerRef) (domain.Entity, error)
}

// Directory resolves sender refs to display names. Entries are cached for the
// lifetime of the directory and never invalidated, so the external resolver is
// called at most once per user id. Safe for concurrent use.
type Directory struct {
	resolver EntityResolver
	logger   *slog.Logger

	mu    sync.RWMutex
	names map[int64]string
}

// DirectoryConfig configures a Directory. Seed pre-populates the cache with
// known aliases, typically including the bot's own persona identity.
type DirectoryConfig struct {
	Resolver EntityResolver
	Seed     map[int64]string
	Logger   *slog.Logger
}

func NewDirectory(cfg DirectoryConfig) *Directory {
	names := make(map[int64]string, len(cfg.Seed))
	for id, name := range cfg.Seed {
		names[id] = name
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Directory{
		resolver: cfg.Resolver,
		logger:   cfg.Logger,
		names:    names,
	}
}

// Resolve returns the display name for ref. A nil ref yields the unknown
// sender placeholder. Cache misses trigger exactly one external lookup; a
// failed lookup caches the placeholder so it is not retried.
func (d *Directory) Resolve(ctx context.Context, ref *domain.PeerRef) string {
	if ref == nil {
		return UnknownSenderName
	}

	d.mu.RLock()
	name, ok := d.names[ref.UserID]
	d.mu.RUnlock()
	if ok {
		return name
	}

	name = d.lookup(ctx, *ref)

	d.mu.Lock()
	// Another caller may have resolved the same id meanwhile; first write wins
	// so the name stays stable within a run.
	if cached, ok := d.names[ref.UserID]; ok {
		name = cached
	} else {
		d.names[ref.UserID] = name
	}
	d.mu.Unlock()

	return name
}

func (d *Directory) lookup(ctx context.Context, ref domain.PeerRef) string {
	entity, err := d.resolver.ResolveEntity(ctx, ref)
	if err != nil {
		d.logger.Warn("entity lookup failed", "user_id", ref.UserID, "err", err)
		return UnknownSenderName
	}

	name := composeName(entity)
	if name == "" {
		return UnknownSenderName
	}
	return name
}

func composeName(e domain.Entity) string {
	switch {
	case e.FirstName != "" && e.LastName != "":
		return e.FirstName + " " + e.LastName
	case e.FirstName != "":
		return e.FirstName
	default:
		return e.LastName
	}
}
