package domain

import (
	"context"
	"time"
)

// PeerRef identifies a message sender. A nil *PeerRef means the transport
// could not attribute the message to anyone.
type PeerRef struct {
	UserID int64
}

// Entity is the resolved profile behind a PeerRef. Either name part may be
// empty.
type Entity struct {
	ID        int64
	FirstName string
	LastName  string
}

// RawMessage is one message as delivered by a chat transport, before identity
// resolution and rendering. MediaRef is a MIME type or synthetic ref for
// ClassifyMedia; empty means no attachment. ReplyToID is the id of the
// replied-to message, 0 when the message is not a reply.
type RawMessage struct {
	ID        int64
	Sender    *PeerRef
	Text      string
	Time      time.Time
	ReplyToID int64
	MediaRef  string
}

// IterOptions narrows a history iteration. OffsetID skips messages at or
// below the given id, Search filters server-side by substring; zero values
// mean a full pass.
type IterOptions struct {
	OffsetID int64
	Search   string
}

// ChatTransport is the external chat client. Implementations must deliver
// history oldest-first and call fn once per message, stopping on the first
// error fn returns.
type ChatTransport interface {
	ForEachMessage(ctx context.Context, channelID string, opts IterOptions, fn func(RawMessage) error) error
	ResolveEntity(ctx context.Context, ref PeerRef) (Entity, error)
	GetMessage(ctx context.Context, channelID string, id int64) (*RawMessage, error)
}
