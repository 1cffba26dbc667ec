package domain

import "time"

// MessageBase is the shape shared by a message and the message it replies to.
// Name is always non-empty after ingestion; unresolved senders get the
// directory's placeholder.
type MessageBase struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Text   string `json:"text"`
	Media  *Media `json:"media"`
}

// Reply is the one-hop reply target of a message. Never a chain.
type Reply = MessageBase

// Message is one rendered channel message. ContextText is derived from the
// other fields by the renderer and is never supplied by a transport.
type Message struct {
	MessageBase
	Time        time.Time `json:"time"`
	ReplyTo     *Reply    `json:"reply_to"`
	ContextText string    `json:"context_text"`
}
