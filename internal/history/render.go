package history

import (
	"fmt"
	"log/slog"

	"buddybot/internal/domain"
)

// SelfReferenceName replaces the resolved display name when a message replies
// to its own author.
const SelfReferenceName = "self"

// timeLayout is the timestamp format used inside context sentences.
const timeLayout = "2006-01-02 15:04:05Z07:00"

// mediaPhrases maps each known media kind to its human phrase. MediaUnknown is
// deliberately absent: unknown attachments render as nothing.
var mediaPhrases = map[domain.MediaKind]string{
	domain.MediaImage:           "photo",
	domain.MediaVideo:           "video",
	domain.MediaAudio:           "audio",
	domain.MediaEmptyWebpage:    "link",
	domain.MediaGeolocation:     "location",
	domain.MediaLiveGeolocation: "live location",
}

// Renderer produces the context sentence for a message:
//
//	<name> wrote at <time>: '<text>' and attached <kind> in reply to a message by <name>: ...
//
// Every segment after the colon is optional and omitted cleanly when its
// source field is empty.
type Renderer struct {
	logger *slog.Logger
}

func NewRenderer(logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{logger: logger}
}

// Render fills in msg.ContextText. All other fields must already be set.
func (r *Renderer) Render(msg *domain.Message) {
	msg.ContextText = fmt.Sprintf("%s wrote at %s:%s%s%s",
		msg.Name,
		msg.Time.Format(timeLayout),
		quotedText(msg.Text),
		r.attachment(msg.Text, msg.Media),
		r.reply(msg),
	)
}

// quotedText returns " '<text>'", or "" for empty text so no dangling quotes
// appear.
func quotedText(text string) string {
	if text == "" {
		return ""
	}
	return " '" + text + "'"
}

// attachment renders the attachment segment. The "and" connective only
// appears when a quoted text segment precedes it.
func (r *Renderer) attachment(text string, media *domain.Media) string {
	if media == nil {
		return ""
	}

	phrase, ok := mediaPhrases[media.Type]
	if !ok {
		r.logger.Warn("unknown media type, rendering without attachment", "type", media.Type)
		return ""
	}

	if text != "" {
		return " and attached " + phrase
	}
	return " attached " + phrase
}

func (r *Renderer) reply(msg *domain.Message) string {
	reply := msg.ReplyTo
	if reply == nil {
		return ""
	}

	name := reply.Name
	if reply.UserID == msg.UserID {
		name = SelfReferenceName
	}

	return fmt.Sprintf(" in reply to a message by %s:%s%s",
		name,
		quotedText(reply.Text),
		r.attachment(reply.Text, reply.Media),
	)
}
