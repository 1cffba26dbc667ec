package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"buddybot/internal/domain"
)

// ExportTransport implements domain.ChatTransport over a Telegram Desktop
// chat export (result.json). The Bot API cannot page back through history, so
// offline ingestion reads the export file instead; message order in the file
// is already oldest-first.
type ExportTransport struct {
	messages []exportMessage
	byID     map[int64]*exportMessage
	names    map[int64]string
}

type exportFile struct {
	Name     string          `json:"name"`
	ID       int64           `json:"id"`
	Messages []exportMessage `json:"messages"`
}

type exportMessage struct {
	ID               int64           `json:"id"`
	Type             string          `json:"type"`
	Date             string          `json:"date"`
	From             string          `json:"from"`
	FromID           string          `json:"from_id"`
	ReplyToMessageID int64           `json:"reply_to_message_id"`
	Text             json.RawMessage `json:"text"`
	Photo            string          `json:"photo"`
	MIMEType         string          `json:"mime_type"`
	MediaType        string          `json:"media_type"`
	Location         *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location_information"`
	LivePeriod int `json:"live_location_period_seconds"`
}

const exportDateLayout = "2006-01-02T15:04:05"

// NewExportTransport parses a Telegram Desktop export file.
func NewExportTransport(path string) (*ExportTransport, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read export %s: %w", path, err)
	}

	var file exportFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse export %s: %w", path, err)
	}

	t := &ExportTransport{
		byID:  make(map[int64]*exportMessage),
		names: make(map[int64]string),
	}
	for _, msg := range file.Messages {
		if msg.Type != "message" {
			continue
		}
		t.messages = append(t.messages, msg)
	}
	for i := range t.messages {
		msg := &t.messages[i]
		t.byID[msg.ID] = msg
		if id, ok := parseFromID(msg.FromID); ok && msg.From != "" {
			t.names[id] = msg.From
		}
	}
	return t, nil
}

func (t *ExportTransport) ForEachMessage(ctx context.Context, _ string, opts domain.IterOptions, fn func(domain.RawMessage) error) error {
	for i := range t.messages {
		if err := ctx.Err(); err != nil {
			return err
		}
		msg := &t.messages[i]
		if msg.ID <= opts.OffsetID {
			continue
		}
		raw := t.toRaw(msg)
		if opts.Search != "" && !strings.Contains(raw.Text, opts.Search) {
			continue
		}
		if err := fn(raw); err != nil {
			return err
		}
	}
	return nil
}

// ResolveEntity answers from the sender names recorded in the export. There
// is no first/last split in an export, the whole display name rides in
// FirstName.
func (t *ExportTransport) ResolveEntity(_ context.Context, ref domain.PeerRef) (domain.Entity, error) {
	name, ok := t.names[ref.UserID]
	if !ok {
		return domain.Entity{}, fmt.Errorf("user %d not present in export", ref.UserID)
	}
	return domain.Entity{ID: ref.UserID, FirstName: name}, nil
}

func (t *ExportTransport) GetMessage(_ context.Context, _ string, id int64) (*domain.RawMessage, error) {
	msg, ok := t.byID[id]
	if !ok {
		return nil, nil
	}
	raw := t.toRaw(msg)
	return &raw, nil
}

func (t *ExportTransport) toRaw(msg *exportMessage) domain.RawMessage {
	raw := domain.RawMessage{
		ID:        msg.ID,
		Text:      flattenText(msg.Text),
		ReplyToID: msg.ReplyToMessageID,
		MediaRef:  mediaRef(msg),
	}
	if ts, err := time.Parse(exportDateLayout, msg.Date); err == nil {
		raw.Time = ts
	}
	if id, ok := parseFromID(msg.FromID); ok {
		raw.Sender = &domain.PeerRef{UserID: id}
	}
	return raw
}

// mediaRef reduces the export's media fields to a single classifier ref.
// A concrete MIME type wins; photos carry no MIME type in exports.
func mediaRef(msg *exportMessage) string {
	switch {
	case msg.MIMEType != "":
		return msg.MIMEType
	case msg.Photo != "":
		return "image/jpeg"
	case msg.Location != nil && msg.LivePeriod > 0:
		return domain.RefLiveGeolocation
	case msg.Location != nil:
		return domain.RefGeolocation
	case msg.MediaType != "":
		return msg.MediaType
	}
	return ""
}

// parseFromID strips the "user" prefix from export sender ids. Channel posts
// ("channel123...") have no user identity and report false.
func parseFromID(fromID string) (int64, bool) {
	numeric, ok := strings.CutPrefix(fromID, "user")
	if !ok {
		return 0, false
	}
	var id int64
	if _, err := fmt.Sscanf(numeric, "%d", &id); err != nil {
		return 0, false
	}
	return id, true
}

// flattenText collapses the export's text field, which is either a plain
// string or an array of strings and entity objects.
func flattenText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var plain string
	if err := json.Unmarshal(raw, &plain); err == nil {
		return plain
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range parts {
		var s string
		if err := json.Unmarshal(part, &s); err == nil {
			sb.WriteString(s)
			continue
		}
		var entity struct {
			Text string `json:"text"`
		}
		if err := json.Unmarshal(part, &entity); err == nil {
			sb.WriteString(entity.Text)
		}
	}
	return sb.String()
}
