package domain

import "strings"

// MediaKind classifies a message attachment. The set is closed: anything the
// classifier does not recognize becomes MediaUnknown and stays that way.
type MediaKind string

const (
	MediaImage           MediaKind = "image"
	MediaVideo           MediaKind = "video"
	MediaAudio           MediaKind = "audio"
	MediaGeolocation     MediaKind = "geolocation"
	MediaLiveGeolocation MediaKind = "live-geolocation"
	MediaEmptyWebpage    MediaKind = "empty-webpage"
	MediaUnknown         MediaKind = "unknown"
)

// Media is a message attachment reduced to its kind.
type Media struct {
	Type MediaKind `json:"type"`
}

// Synthetic refs emitted by transports for attachments that carry no MIME type.
const (
	RefGeolocation     = "geolocation"
	RefLiveGeolocation = "live-geolocation"
	RefEmptyWebpage    = "empty-webpage"
)

// ClassifyMedia maps a transport media ref (a MIME type such as "image/jpeg",
// or one of the synthetic refs above) to a Media value. An empty ref means no
// attachment and yields nil. A non-empty ref that matches nothing yields
// MediaUnknown, never nil: the attachment existed even if we cannot name it.
func ClassifyMedia(ref string) *Media {
	if ref == "" {
		return nil
	}

	switch ref {
	case RefGeolocation:
		return &Media{Type: MediaGeolocation}
	case RefLiveGeolocation:
		return &Media{Type: MediaLiveGeolocation}
	case RefEmptyWebpage:
		return &Media{Type: MediaEmptyWebpage}
	}

	prefix, _, _ := strings.Cut(ref, "/")
	switch prefix {
	case "image":
		return &Media{Type: MediaImage}
	case "video":
		return &Media{Type: MediaVideo}
	case "audio":
		return &Media{Type: MediaAudio}
	}

	return &Media{Type: MediaUnknown}
}
