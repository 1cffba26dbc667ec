package history

import (
	"strings"
	"testing"
	"time"

	"buddybot/internal/domain"
)

var renderTime = time.Date(2023, 5, 8, 11, 32, 9, 0, time.UTC)

func renderMsg(t *testing.T, msg domain.Message) string {
	t.Helper()
	NewRenderer(testLogger()).Render(&msg)
	return msg.ContextText
}

func TestRender_PlainText(t *testing.T) {
	got := renderMsg(t, domain.Message{
		MessageBase: domain.MessageBase{UserID: 1, Name: "Mykola", Text: "hi"},
		Time:        renderTime,
	})
	want := "Mykola wrote at 2023-05-08 11:32:09Z: 'hi'"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRender_MediaWithoutText(t *testing.T) {
	got := renderMsg(t, domain.Message{
		MessageBase: domain.MessageBase{
			UserID: 1, Name: "Mykola",
			Media: &domain.Media{Type: domain.MediaImage},
		},
		Time: renderTime,
	})
	want := "Mykola wrote at 2023-05-08 11:32:09Z: attached photo"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if strings.Contains(got, "'") {
		t.Errorf("empty text must not render quotes: %q", got)
	}
	if strings.Contains(got, " and ") {
		t.Errorf("no connective without text: %q", got)
	}
}

func TestRender_MediaWithTextUsesConnective(t *testing.T) {
	got := renderMsg(t, domain.Message{
		MessageBase: domain.MessageBase{
			UserID: 1, Name: "Mykola", Text: "look",
			Media: &domain.Media{Type: domain.MediaVideo},
		},
		Time: renderTime,
	})
	want := "Mykola wrote at 2023-05-08 11:32:09Z: 'look' and attached video"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRender_MediaPhrases(t *testing.T) {
	cases := []struct {
		kind   domain.MediaKind
		phrase string
	}{
		{domain.MediaImage, "attached photo"},
		{domain.MediaVideo, "attached video"},
		{domain.MediaAudio, "attached audio"},
		{domain.MediaEmptyWebpage, "attached link"},
		{domain.MediaGeolocation, "attached location"},
		{domain.MediaLiveGeolocation, "attached live location"},
	}

	for _, tc := range cases {
		got := renderMsg(t, domain.Message{
			MessageBase: domain.MessageBase{Name: "A", Media: &domain.Media{Type: tc.kind}},
			Time:        renderTime,
		})
		if !strings.HasSuffix(got, tc.phrase) {
			t.Errorf("kind %s: got %q, want suffix %q", tc.kind, got, tc.phrase)
		}
	}
}

func TestRender_UnknownMediaRendersNothing(t *testing.T) {
	got := renderMsg(t, domain.Message{
		MessageBase: domain.MessageBase{
			Name: "A", Text: "hm",
			Media: &domain.Media{Type: domain.MediaUnknown},
		},
		Time: renderTime,
	})
	want := "A wrote at 2023-05-08 11:32:09Z: 'hm'"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRender_NoReplyMeansNoReplyPhrase(t *testing.T) {
	got := renderMsg(t, domain.Message{
		MessageBase: domain.MessageBase{Name: "A", Text: "hi"},
		Time:        renderTime,
	})
	if strings.Contains(got, "in reply to") {
		t.Errorf("unexpected reply phrase: %q", got)
	}
}

func TestRender_ReplyToOtherUser(t *testing.T) {
	got := renderMsg(t, domain.Message{
		MessageBase: domain.MessageBase{UserID: 1, Name: "Volodya", Text: "true"},
		Time:        renderTime,
		ReplyTo: &domain.Reply{
			UserID: 2, Name: "Mykola", Text: "two bald guys",
		},
	})
	want := "Volodya wrote at 2023-05-08 11:32:09Z: 'true' in reply to a message by Mykola: 'two bald guys'"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRender_SelfReplyUsesSelfToken(t *testing.T) {
	got := renderMsg(t, domain.Message{
		MessageBase: domain.MessageBase{UserID: 1, Name: "Volodya", Text: "and one more thing"},
		Time:        renderTime,
		ReplyTo: &domain.Reply{
			UserID: 1, Name: "Volodya", Text: "first thing",
		},
	})
	if !strings.Contains(got, "in reply to a message by "+SelfReferenceName+":") {
		t.Errorf("self reply must use %q, got %q", SelfReferenceName, got)
	}
	if strings.Contains(got, "by Volodya:") {
		t.Errorf("self reply must not use the display name: %q", got)
	}
}

func TestRender_ReplyWithMediaOnly(t *testing.T) {
	got := renderMsg(t, domain.Message{
		MessageBase: domain.MessageBase{UserID: 1, Name: "A", Text: "nice"},
		Time:        renderTime,
		ReplyTo: &domain.Reply{
			UserID: 2, Name: "B",
			Media: &domain.Media{Type: domain.MediaImage},
		},
	})
	want := "A wrote at 2023-05-08 11:32:09Z: 'nice' in reply to a message by B: attached photo"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
