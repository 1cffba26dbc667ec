package domain

import (
	"encoding/json"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func sampleCorpus() Corpus {
	t1 := time.Date(2023, 5, 8, 11, 32, 9, 0, time.UTC)
	return Corpus{
		{
			MessageBase: MessageBase{UserID: 596110122, Name: "Mykola", Text: "we will ride every hype wave"},
			Time:        t1,
			ContextText: "Mykola wrote at 2023-05-08 11:32:09Z: 'we will ride every hype wave'",
		},
		{
			MessageBase: MessageBase{
				UserID: 564660774, Name: "Volodya", Text: "fair point",
				Media: &Media{Type: MediaImage},
			},
			Time: t1.Add(2 * time.Minute),
			ReplyTo: &Reply{
				UserID: 596110122, Name: "Mykola", Text: "two guys chasing hype",
				Media: &Media{Type: MediaEmptyWebpage},
			},
			ContextText: "Volodya wrote at 2023-05-08 11:34:09Z: 'fair point' and attached photo in reply to a message by Mykola: 'two guys chasing hype' and attached link",
		},
	}
}

func TestCorpus_FileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat_history.json")
	corpus := sampleCorpus()

	if err := corpus.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := LoadCorpus(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if !reflect.DeepEqual(loaded, corpus) {
		t.Errorf("round trip changed the corpus:\n got %+v\nwant %+v", loaded, corpus)
	}
}

func TestCorpus_SerializedKeys(t *testing.T) {
	data, err := sampleCorpus().MarshalIndent()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	for _, key := range []string{"user_id", "name", "text", "time", "media", "reply_to", "context_text"} {
		if _, ok := raw[0][key]; !ok {
			t.Errorf("serialized message missing key %q", key)
		}
	}

	if string(raw[0]["media"]) != "null" {
		t.Errorf("absent media must serialize as null, got %s", raw[0]["media"])
	}
	if string(raw[0]["reply_to"]) != "null" {
		t.Errorf("absent reply must serialize as null, got %s", raw[0]["reply_to"])
	}
}

func TestCorpus_NonASCIITextSurvives(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	corpus := Corpus{{
		MessageBase: MessageBase{UserID: 1, Name: "Андрій", Text: "ну добре <3"},
		Time:        time.Date(2023, 5, 8, 11, 0, 0, 0, time.UTC),
		ContextText: "Андрій wrote at 2023-05-08 11:00:00Z: 'ну добре <3'",
	}}

	if err := corpus.Save(path); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := LoadCorpus(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded[0].Text != corpus[0].Text || loaded[0].Name != corpus[0].Name {
		t.Errorf("text mangled in round trip: %+v", loaded[0])
	}
}
