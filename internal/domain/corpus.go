package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// Corpus is the full ordered history of one channel, oldest first. Order is
// the ingestion processing order and is preserved through serialization.
type Corpus []Message

// MarshalIndent renders the corpus as pretty-printed UTF-8 JSON. HTML escaping
// is off so message text survives byte-for-byte.
func (c Corpus) MarshalIndent() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("encode corpus: %w", err)
	}
	return buf.Bytes(), nil
}

// Save writes the corpus to path as JSON.
func (c Corpus) Save(path string) error {
	data, err := c.MarshalIndent()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write corpus: %w", err)
	}
	return nil
}

// LoadCorpus reads a corpus previously written by Save. The result is
// structurally equal to the saved value.
func LoadCorpus(path string) (Corpus, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	var c Corpus
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode corpus %s: %w", path, err)
	}
	return c, nil
}
