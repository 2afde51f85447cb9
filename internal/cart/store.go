package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// Store persists the serialized cart. The service calls Save synchronously
// inside every mutation, before any broadcast goes out.
type Store interface {
	Save(ctx context.Context, doc Document) error
	Load(ctx context.Context) (Document, error)
}

// FileStore keeps the cart in a single JSON file, in the shape legacy
// clients already read and write.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Save(_ context.Context, doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding cart: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", s.path, err)
	}
	return nil
}

// Load reads the cart file. A missing file yields an empty document; a
// malformed one returns an error so the caller can log it and start empty.
func (s *FileStore) Load(_ context.Context) (Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, nil
		}
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return Document{}, nil
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", s.path, err)
	}
	return doc, nil
}
