// Package storage persists small JSON documents under named keys,
// backed by gache with the shared afero filesystem.
package storage

import (
	"encoding/json"

	"github.com/metafates/gache"

	"github.com/quranku-cli/quranku/filesystem"
	"github.com/quranku-cli/quranku/log"
)

// Storage is a named key to JSON document store persisted at a single path.
type Storage struct {
	cacher *gache.Cache[map[string]json.RawMessage]
}

// New opens (or creates) the store at path.
func New(path string) *Storage {
	return &Storage{
		cacher: gache.New[map[string]json.RawMessage](
			&gache.Options{
				Path:       path,
				FileSystem: &filesystem.GacheFs{},
			},
		),
	}
}

// Get decodes the document under name into out.
// Returns false when the key is absent or the document does not decode.
func (s *Storage) Get(name string, out any) bool {
	data, expired, err := s.cacher.Get()
	if err != nil || expired || data == nil {
		return false
	}

	raw, ok := data[name]
	if !ok {
		return false
	}

	if err := json.Unmarshal(raw, out); err != nil {
		log.Warnf("storage: corrupt document %q: %v", name, err)
		return false
	}
	return true
}

// Set encodes value and stores it under name.
func (s *Storage) Set(name string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}

	data, _, err := s.cacher.Get()
	if err != nil || data == nil {
		data = make(map[string]json.RawMessage)
	}
	data[name] = raw

	return s.cacher.Set(data)
}

// Forget removes the document under name. An absent key is a no-op.
func (s *Storage) Forget(name string) error {
	data, _, err := s.cacher.Get()
	if err != nil || data == nil {
		return nil
	}

	if _, ok := data[name]; !ok {
		return nil
	}
	delete(data, name)

	return s.cacher.Set(data)
}
