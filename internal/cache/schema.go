// Package cache stores scanned baselines and the command run journal in a
// local SQLite database (.nocstudio/cache.db). It is optional: a baseline
// can always be rebuilt by rescanning the project.
package cache

import (
	"encoding/json"

	"github.com/hlop3z/nocstudio/internal/alerr"
	"github.com/hlop3z/nocstudio/internal/entity"
	"github.com/hlop3z/nocstudio/internal/fingerprint"
)

// -----------------------------------------------------------------------------
// JSON-serializable structures
// -----------------------------------------------------------------------------

// entitySetJSON is the stored form of a baseline entity set.
type entitySetJSON struct {
	Entities []entity.Entity `json:"entities"`
}

// setHashJSON is the stored form of fingerprint.SetHash.
type setHashJSON struct {
	Root     string            `json:"root"`
	Entities map[string]string `json:"entities"`
}

// -----------------------------------------------------------------------------
// Serialization functions
// -----------------------------------------------------------------------------

// SerializeEntities converts an entity set to JSON bytes for storage.
func SerializeEntities(entities []entity.Entity) ([]byte, error) {
	if entities == nil {
		entities = []entity.Entity{}
	}
	data, err := json.Marshal(&entitySetJSON{Entities: entities})
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheWrite, err, "failed to serialize entities")
	}
	return data, nil
}

// DeserializeEntities converts JSON bytes back to an entity set.
func DeserializeEntities(data []byte) ([]entity.Entity, error) {
	var sj entitySetJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheRead, err, "failed to deserialize entities")
	}
	if sj.Entities == nil {
		sj.Entities = []entity.Entity{}
	}
	return sj.Entities, nil
}

// SerializeSetHash converts a fingerprint.SetHash to JSON bytes for storage.
func SerializeSetHash(h *fingerprint.SetHash) ([]byte, error) {
	hj := &setHashJSON{Entities: map[string]string{}}
	if h != nil {
		hj.Root = h.Root
		for k, v := range h.Entities {
			hj.Entities[k] = v
		}
	}
	data, err := json.Marshal(hj)
	if err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheWrite, err, "failed to serialize set hash")
	}
	return data, nil
}

// DeserializeSetHash converts JSON bytes back to a fingerprint.SetHash.
func DeserializeSetHash(data []byte) (*fingerprint.SetHash, error) {
	var hj setHashJSON
	if err := json.Unmarshal(data, &hj); err != nil {
		return nil, alerr.Wrap(alerr.ErrCacheRead, err, "failed to deserialize set hash")
	}
	if hj.Entities == nil {
		hj.Entities = map[string]string{}
	}
	return &fingerprint.SetHash{Root: hj.Root, Entities: hj.Entities}, nil
}
