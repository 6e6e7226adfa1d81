package vectorstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	chromem "github.com/philippgille/chromem-go"
)

// idRegistryFile is the sidecar holding the ids of every stored document.
// chromem can count and fetch by id but not enumerate, so the registry is
// what makes full scans possible across restarts.
const idRegistryFile = "ids.json"

// ChromemIndex is an Index backed by an embedded chromem-go collection
// persisted under a data directory.
type ChromemIndex struct {
	db  *chromem.DB
	col *chromem.Collection

	mu      sync.RWMutex
	ids     map[string]struct{}
	idsPath string
}

// OpenChromem opens (or creates) the persistent collection under dataDir.
// The collection never computes embeddings itself; every vector is supplied
// by the caller, so the embedding hook is wired to fail loudly if anything
// ever reaches it.
func OpenChromem(dataDir, collection string) (*ChromemIndex, error) {
	db, err := chromem.NewPersistentDB(filepath.Join(dataDir, "chromem"), false)
	if err != nil {
		return nil, fmt.Errorf("OpenChromem: open persistent db: %w", err)
	}

	noEmbed := func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embeddings are precomputed; the collection must not embed")
	}
	col, err := db.GetOrCreateCollection(collection, nil, noEmbed)
	if err != nil {
		return nil, fmt.Errorf("OpenChromem: get or create collection %q: %w", collection, err)
	}

	idx := &ChromemIndex{
		db:      db,
		col:     col,
		ids:     make(map[string]struct{}),
		idsPath: filepath.Join(dataDir, idRegistryFile),
	}
	if err := idx.loadIDs(); err != nil {
		return nil, err
	}
	return idx, nil
}

func (x *ChromemIndex) loadIDs() error {
	data, err := os.ReadFile(x.idsPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loadIDs: read id registry: %w", err)
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("loadIDs: decode id registry: %w", err)
	}
	for _, id := range ids {
		x.ids[id] = struct{}{}
	}
	return nil
}

// saveIDs persists the registry. Callers hold the write lock.
func (x *ChromemIndex) saveIDs() error {
	ids := make([]string, 0, len(x.ids))
	for id := range x.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("saveIDs: encode id registry: %w", err)
	}
	if err := os.WriteFile(x.idsPath, data, 0o644); err != nil {
		return fmt.Errorf("saveIDs: write id registry: %w", err)
	}
	return nil
}

// Upsert stores an entry with replace-by-id semantics: an existing document
// under the same id is removed first, then the new one added.
func (x *ChromemIndex) Upsert(ctx context.Context, e Entry) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, exists := x.ids[e.ID]; exists {
		if err := x.col.Delete(ctx, nil, nil, e.ID); err != nil {
			return fmt.Errorf("Upsert: delete prior document %s: %w", e.ID, err)
		}
	}
	err := x.col.AddDocument(ctx, chromem.Document{
		ID:        e.ID,
		Metadata:  e.Metadata,
		Embedding: e.Embedding,
		Content:   e.Narrative,
	})
	if err != nil {
		return fmt.Errorf("Upsert: add document %s: %w", e.ID, err)
	}

	x.ids[e.ID] = struct{}{}
	return x.saveIDs()
}

// Query runs a nearest-neighbor search, returning at most k results that
// match every where pair exactly.
func (x *ChromemIndex) Query(ctx context.Context, embedding []float32, k int, where map[string]string) ([]Result, error) {
	// chromem rejects nResults greater than the collection size.
	if count := x.col.Count(); k > count {
		k = count
	}
	if k <= 0 {
		return nil, nil
	}

	hits, err := x.col.QueryEmbedding(ctx, embedding, k, where, nil)
	if err != nil {
		return nil, fmt.Errorf("Query: query embedding: %w", err)
	}

	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		// The index reports cosine similarity; distance is 1 - similarity,
		// relevance is 1 - distance.
		distance := 1 - float64(h.Similarity)
		results = append(results, Result{
			Entry: Entry{
				ID:        h.ID,
				Embedding: h.Embedding,
				Narrative: h.Content,
				Metadata:  h.Metadata,
			},
			Relevance: 1 - distance,
		})
	}
	return results, nil
}

// GetAll returns every stored entry matching the where pairs, ordered by id.
func (x *ChromemIndex) GetAll(ctx context.Context, where map[string]string) ([]Entry, error) {
	x.mu.RLock()
	ids := make([]string, 0, len(x.ids))
	for id := range x.ids {
		ids = append(ids, id)
	}
	x.mu.RUnlock()
	sort.Strings(ids)

	entries := make([]Entry, 0, len(ids))
	for _, id := range ids {
		doc, err := x.col.GetByID(ctx, id)
		if err != nil {
			// Registry and collection can drift if a crash lands between
			// the two writes; a missing document is skipped, not fatal.
			continue
		}
		if !metadataMatches(doc.Metadata, where) {
			continue
		}
		entries = append(entries, Entry{
			ID:        doc.ID,
			Embedding: doc.Embedding,
			Narrative: doc.Content,
			Metadata:  doc.Metadata,
		})
	}
	return entries, nil
}

func metadataMatches(metadata, where map[string]string) bool {
	for k, v := range where {
		if metadata[k] != v {
			return false
		}
	}
	return true
}

// Count reports the number of stored documents.
func (x *ChromemIndex) Count() int {
	return x.col.Count()
}

// Close flushes the id registry. chromem persists documents on write, so
// there is nothing else to release.
func (x *ChromemIndex) Close() error {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.saveIDs()
}

var _ Index = (*ChromemIndex)(nil)
