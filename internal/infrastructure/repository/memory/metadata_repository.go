package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/metadata"
)

type MetadataRepository struct {
	mu    sync.RWMutex
	items map[int]metadata.Record
}

func NewMetadataRepository(records []metadata.Record) *MetadataRepository {
	items := make(map[int]metadata.Record, len(records))
	for _, record := range records {
		if record.PokemonID > 0 {
			items[record.PokemonID] = cloneRecord(record)
		}
	}

	return &MetadataRepository{items: items}
}

func (r *MetadataRepository) ListByNames(_ context.Context, names []string) ([]metadata.Record, error) {
	wanted := make(map[string]struct{}, len(names)*2)
	for _, name := range names {
		if key := metadata.NormalizeName(name); key != "" {
			wanted[key] = struct{}{}
			wanted[metadata.Slug(name)] = struct{}{}
		}
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]metadata.Record, 0, len(names))
	for _, record := range r.items {
		_, byName := wanted[metadata.NormalizeName(record.Name)]
		_, bySlug := wanted[strings.ToLower(record.Slug)]
		if byName || bySlug {
			out = append(out, cloneRecord(record))
		}
	}
	sortRecords(out)

	return out, nil
}

func (r *MetadataRepository) ListByIDs(_ context.Context, ids []int) ([]metadata.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]metadata.Record, 0, len(ids))
	for _, pokemonID := range slices.Compact(slices.Sorted(slices.Values(ids))) {
		if record, ok := r.items[pokemonID]; ok {
			out = append(out, cloneRecord(record))
		}
	}

	return out, nil
}

func (r *MetadataRepository) ListCompleteIDs(_ context.Context, fromID, toID int) (map[int]struct{}, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[int]struct{})
	for pokemonID, record := range r.items {
		if pokemonID >= fromID && pokemonID <= toID && record.IsComplete() {
			out[pokemonID] = struct{}{}
		}
	}

	return out, nil
}

// Upsert keeps the first stored display name and overwrites everything else.
func (r *MetadataRepository) Upsert(_ context.Context, record metadata.Record) error {
	if !record.HasTypes() {
		return metadata.ErrEmptyTypes
	}
	if record.PokemonID <= 0 {
		return fmt.Errorf("metadata record %q has no pokemon id", record.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.items[record.PokemonID]; ok && strings.TrimSpace(existing.Name) != "" {
		record.Name = existing.Name
	}
	r.items[record.PokemonID] = cloneRecord(record)

	return nil
}

func (r *MetadataRepository) Get(pokemonID int) (metadata.Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.items[pokemonID]
	return cloneRecord(record), ok
}

func cloneRecord(record metadata.Record) metadata.Record {
	record.Types = slices.Clone(record.Types)
	return record
}

func sortRecords(records []metadata.Record) {
	slices.SortFunc(records, func(a, b metadata.Record) int {
		return a.PokemonID - b.PokemonID
	})
}
