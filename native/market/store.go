package market

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Store is an ordered, index-addressable collection of escrowed asset
// records. Appends go to the end; removal is by swap-compaction, which moves
// the last record into the vacated slot in O(1) and therefore reorders
// content. An index is valid only until any deletion at or below it within
// the same call; callers must re-fetch indexes between calls.
type Store struct {
	records   []*AssetRecord
	snapshots [][]*AssetRecord
}

// NewStore returns an empty record store.
func NewStore() *Store {
	return &Store{}
}

// Len returns the number of live records.
func (s *Store) Len() uint64 {
	if s == nil {
		return 0
	}
	return uint64(len(s.records))
}

// Append adds a record to the end of the store.
func (s *Store) Append(rec *AssetRecord) error {
	sanitized, err := SanitizeRecord(rec)
	if err != nil {
		return err
	}
	s.records = append(s.records, sanitized)
	return nil
}

// Get returns a copy of the record at index.
func (s *Store) Get(index uint64) (*AssetRecord, error) {
	if index >= s.Len() {
		return nil, ErrIndexOutOfBounds
	}
	return s.records[index].Clone(), nil
}

// SwapDelete removes the record at index by moving the last record into its
// slot and shrinking the store by one. The removed record is returned. Every
// other index held by the caller at or above the last position is invalidated.
func (s *Store) SwapDelete(index uint64) (*AssetRecord, error) {
	length := s.Len()
	if index >= length {
		return nil, ErrIndexOutOfBounds
	}
	removed := s.records[index]
	last := length - 1
	if index != last {
		s.records[index] = s.records[last]
	}
	s.records[last] = nil
	s.records = s.records[:last]
	return removed, nil
}

// SwapDeleteMany removes the records at the supplied indexes, which must be
// in strictly descending order. Each swap-delete can relocate the record that
// used to sit at the last position into an earlier slot, so processing from
// the highest index down is the only order that keeps every remaining index
// in the batch pointing at the caller's intended record.
func (s *Store) SwapDeleteMany(indexes []uint64) ([]*AssetRecord, error) {
	if err := requireDescending(indexes); err != nil {
		return nil, err
	}
	removed := make([]*AssetRecord, 0, len(indexes))
	for _, index := range indexes {
		rec, err := s.SwapDelete(index)
		if err != nil {
			return nil, err
		}
		removed = append(removed, rec)
	}
	return removed, nil
}

// FindIndex scans forward from start and returns the position of the first
// record matching the collection and token id. The scan is unbounded in store
// size and is therefore never called from a state-mutating entry point.
func (s *Store) FindIndex(collection common.Address, tokenID *big.Int, start uint64) (uint64, error) {
	if tokenID == nil {
		return 0, ErrNotFound
	}
	for i := start; i < s.Len(); i++ {
		rec := s.records[i]
		if rec.Collection == collection && rec.TokenID.Cmp(tokenID) == 0 {
			return i, nil
		}
	}
	return 0, ErrNotFound
}

// Records returns a copy of the live records in positional order.
func (s *Store) Records() []*AssetRecord {
	out := make([]*AssetRecord, len(s.records))
	for i, rec := range s.records {
		out[i] = rec.Clone()
	}
	return out
}

// Restore replaces the store content, discarding any open snapshots. Used
// when loading persisted state.
func (s *Store) Restore(records []*AssetRecord) error {
	replacement := make([]*AssetRecord, 0, len(records))
	for _, rec := range records {
		sanitized, err := SanitizeRecord(rec)
		if err != nil {
			return err
		}
		replacement = append(replacement, sanitized)
	}
	s.records = replacement
	s.snapshots = nil
	return nil
}

// Snapshot captures the current content and returns a handle for
// RevertToSnapshot. Records are immutable, so the capture is a shallow copy.
func (s *Store) Snapshot() int {
	copied := make([]*AssetRecord, len(s.records))
	copy(copied, s.records)
	s.snapshots = append(s.snapshots, copied)
	return len(s.snapshots) - 1
}

// RevertToSnapshot restores the content captured by the given handle and
// discards it along with any later snapshots.
func (s *Store) RevertToSnapshot(id int) {
	if id < 0 || id >= len(s.snapshots) {
		return
	}
	s.records = s.snapshots[id]
	s.snapshots = s.snapshots[:id]
}

// DiscardSnapshot drops the given handle and any later snapshots without
// reverting, committing the mutations made since.
func (s *Store) DiscardSnapshot(id int) {
	if id < 0 || id >= len(s.snapshots) {
		return
	}
	s.snapshots = s.snapshots[:id]
}

func requireDescending(indexes []uint64) error {
	for i := 1; i < len(indexes); i++ {
		if indexes[i] >= indexes[i-1] {
			return ErrNonMonotonicIndexes
		}
	}
	return nil
}
