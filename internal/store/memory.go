package store

import (
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/angelcm/campaign-pulse-go/internal/models"
)

// Kind names a row set held by the store.
type Kind string

const (
	Delivery Kind = "delivery"
	Contract Kind = "contract"
	Pacing   Kind = "pacing"
)

// MemoryStore holds the ingested row sets. Readers get snapshot copies so
// the scoring core can treat its inputs as immutable while ingestion keeps
// running.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[Kind][]models.Row
	seen map[string]struct{} // idempotence per record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows: make(map[Kind][]models.Row),
		seen: make(map[string]struct{}),
	}
}

// MarkSeen records a key and reports whether it was new.
func (s *MemoryStore) MarkSeen(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// Add appends one row. line is the row's ordinal in its source file: a
// re-fetch of the same export is a no-op, while identical rows on different
// lines stay distinct (the core sums duplicates per (date, campaign), it
// never assumes pre-aggregation). Returns false for an already-seen row.
func (s *MemoryStore) Add(kind Kind, r models.Row, line int) bool {
	if !s.MarkSeen(rowKey(kind, r, line)) {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[kind] = append(s.rows[kind], r)
	return true
}

// Replace swaps in a full fresh export for the kind, clearing its seen keys.
func (s *MemoryStore) Replace(kind Kind, rows []models.Row) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[kind] = rows
	prefix := string(kind) + "|"
	for k := range s.seen {
		if strings.HasPrefix(k, prefix) {
			delete(s.seen, k)
		}
	}
}

// Rows returns a snapshot copy of the kind's set.
func (s *MemoryStore) Rows(kind Kind) []models.Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Row, len(s.rows[kind]))
	copy(out, s.rows[kind])
	return out
}

func rowKey(kind Kind, r models.Row, line int) string {
	var b strings.Builder
	b.WriteString(string(kind))
	b.WriteString("|#")
	b.WriteString(strconv.Itoa(line))
	for _, k := range sortedKeys(r) {
		b.WriteString("|")
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(r[k])
	}
	return b.String()
}

func sortedKeys(r models.Row) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
