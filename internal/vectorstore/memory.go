package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"
)

// Memory is a brute-force cosine similarity store with the same filter
// semantics as PGVector. It backs tests and local development runs that
// have no Postgres available.
type Memory struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]Record)}
}

func (s *Memory) Upsert(ctx context.Context, records []Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		vec := make([]float32, len(r.Vector))
		copy(vec, r.Vector)
		r.Vector = vec
		s.records[r.ID] = r
	}
	return nil
}

func (s *Memory) Query(ctx context.Context, vector []float32, topK int, filter Filter) ([]Match, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = 5
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []Match
	for _, r := range s.records {
		if !filter.matches(r) {
			continue
		}
		matches = append(matches, Match{
			ID:         r.ID,
			Score:      cosine(vector, r.Vector),
			UserID:     r.UserID,
			DocumentID: r.DocumentID,
			ChunkIndex: r.ChunkIndex,
			Source:     r.Source,
			Content:    r.Content,
		})
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (s *Memory) Delete(ctx context.Context, filter Filter) (int64, error) {
	if err := filter.Validate(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	for id, r := range s.records {
		if filter.matches(r) {
			delete(s.records, id)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of stored records.
func (s *Memory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (f Filter) matches(r Record) bool {
	if r.UserID != f.UserID {
		return false
	}
	if f.DocumentID != "" && r.DocumentID != f.DocumentID {
		return false
	}
	if f.ChunkIndexGTE != nil && r.ChunkIndex < *f.ChunkIndexGTE {
		return false
	}
	return true
}

func cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
