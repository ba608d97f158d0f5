// Package peers maintains the in-memory similarity index used for peer
// retrieval: normalized feature vectors over the company corpus, brute-force
// nearest-neighbor search, criteria filtering and industry cohort
// benchmarks.
package peers

import (
	"container/heap"
	"sync"

	"github.com/rotisserie/eris"

	"github.com/sells-group/diligence-cli/internal/model"
	"github.com/sells-group/diligence-cli/internal/vector"
)

// Entry is one stored company with its stable index ID. IDs are assigned
// from an internal sequence at insert time and never reused; they are the
// addressing scheme results expose, so callers never depend on positions.
type Entry struct {
	ID      uint64        `json:"id"`
	Company model.Company `json:"company"`
}

// SearchResult is one nearest-neighbor hit. Similarity is 1/(1+distance):
// strictly decreasing in distance, in (0, 1].
type SearchResult struct {
	ID         uint64        `json:"id"`
	Company    model.Company `json:"company"`
	Distance   float64       `json:"distance"`
	Similarity float64       `json:"similarity"`
}

// Index is an append-only similarity index over company feature vectors.
//
// It has two states. Untrained: no normalization parameters, no vectors;
// Search returns nothing. Trained: entered by the first non-empty Add,
// which fits the normalizer on exactly that batch and freezes it. Every
// later batch is normalized with the frozen parameters, so all stored
// vectors share one coordinate system. There is no deletion and no re-fit;
// re-fitting would silently move stored vectors relative to new ones.
//
// One RWMutex serializes Add/SaveSnapshot/LoadSnapshot against the read
// operations, so a reader either sees the Untrained index or the fully
// trained one, never a half-applied transition.
type Index struct {
	mu      sync.RWMutex
	encoder vector.Encoder
	scaler  *vector.Scaler

	companies []model.Company
	vectors   []vector.Vector
	ids       []uint64
	nextID    uint64
}

// New returns an empty index anchored at the current year.
func New() *Index {
	return NewAt(0)
}

// NewAt returns an empty index with a fixed reference year for the
// company-age feature. Year 0 means the current year.
func NewAt(referenceYear int) *Index {
	return &Index{
		encoder: vector.NewEncoder(referenceYear),
		scaler:  vector.NewScaler(),
		nextID:  1,
	}
}

// Trained reports whether normalization parameters have been fitted.
func (idx *Index) Trained() bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.scaler.Fitted()
}

// Count returns the number of stored companies.
func (idx *Index) Count() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.companies)
}

// ReferenceYear returns the year anchoring the company-age feature.
func (idx *Index) ReferenceYear() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.encoder.ReferenceYear
}

// Add appends companies to the index. The first non-empty call fits the
// normalizer on exactly this batch and flips the index to Trained; later
// calls reuse the frozen parameters. An empty batch is a no-op.
func (idx *Index) Add(companies []model.Company) error {
	if len(companies) == 0 {
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	vecs := idx.encoder.EncodeAll(companies)

	if !idx.scaler.Fitted() {
		if err := idx.scaler.Fit(vecs); err != nil {
			return eris.Wrap(err, "peers: fit normalizer")
		}
	}
	scaled := idx.scaler.TransformAll(vecs)

	idx.companies = append(idx.companies, companies...)
	idx.vectors = append(idx.vectors, scaled...)
	for range companies {
		idx.ids = append(idx.ids, idx.nextID)
		idx.nextID++
	}
	return nil
}

// Search returns the k stored companies nearest to query, ordered by
// ascending squared Euclidean distance with ties broken by insertion
// order. An Untrained index and k <= 0 both return nil; k larger than the
// corpus returns every stored company.
func (idx *Index) Search(query model.Company, k int) []SearchResult {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if !idx.scaler.Fitted() || k <= 0 {
		return nil
	}
	if k > len(idx.vectors) {
		k = len(idx.vectors)
	}

	q := idx.scaler.Transform(idx.encoder.Encode(query))

	// Bounded max-heap: the root is the worst candidate kept so far, so
	// each better hit replaces it in O(log k).
	// Ties keep the earlier entry: iteration runs in insertion order and
	// only a strictly smaller distance evicts the root.
	h := make(resultHeap, 0, k)
	for i, v := range idx.vectors {
		d := vector.SquaredL2(q, v)
		switch {
		case len(h) < k:
			heap.Push(&h, candidate{pos: i, distance: d})
		case d < h[0].distance:
			h[0] = candidate{pos: i, distance: d}
			heap.Fix(&h, 0)
		}
	}

	// Pop worst-first and fill backwards to get ascending distance.
	results := make([]SearchResult, len(h))
	for i := len(results) - 1; i >= 0; i-- {
		c := heap.Pop(&h).(candidate)
		results[i] = SearchResult{
			ID:         idx.ids[c.pos],
			Company:    idx.companies[c.pos],
			Distance:   c.distance,
			Similarity: 1 / (1 + c.distance),
		}
	}
	return results
}

type candidate struct {
	pos      int
	distance float64
}

// resultHeap is a max-heap on distance, with insertion order (position)
// breaking ties so that Pop yields the worst candidate deterministically.
type resultHeap []candidate

func (h resultHeap) Len() int { return len(h) }

func (h resultHeap) Less(i, j int) bool {
	if h[i].distance != h[j].distance {
		return h[i].distance > h[j].distance
	}
	return h[i].pos > h[j].pos
}

func (h resultHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *resultHeap) Push(x any) {
	*h = append(*h, x.(candidate))
}

func (h *resultHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
