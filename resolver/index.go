package resolver

import (
	"sort"

	apperrors "github.com/fantasytools/fpl-agent/internal/errors"
)

// Kind identifies an entity namespace.
type Kind string

const (
	KindPlayer  Kind = "player"
	KindTeam    Kind = "team"
	KindManager Kind = "manager"
	KindLeague  Kind = "league"
)

// Entity is one indexable thing: a player, team, league, or manager.
type Entity struct {
	ID      int
	Name    string   // canonical display name
	Detail  string   // salient context shown on rehydration
	Aliases []string // additional searchable name variants
	// Popularity breaks score ties; higher wins. Selected-by share for
	// players, inverse rank for managers.
	Popularity float64
}

// Candidate is one scored match.
type Candidate struct {
	ID    int
	Name  string
	Score float64
}

// Reference is the result of resolving one query string.
type Reference struct {
	Query      string
	ID         int
	Name       string
	Score      float64
	Alternates []Candidate
}

// Display is the rehydrated form of a canonical ID.
type Display struct {
	ID     int
	Name   string
	Detail string
}

const (
	// DefaultThreshold is the minimum acceptable match score.
	DefaultThreshold = 0.6
	// suggestionFloor is the minimal similarity for a name to appear in
	// NoMatch suggestions.
	suggestionFloor = 0.35
	// maxAlternates bounds the disambiguation list.
	maxAlternates = 5
	// scoreEpsilon is the tolerance for treating two scores as tied.
	scoreEpsilon = 1e-9
)

// Index is an immutable snapshot of one entity kind's names. Indexes
// are rebuilt wholesale and swapped, never mutated, so readers always
// observe a fully-built snapshot.
type Index struct {
	kind      Kind
	byID      map[int]Entity
	byName    map[string][]int
	scorer    Scorer
	threshold float64
}

// IndexOption modifies an Index during construction.
type IndexOption func(*Index)

// WithScorer replaces the matching algorithm.
func WithScorer(s Scorer) IndexOption {
	return func(idx *Index) {
		idx.scorer = s
	}
}

// WithThreshold overrides the minimum acceptable match score.
func WithThreshold(t float64) IndexOption {
	return func(idx *Index) {
		idx.threshold = t
	}
}

// NewIndex builds an index over entities. Aliases normalizing to the
// same string as other entities are kept; the collision surfaces as an
// ambiguous match at resolution time.
func NewIndex(kind Kind, entities []Entity, options ...IndexOption) *Index {
	idx := &Index{
		kind:      kind,
		byID:      make(map[int]Entity, len(entities)),
		byName:    make(map[string][]int),
		scorer:    DefaultScorer{},
		threshold: DefaultThreshold,
	}
	for _, opt := range options {
		opt(idx)
	}

	for _, e := range entities {
		idx.byID[e.ID] = e
		for _, alias := range append([]string{e.Name}, e.Aliases...) {
			n := Normalize(alias)
			if n == "" {
				continue
			}
			if !containsID(idx.byName[n], e.ID) {
				idx.byName[n] = append(idx.byName[n], e.ID)
			}
		}
	}
	return idx
}

// Len reports how many entities the index holds.
func (idx *Index) Len() int { return len(idx.byID) }

// Kind reports the entity namespace this index covers.
func (idx *Index) Kind() Kind { return idx.kind }

// Resolve turns a human-typed name into a canonical ID. An exact
// normalized match wins outright; otherwise every candidate is scored
// and the best above the threshold is returned with next-best
// alternates. Equally-ranked top candidates are surfaced as an
// ambiguous match, never silently picked.
func (idx *Index) Resolve(query string) (Reference, error) {
	nq := Normalize(query)
	if nq == "" {
		return Reference{}, apperrors.Wrapf(apperrors.ErrInvalidQuery, "resolver: empty %s query", idx.kind)
	}

	if ids := idx.byName[nq]; len(ids) > 0 {
		if len(ids) > 1 {
			return Reference{}, &AmbiguousMatchError{
				Kind:       idx.kind,
				Query:      query,
				Candidates: idx.candidates(ids, 1),
			}
		}
		e := idx.byID[ids[0]]
		return Reference{Query: query, ID: e.ID, Name: e.Name, Score: 1}, nil
	}

	scored := idx.scoreAll(nq)
	if len(scored) == 0 || scored[0].Score < idx.threshold {
		return Reference{}, &NoMatchError{
			Kind:       idx.kind,
			Query:      query,
			Alternates: suggestions(scored),
		}
	}

	top := []Candidate{scored[0]}
	for _, c := range scored[1:] {
		if scored[0].Score-c.Score > scoreEpsilon {
			break
		}
		top = append(top, c)
	}
	if len(top) > 1 {
		return Reference{}, &AmbiguousMatchError{Kind: idx.kind, Query: query, Candidates: top}
	}

	var alternates []Candidate
	for _, c := range scored[1:] {
		if c.Score < suggestionFloor || len(alternates) == maxAlternates {
			break
		}
		alternates = append(alternates, c)
	}
	return Reference{
		Query:      query,
		ID:         scored[0].ID,
		Name:       scored[0].Name,
		Score:      scored[0].Score,
		Alternates: alternates,
	}, nil
}

// Rehydrate is a pure lookup from canonical ID back to display context.
func (idx *Index) Rehydrate(id int) (Display, error) {
	e, ok := idx.byID[id]
	if !ok {
		return Display{}, apperrors.Wrapf(apperrors.ErrNotFound, "resolver: %s id %d", idx.kind, id)
	}
	return Display{ID: e.ID, Name: e.Name, Detail: e.Detail}, nil
}

// scoreAll rates every entity against the query, best alias per
// entity, ordered by score, then popularity, then canonical ID.
func (idx *Index) scoreAll(nq string) []Candidate {
	scored := make([]Candidate, 0, len(idx.byID))
	for id, e := range idx.byID {
		best := 0.0
		for _, alias := range append([]string{e.Name}, e.Aliases...) {
			if s := idx.scorer.Score(nq, Normalize(alias)); s > best {
				best = s
			}
		}
		scored = append(scored, Candidate{ID: id, Name: e.Name, Score: best})
	}
	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		pa, pb := idx.byID[a.ID].Popularity, idx.byID[b.ID].Popularity
		if pa != pb {
			return pa > pb
		}
		return a.ID < b.ID
	})
	return scored
}

func (idx *Index) candidates(ids []int, score float64) []Candidate {
	out := make([]Candidate, 0, len(ids))
	for _, id := range ids {
		out = append(out, Candidate{ID: id, Name: idx.byID[id].Name, Score: score})
	}
	sort.Slice(out, func(i, j int) bool {
		pa, pb := idx.byID[out[i].ID].Popularity, idx.byID[out[j].ID].Popularity
		if pa != pb {
			return pa > pb
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func suggestions(scored []Candidate) []Candidate {
	var out []Candidate
	for _, c := range scored {
		if c.Score < suggestionFloor || len(out) == maxAlternates {
			break
		}
		out = append(out, c)
	}
	return out
}

func containsID(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
