// Package resolver turns ambiguous human-typed names (players, teams,
// managers, leagues) into canonical numeric IDs and back, so the
// interaction surface never deals in raw IDs.
package resolver

import (
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/fantasytools/fpl-agent/fpl"
	apperrors "github.com/fantasytools/fpl-agent/internal/errors"
)

// Resolver is the process-wide registry of entity indexes. Player and
// team indexes are rebuilt wholesale whenever the bootstrap cache entry
// refreshes; league and manager indexes are session-scoped and built
// per call from cached account data, using the same Index machinery.
// Snapshot swaps are atomic: readers see the fully-old or fully-new
// index, never a half-built one.
type Resolver struct {
	players atomic.Pointer[Index]
	teams   atomic.Pointer[Index]

	options []IndexOption
	log     zerolog.Logger
}

// New creates an empty resolver. Index options (scorer, threshold)
// apply to every index it builds.
func New(logger zerolog.Logger, options ...IndexOption) *Resolver {
	return &Resolver{options: options, log: logger}
}

// Options returns the index options this resolver builds with, for
// constructing session-scoped indexes that match its tuning.
func (r *Resolver) Options() []IndexOption { return r.options }

// RebuildFromBootstrap replaces the player and team indexes from a
// fresh bootstrap payload.
func (r *Resolver) RebuildFromBootstrap(b *fpl.Bootstrap) {
	teamNames := make(map[int]string, len(b.Teams))
	for _, t := range b.Teams {
		teamNames[t.ID] = t.Name
	}
	positions := make(map[int]string, len(b.ElementTypes))
	for _, et := range b.ElementTypes {
		positions[et.ID] = et.SingularNameShort
	}

	players := make([]Entity, 0, len(b.Elements))
	for _, e := range b.Elements {
		selected, _ := strconv.ParseFloat(e.SelectedByPercent, 64)
		players = append(players, Entity{
			ID:         e.ID,
			Name:       e.WebName,
			Detail:     fmt.Sprintf("%s %s £%.1fm", teamNames[e.Team], positions[e.ElementType], e.Price()),
			Aliases:    []string{e.FullName(), e.SecondName},
			Popularity: selected,
		})
	}

	teams := make([]Entity, 0, len(b.Teams))
	for _, t := range b.Teams {
		teams = append(teams, Entity{
			ID:         t.ID,
			Name:       t.Name,
			Detail:     t.ShortName,
			Aliases:    []string{t.ShortName},
			Popularity: float64(t.Strength),
		})
	}

	r.players.Store(NewIndex(KindPlayer, players, r.options...))
	r.teams.Store(NewIndex(KindTeam, teams, r.options...))
	r.log.Debug().Int("players", len(players)).Int("teams", len(teams)).Msg("name indexes rebuilt")
}

// snapshot returns the current index for a registry-held kind.
func (r *Resolver) snapshot(kind Kind) (*Index, error) {
	var idx *Index
	switch kind {
	case KindPlayer:
		idx = r.players.Load()
	case KindTeam:
		idx = r.teams.Load()
	default:
		return nil, apperrors.Wrapf(apperrors.ErrInternal, "resolver: kind %q is not registry-held", kind)
	}
	if idx == nil {
		return nil, apperrors.Wrapf(apperrors.ErrUpstreamUnavailable, "resolver: no %s index built yet", kind)
	}
	return idx, nil
}

// Resolve matches query against the current snapshot of kind.
func (r *Resolver) Resolve(kind Kind, query string) (Reference, error) {
	idx, err := r.snapshot(kind)
	if err != nil {
		return Reference{}, err
	}
	return idx.Resolve(query)
}

// Rehydrate converts a canonical ID back into display context against
// the current snapshot of kind.
func (r *Resolver) Rehydrate(kind Kind, id int) (Display, error) {
	idx, err := r.snapshot(kind)
	if err != nil {
		return Display{}, err
	}
	return idx.Rehydrate(id)
}
