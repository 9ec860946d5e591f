// Package service is the request orchestrator: every operation resolves
// name-shaped inputs through the resolver, fetches data through the TTL
// cache, attaches the caller's session where the upstream requires a
// credential, and rehydrates IDs in results before returning. It holds
// no state of its own.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/fantasytools/fpl-agent/auth"
	"github.com/fantasytools/fpl-agent/cache"
	"github.com/fantasytools/fpl-agent/fpl"
	"github.com/fantasytools/fpl-agent/fplclient"
	"github.com/fantasytools/fpl-agent/internal/config"
	apperrors "github.com/fantasytools/fpl-agent/internal/errors"
	"github.com/fantasytools/fpl-agent/resolver"
)

// Upstream is the slice of fplclient.Client the orchestrator needs.
type Upstream interface {
	Bootstrap(ctx context.Context) (json.RawMessage, error)
	Fixtures(ctx context.Context) (json.RawMessage, error)
	ElementSummary(ctx context.Context, elementID int) (json.RawMessage, error)
	Entry(ctx context.Context, entryID int) (json.RawMessage, error)
	EventPicks(ctx context.Context, entryID, gameweek int) (json.RawMessage, error)
	LeagueStandings(ctx context.Context, leagueID, page int) (json.RawMessage, error)
	MyTeam(ctx context.Context, credential *oauth2.Token, entryID int) (*fpl.MyTeam, error)
	ExecuteTransfers(ctx context.Context, credential *oauth2.Token, payload *fpl.TransferPayload) (json.RawMessage, error)
}

var _ Upstream = (*fplclient.Client)(nil)

// Service coordinates the cache, session store, resolver, and upstream
// client behind one façade for the tool layer.
type Service struct {
	client   Upstream
	cache    *cache.Store
	sessions *auth.Store
	names    *resolver.Resolver
	cfg      *config.Config
	nowTime  func() time.Time
	log      zerolog.Logger

	// lastBootstrap tracks which cache round the name indexes were
	// built from, so a cache hit does not trigger a rebuild. rebuildMu
	// serializes rebuilds: the marker only advances after the new
	// indexes are stored, and concurrent callers wait instead of
	// racing past a rebuild still in flight.
	rebuildMu     sync.Mutex
	lastBootstrap int64
}

// Option modifies a Service during construction.
type Option func(*Service)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Service) {
		s.nowTime = nowFunc
	}
}

// New wires the orchestrator's dependencies together.
func New(client Upstream, cacheStore *cache.Store, sessions *auth.Store, names *resolver.Resolver, cfg *config.Config, logger zerolog.Logger, options ...Option) *Service {
	s := &Service{
		client:   client,
		cache:    cacheStore,
		sessions: sessions,
		names:    names,
		cfg:      cfg,
		nowTime:  time.Now,
		log:      logger,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Sessions exposes the session store for the login channel and tools.
func (s *Service) Sessions() *auth.Store { return s.sessions }

const (
	keyBootstrap = "bootstrap-static"
	keyFixtures  = "fixtures"
)

// bootstrap returns the bulk reference dataset through the cache and
// keeps the name indexes in step with it.
func (s *Service) bootstrap(ctx context.Context) (*fpl.Bootstrap, bool, error) {
	raw, stale, err := s.cache.GetOrFetch(ctx, keyBootstrap, s.cfg.BootstrapTTL, s.client.Bootstrap)
	if err != nil {
		return nil, false, err
	}
	var b fpl.Bootstrap
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, false, apperrors.Wrapf(err, "service: decode bootstrap")
	}

	if info, ok := s.cache.GetInfo(keyBootstrap); ok {
		round := info.FetchedAt.UnixNano()
		s.rebuildMu.Lock()
		if s.lastBootstrap != round {
			s.names.RebuildFromBootstrap(&b)
			s.lastBootstrap = round
		}
		s.rebuildMu.Unlock()
	}
	return &b, stale, nil
}

// fixtures returns the season fixture list through the cache.
func (s *Service) fixtures(ctx context.Context) ([]fpl.Fixture, bool, error) {
	raw, stale, err := s.cache.GetOrFetch(ctx, keyFixtures, s.cfg.BootstrapTTL, s.client.Fixtures)
	if err != nil {
		return nil, false, err
	}
	var fixtures []fpl.Fixture
	if err := json.Unmarshal(raw, &fixtures); err != nil {
		return nil, false, apperrors.Wrapf(err, "service: decode fixtures")
	}
	return fixtures, stale, nil
}

// entry returns a manager's account page through the cache.
func (s *Service) entry(ctx context.Context, entryID int) (*fpl.Entry, bool, error) {
	key := fmt.Sprintf("entry/%d", entryID)
	raw, stale, err := s.cache.GetOrFetch(ctx, key, s.cfg.StandingsTTL, func(ctx context.Context) (json.RawMessage, error) {
		return s.client.Entry(ctx, entryID)
	})
	if err != nil {
		return nil, false, err
	}
	var e fpl.Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, false, apperrors.Wrapf(err, "service: decode entry %d", entryID)
	}
	return &e, stale, nil
}

// standings returns one league table page through the cache.
func (s *Service) standings(ctx context.Context, leagueID, page int) (*fpl.LeagueStandings, bool, error) {
	key := fmt.Sprintf("leagues-classic/%d/standings/%d", leagueID, page)
	raw, stale, err := s.cache.GetOrFetch(ctx, key, s.cfg.StandingsTTL, func(ctx context.Context) (json.RawMessage, error) {
		return s.client.LeagueStandings(ctx, leagueID, page)
	})
	if err != nil {
		return nil, false, err
	}
	var st fpl.LeagueStandings
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, false, apperrors.Wrapf(err, "service: decode standings for league %d", leagueID)
	}
	return &st, stale, nil
}

// elementSummary returns one player's detail payload through the cache.
func (s *Service) elementSummary(ctx context.Context, elementID int) (*fpl.ElementSummary, bool, error) {
	key := fmt.Sprintf("element-summary/%d", elementID)
	raw, stale, err := s.cache.GetOrFetch(ctx, key, s.cfg.SummaryTTL, func(ctx context.Context) (json.RawMessage, error) {
		return s.client.ElementSummary(ctx, elementID)
	})
	if err != nil {
		return nil, false, err
	}
	var sum fpl.ElementSummary
	if err := json.Unmarshal(raw, &sum); err != nil {
		return nil, false, apperrors.Wrapf(err, "service: decode element summary %d", elementID)
	}
	return &sum, stale, nil
}

// eventPicks returns a manager's gameweek team through the cache.
func (s *Service) eventPicks(ctx context.Context, entryID, gameweek int) (*fpl.EventPicks, bool, error) {
	key := fmt.Sprintf("entry/%d/event/%d/picks", entryID, gameweek)
	raw, stale, err := s.cache.GetOrFetch(ctx, key, s.cfg.StandingsTTL, func(ctx context.Context) (json.RawMessage, error) {
		return s.client.EventPicks(ctx, entryID, gameweek)
	})
	if err != nil {
		return nil, false, err
	}
	var picks fpl.EventPicks
	if err := json.Unmarshal(raw, &picks); err != nil {
		return nil, false, apperrors.Wrapf(err, "service: decode picks for entry %d gw %d", entryID, gameweek)
	}
	return &picks, stale, nil
}

// resolvePlayer resolves a player name against the current bootstrap.
// The bootstrap fetch is forced first so the index exists and is in
// step with the cached data.
func (s *Service) resolvePlayer(ctx context.Context, query string) (*fpl.Bootstrap, resolver.Reference, bool, error) {
	b, stale, err := s.bootstrap(ctx)
	if err != nil {
		return nil, resolver.Reference{}, false, err
	}
	ref, err := s.names.Resolve(resolver.KindPlayer, query)
	if err != nil {
		return nil, resolver.Reference{}, stale, err
	}
	return b, ref, stale, nil
}

// resolveTeam resolves a club name against the current bootstrap.
func (s *Service) resolveTeam(ctx context.Context, query string) (*fpl.Bootstrap, resolver.Reference, bool, error) {
	b, stale, err := s.bootstrap(ctx)
	if err != nil {
		return nil, resolver.Reference{}, false, err
	}
	ref, err := s.names.Resolve(resolver.KindTeam, query)
	if err != nil {
		return nil, resolver.Reference{}, stale, err
	}
	return b, ref, stale, nil
}

// leagueIndex builds the session-scoped league index from the caller's
// entry page. League names are private to the account, so the index is
// built per call rather than held in the process-wide registry.
func (s *Service) leagueIndex(ctx context.Context, entryID int) (*resolver.Index, bool, error) {
	e, stale, err := s.entry(ctx, entryID)
	if err != nil {
		return nil, false, err
	}
	entities := make([]resolver.Entity, 0, len(e.Leagues.Classic))
	for _, l := range e.Leagues.Classic {
		entities = append(entities, resolver.Entity{
			ID:         l.ID,
			Name:       l.Name,
			Detail:     fmt.Sprintf("rank %d of %d", l.EntryRank, l.RankCount),
			Popularity: float64(-l.EntryRank),
		})
	}
	return resolver.NewIndex(resolver.KindLeague, entities, s.names.Options()...), stale, nil
}

// managerIndex builds the league-scoped manager index from the first
// standings page.
func (s *Service) managerIndex(ctx context.Context, leagueID int) (*resolver.Index, bool, error) {
	st, stale, err := s.standings(ctx, leagueID, 1)
	if err != nil {
		return nil, false, err
	}
	entities := make([]resolver.Entity, 0, len(st.Standings.Results))
	for _, row := range st.Standings.Results {
		entities = append(entities, resolver.Entity{
			ID:         row.Entry,
			Name:       row.PlayerName,
			Detail:     row.EntryName,
			Aliases:    []string{row.EntryName},
			Popularity: float64(-row.Rank),
		})
	}
	return resolver.NewIndex(resolver.KindManager, entities, s.names.Options()...), stale, nil
}
