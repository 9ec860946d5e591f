package service

import (
	"context"
	"sort"
	"strconv"

	"github.com/fantasytools/fpl-agent/fpl"
	apperrors "github.com/fantasytools/fpl-agent/internal/errors"
	"github.com/fantasytools/fpl-agent/resolver"
)

// PlayerCard is one player rehydrated with team and position names.
type PlayerCard struct {
	ID            int
	Name          string
	FullName      string
	Team          string
	TeamShort     string
	Position      string
	Price         float64
	Form          string
	PointsPerGame string
	TotalPoints   int
	Minutes       int
	Goals         int
	Assists       int
	CleanSheets   int
	Bonus         int
	Status        string
	News          string
	SelectedBy    string
}

// PlayerReport is the result of resolving one player name.
type PlayerReport struct {
	Player     PlayerCard
	Alternates []resolver.Candidate
	Stale      bool
}

// playerCard hydrates an element with team/position names from the
// bootstrap it came from.
func playerCard(b *fpl.Bootstrap, e *fpl.Element) PlayerCard {
	teams := make(map[int]fpl.Team, len(b.Teams))
	for _, t := range b.Teams {
		teams[t.ID] = t
	}
	positions := make(map[int]string, len(b.ElementTypes))
	for _, et := range b.ElementTypes {
		positions[et.ID] = et.SingularNameShort
	}
	return PlayerCard{
		ID:            e.ID,
		Name:          e.WebName,
		FullName:      e.FullName(),
		Team:          teams[e.Team].Name,
		TeamShort:     teams[e.Team].ShortName,
		Position:      positions[e.ElementType],
		Price:         e.Price(),
		Form:          e.Form,
		PointsPerGame: e.PointsPerGame,
		TotalPoints:   e.TotalPoints,
		Minutes:       e.Minutes,
		Goals:         e.GoalsScored,
		Assists:       e.Assists,
		CleanSheets:   e.CleanSheets,
		Bonus:         e.Bonus,
		Status:        e.Status,
		News:          e.News,
		SelectedBy:    e.SelectedByPercent,
	}
}

func elementByID(b *fpl.Bootstrap, id int) (*fpl.Element, error) {
	for i := range b.Elements {
		if b.Elements[i].ID == id {
			return &b.Elements[i], nil
		}
	}
	return nil, apperrors.Wrapf(apperrors.ErrNotFound, "service: element %d", id)
}

// FindPlayer resolves a player name and returns their card. Resolver
// failures (no match, ambiguity) propagate as typed errors carrying
// alternates for the caller to present.
func (s *Service) FindPlayer(ctx context.Context, query string) (*PlayerReport, error) {
	b, ref, stale, err := s.resolvePlayer(ctx, query)
	if err != nil {
		return nil, err
	}
	e, err := elementByID(b, ref.ID)
	if err != nil {
		return nil, err
	}
	return &PlayerReport{
		Player:     playerCard(b, e),
		Alternates: ref.Alternates,
		Stale:      stale,
	}, nil
}

// GWFixture is one upcoming fixture rehydrated with the opponent name.
type GWFixture struct {
	Gameweek   int
	Opponent   string
	Home       bool
	Difficulty int
}

// GWHistory is one past gameweek rehydrated with the opponent name.
type GWHistory struct {
	Round       int
	Opponent    string
	Home        bool
	Points      int
	Minutes     int
	Goals       int
	Assists     int
	CleanSheets int
	Bonus       int
}

// PastSeason is a prior season's totals.
type PastSeason struct {
	Season    string
	Points    int
	Minutes   int
	Goals     int
	Assists   int
	StartCost float64
	EndCost   float64
}

// PlayerSummaryReport combines a player's card with fixtures and
// history from the per-player detail endpoint.
type PlayerSummaryReport struct {
	Player      PlayerCard
	Fixtures    []GWFixture
	History     []GWHistory
	PastSeasons []PastSeason
	Stale       bool
}

// PlayerSummary resolves a player name and returns upcoming fixtures,
// recent gameweek history, and past seasons, with opponent IDs
// rehydrated to team names.
func (s *Service) PlayerSummary(ctx context.Context, query string) (*PlayerSummaryReport, error) {
	b, ref, stale, err := s.resolvePlayer(ctx, query)
	if err != nil {
		return nil, err
	}
	e, err := elementByID(b, ref.ID)
	if err != nil {
		return nil, err
	}
	sum, sumStale, err := s.elementSummary(ctx, ref.ID)
	if err != nil {
		return nil, err
	}

	short := make(map[int]string, len(b.Teams))
	for _, t := range b.Teams {
		short[t.ID] = t.ShortName
	}

	report := &PlayerSummaryReport{
		Player: playerCard(b, e),
		Stale:  stale || sumStale,
	}
	for _, f := range sum.Fixtures {
		opponent := f.TeamH
		if f.IsHome {
			opponent = f.TeamA
		}
		report.Fixtures = append(report.Fixtures, GWFixture{
			Gameweek:   f.Event,
			Opponent:   short[opponent],
			Home:       f.IsHome,
			Difficulty: f.Difficulty,
		})
	}
	for _, h := range sum.History {
		report.History = append(report.History, GWHistory{
			Round:       h.Round,
			Opponent:    short[h.OpponentTeam],
			Home:        h.WasHome,
			Points:      h.TotalPoints,
			Minutes:     h.Minutes,
			Goals:       h.GoalsScored,
			Assists:     h.Assists,
			CleanSheets: h.CleanSheets,
			Bonus:       h.Bonus,
		})
	}
	for _, p := range sum.HistoryPast {
		report.PastSeasons = append(report.PastSeasons, PastSeason{
			Season:    p.SeasonName,
			Points:    p.TotalPoints,
			Minutes:   p.Minutes,
			Goals:     p.GoalsScored,
			Assists:   p.Assists,
			StartCost: float64(p.StartCost) / 10,
			EndCost:   float64(p.EndCost) / 10,
		})
	}
	return report, nil
}

// ComparisonReport holds the cards of players compared side by side.
type ComparisonReport struct {
	Players []PlayerCard
	Stale   bool
}

// ComparePlayers resolves 2-5 player names and returns their cards in
// query order. Any unresolvable or ambiguous name fails the whole call.
func (s *Service) ComparePlayers(ctx context.Context, queries []string) (*ComparisonReport, error) {
	if len(queries) < 2 || len(queries) > 5 {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidQuery, "service: compare needs 2-5 players, got %d", len(queries))
	}
	report := &ComparisonReport{}
	for _, q := range queries {
		b, ref, stale, err := s.resolvePlayer(ctx, q)
		if err != nil {
			return nil, err
		}
		e, err := elementByID(b, ref.ID)
		if err != nil {
			return nil, err
		}
		report.Players = append(report.Players, playerCard(b, e))
		report.Stale = report.Stale || stale
	}
	return report, nil
}

// TopPlayersReport lists the best players per position by points per game.
type TopPlayersReport struct {
	Positions map[string][]PlayerCard
	Stale     bool
}

// TopPlayers returns the top goalkeepers (3) and outfield players (10
// per position) ranked by points per game among players with minutes.
func (s *Service) TopPlayers(ctx context.Context) (*TopPlayersReport, error) {
	b, stale, err := s.bootstrap(ctx)
	if err != nil {
		return nil, err
	}

	byPosition := make(map[int][]fpl.Element)
	for _, e := range b.Elements {
		if e.Minutes == 0 {
			continue
		}
		byPosition[e.ElementType] = append(byPosition[e.ElementType], e)
	}

	report := &TopPlayersReport{Positions: make(map[string][]PlayerCard), Stale: stale}
	for _, et := range b.ElementTypes {
		elems := byPosition[et.ID]
		sort.Slice(elems, func(i, j int) bool {
			pi, _ := strconv.ParseFloat(elems[i].PointsPerGame, 64)
			pj, _ := strconv.ParseFloat(elems[j].PointsPerGame, 64)
			return pi > pj
		})
		limit := 10
		if et.SingularNameShort == "GKP" {
			limit = 3
		}
		if len(elems) < limit {
			limit = len(elems)
		}
		for i := 0; i < limit; i++ {
			report.Positions[et.SingularNameShort] = append(report.Positions[et.SingularNameShort], playerCard(b, &elems[i]))
		}
	}
	return report, nil
}
