package service

import (
	"context"

	"github.com/fantasytools/fpl-agent/fpl"
	apperrors "github.com/fantasytools/fpl-agent/internal/errors"
	"github.com/fantasytools/fpl-agent/resolver"
)

// resolveLeague resolves a league name inside the caller's own leagues.
func (s *Service) resolveLeague(ctx context.Context, entryID int, query string) (resolver.Reference, bool, error) {
	idx, stale, err := s.leagueIndex(ctx, entryID)
	if err != nil {
		return resolver.Reference{}, false, err
	}
	ref, err := idx.Resolve(query)
	return ref, stale, err
}

// resolveManager resolves a manager name inside one league's standings.
func (s *Service) resolveManager(ctx context.Context, leagueID int, query string) (resolver.Reference, bool, error) {
	idx, stale, err := s.managerIndex(ctx, leagueID)
	if err != nil {
		return resolver.Reference{}, false, err
	}
	ref, err := idx.Resolve(query)
	return ref, stale, err
}

// StandingsReport is one page of a league table.
type StandingsReport struct {
	League  string
	Page    int
	HasNext bool
	Rows    []fpl.StandingEntry
	Stale   bool
}

// LeagueStandings resolves a league name among the caller's leagues and
// returns one standings page.
func (s *Service) LeagueStandings(ctx context.Context, requestID, leagueQuery string, page int) (*StandingsReport, error) {
	session, err := s.sessions.RequireActive(requestID)
	if err != nil {
		return nil, err
	}
	if page <= 0 {
		page = 1
	}
	ref, idxStale, err := s.resolveLeague(ctx, session.EntryID, leagueQuery)
	if err != nil {
		return nil, err
	}
	st, stale, err := s.standings(ctx, ref.ID, page)
	if err != nil {
		return nil, err
	}
	return &StandingsReport{
		League:  st.League.Name,
		Page:    st.Standings.Page,
		HasNext: st.Standings.HasNext,
		Rows:    st.Standings.Results,
		Stale:   idxStale || stale,
	}, nil
}

// ManagerTeamReport is one manager's gameweek team, rehydrated.
type ManagerTeamReport struct {
	Manager       string
	TeamName      string
	Gameweek      int
	Points        int
	TotalPoints   int
	OverallRank   int
	TeamValue     float64
	Bank          float64
	Transfers     int
	TransfersCost int
	PointsOnBench int
	ActiveChip    string
	Picks         []SquadPick
	AutoSubs      [][2]string // player out, player in
	Stale         bool
}

// ManagerGameweekTeam resolves a league and a manager inside it, then
// returns that manager's picks for one gameweek with every element ID
// rehydrated to a player name.
func (s *Service) ManagerGameweekTeam(ctx context.Context, requestID, leagueQuery, managerQuery string, gameweek int) (*ManagerTeamReport, error) {
	session, err := s.sessions.RequireActive(requestID)
	if err != nil {
		return nil, err
	}
	leagueRef, lStale, err := s.resolveLeague(ctx, session.EntryID, leagueQuery)
	if err != nil {
		return nil, err
	}
	managerRef, mStale, err := s.resolveManager(ctx, leagueRef.ID, managerQuery)
	if err != nil {
		return nil, err
	}
	return s.managerTeam(ctx, managerRef, gameweek, lStale || mStale)
}

func (s *Service) managerTeam(ctx context.Context, managerRef resolver.Reference, gameweek int, stale bool) (*ManagerTeamReport, error) {
	picks, pStale, err := s.eventPicks(ctx, managerRef.ID, gameweek)
	if err != nil {
		return nil, err
	}
	b, bStale, err := s.bootstrap(ctx)
	if err != nil {
		return nil, err
	}

	report := &ManagerTeamReport{
		Manager:       managerRef.Name,
		Gameweek:      gameweek,
		Points:        picks.EntryHistory.Points,
		TotalPoints:   picks.EntryHistory.TotalPoints,
		OverallRank:   picks.EntryHistory.OverallRank,
		TeamValue:     float64(picks.EntryHistory.Value) / 10,
		Bank:          float64(picks.EntryHistory.Bank) / 10,
		Transfers:     picks.EntryHistory.EventTransfers,
		TransfersCost: picks.EntryHistory.EventTransfersCost,
		PointsOnBench: picks.EntryHistory.PointsOnBench,
		Stale:         stale || pStale || bStale,
	}
	if picks.ActiveChip != nil {
		report.ActiveChip = *picks.ActiveChip
	}
	if entry, eStale, err := s.entry(ctx, managerRef.ID); err == nil {
		report.TeamName = entry.Name
		report.Stale = report.Stale || eStale
	}
	for _, pick := range picks.Picks {
		e, err := elementByID(b, pick.Element)
		if err != nil {
			return nil, err
		}
		report.Picks = append(report.Picks, SquadPick{
			Player:       playerCard(b, e),
			Position:     pick.Position,
			SellingPrice: float64(pick.SellingPrice) / 10,
			Captain:      pick.IsCaptain,
			ViceCaptain:  pick.IsViceCaptain,
		})
	}
	for _, sub := range picks.AutomaticSubs {
		out, err := s.names.Rehydrate(resolver.KindPlayer, sub.ElementOut)
		if err != nil {
			return nil, err
		}
		in, err := s.names.Rehydrate(resolver.KindPlayer, sub.ElementIn)
		if err != nil {
			return nil, err
		}
		report.AutoSubs = append(report.AutoSubs, [2]string{out.Name, in.Name})
	}
	return report, nil
}

// ManagerComparison compares managers' gameweek teams side by side.
type ManagerComparison struct {
	Gameweek int
	Teams    []ManagerTeamReport
	Captains map[string]string // manager -> captain player name
	Common   []string          // players in every starting XI
	Unique   map[string][]string
	Stale    bool
}

// CompareManagers resolves 2-4 manager names inside one league and
// compares their teams for a gameweek. Every name must resolve
// unambiguously or the whole call fails with the resolver's error.
func (s *Service) CompareManagers(ctx context.Context, requestID, leagueQuery string, managerQueries []string, gameweek int) (*ManagerComparison, error) {
	if len(managerQueries) < 2 || len(managerQueries) > 4 {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidQuery, "service: compare needs 2-4 managers, got %d", len(managerQueries))
	}
	session, err := s.sessions.RequireActive(requestID)
	if err != nil {
		return nil, err
	}
	leagueRef, lStale, err := s.resolveLeague(ctx, session.EntryID, leagueQuery)
	if err != nil {
		return nil, err
	}

	comparison := &ManagerComparison{
		Gameweek: gameweek,
		Captains: make(map[string]string),
		Unique:   make(map[string][]string),
		Stale:    lStale,
	}
	starters := make(map[string]map[string]bool)
	for _, q := range managerQueries {
		managerRef, mStale, err := s.resolveManager(ctx, leagueRef.ID, q)
		if err != nil {
			return nil, err
		}
		team, err := s.managerTeam(ctx, managerRef, gameweek, mStale)
		if err != nil {
			return nil, err
		}
		comparison.Teams = append(comparison.Teams, *team)
		comparison.Stale = comparison.Stale || team.Stale

		xi := make(map[string]bool)
		for _, pick := range team.Picks {
			if pick.Position <= 11 {
				xi[pick.Player.Name] = true
			}
			if pick.Captain {
				comparison.Captains[team.Manager] = pick.Player.Name
			}
		}
		starters[team.Manager] = xi
	}

	for _, team := range comparison.Teams {
		for name := range starters[team.Manager] {
			inAll, inOther := true, false
			for _, other := range comparison.Teams {
				if other.Manager == team.Manager {
					continue
				}
				if starters[other.Manager][name] {
					inOther = true
				} else {
					inAll = false
				}
			}
			if inAll && team.Manager == comparison.Teams[0].Manager {
				comparison.Common = append(comparison.Common, name)
			}
			if !inOther {
				comparison.Unique[team.Manager] = append(comparison.Unique[team.Manager], name)
			}
		}
	}
	return comparison, nil
}
