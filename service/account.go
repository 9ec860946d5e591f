package service

import (
	"context"
	"sort"

	"github.com/fantasytools/fpl-agent/fpl"
)

// SquadPick is one slot of the caller's squad, rehydrated.
type SquadPick struct {
	Player       PlayerCard
	Position     int
	SellingPrice float64
	Captain      bool
	ViceCaptain  bool
}

// SquadReport is the caller's current team and bank balance.
type SquadReport struct {
	EntryID       int
	Bank          float64
	FreeTransfers int
	Picks         []SquadPick
	Stale         bool
}

// MySquad returns the active session's current squad with every pick
// rehydrated to player names. The my-team endpoint is account-scoped
// and never cached: selling prices move with the caller's transfers.
func (s *Service) MySquad(ctx context.Context, requestID string) (*SquadReport, error) {
	session, err := s.sessions.RequireActive(requestID)
	if err != nil {
		return nil, err
	}
	team, err := s.client.MyTeam(ctx, session.Credential, session.EntryID)
	if err != nil {
		return nil, err
	}
	b, stale, err := s.bootstrap(ctx)
	if err != nil {
		return nil, err
	}

	report := &SquadReport{
		EntryID:       session.EntryID,
		Bank:          float64(team.Transfers.Bank) / 10,
		FreeTransfers: team.Transfers.Limit - team.Transfers.Made,
		Stale:         stale,
	}
	for _, pick := range team.Picks {
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
	return report, nil
}

// PlayerRecentForm is one squad player's output over a recent window.
type PlayerRecentForm struct {
	Player      PlayerCard
	Gameweeks   []GWHistory
	TotalPoints int
	Minutes     int
	Goals       int
	Assists     int
}

// SquadPerformanceReport summarizes how the caller's squad performed
// over the last gameweeks, best scorers first.
type SquadPerformanceReport struct {
	EntryID int
	Window  int
	Players []PlayerRecentForm
	Stale   bool
}

// SquadRecentPerformance returns per-player points, minutes, and
// returns over the last gameweeks for every player in the caller's
// squad, drawn from each player's detail endpoint.
func (s *Service) SquadRecentPerformance(ctx context.Context, requestID string, gameweeks int) (*SquadPerformanceReport, error) {
	if gameweeks <= 0 {
		gameweeks = 5
	}
	session, err := s.sessions.RequireActive(requestID)
	if err != nil {
		return nil, err
	}
	team, err := s.client.MyTeam(ctx, session.Credential, session.EntryID)
	if err != nil {
		return nil, err
	}
	b, stale, err := s.bootstrap(ctx)
	if err != nil {
		return nil, err
	}

	short := make(map[int]string, len(b.Teams))
	for _, t := range b.Teams {
		short[t.ID] = t.ShortName
	}

	report := &SquadPerformanceReport{
		EntryID: session.EntryID,
		Window:  gameweeks,
		Stale:   stale,
	}
	for _, pick := range team.Picks {
		e, err := elementByID(b, pick.Element)
		if err != nil {
			return nil, err
		}
		sum, sumStale, err := s.elementSummary(ctx, pick.Element)
		if err != nil {
			return nil, err
		}
		report.Stale = report.Stale || sumStale

		history := sum.History
		if len(history) > gameweeks {
			history = history[len(history)-gameweeks:]
		}
		form := PlayerRecentForm{Player: playerCard(b, e)}
		for _, h := range history {
			form.Gameweeks = append(form.Gameweeks, GWHistory{
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
			form.TotalPoints += h.TotalPoints
			form.Minutes += h.Minutes
			form.Goals += h.GoalsScored
			form.Assists += h.Assists
		}
		report.Players = append(report.Players, form)
	}
	sort.SliceStable(report.Players, func(i, j int) bool {
		return report.Players[i].TotalPoints > report.Players[j].TotalPoints
	})
	return report, nil
}

// PerformanceReport is the caller's season summary and leagues.
type PerformanceReport struct {
	Entry fpl.Entry
	Stale bool
}

// MyPerformance returns the active session's account page: overall and
// gameweek rank, team value, and league memberships.
func (s *Service) MyPerformance(ctx context.Context, requestID string) (*PerformanceReport, error) {
	session, err := s.sessions.RequireActive(requestID)
	if err != nil {
		return nil, err
	}
	entry, stale, err := s.entry(ctx, session.EntryID)
	if err != nil {
		return nil, err
	}
	return &PerformanceReport{Entry: *entry, Stale: stale}, nil
}
