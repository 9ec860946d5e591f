package service

import (
	"context"
	"sort"

	"github.com/fantasytools/fpl-agent/fpl"
	apperrors "github.com/fantasytools/fpl-agent/internal/errors"
	"github.com/fantasytools/fpl-agent/internal/utils"
)

// TeamReport is one club's strength profile.
type TeamReport struct {
	Team  fpl.Team
	Stale bool
}

// TeamInfo resolves a club name and returns its strength ratings.
func (s *Service) TeamInfo(ctx context.Context, query string) (*TeamReport, error) {
	b, ref, stale, err := s.resolveTeam(ctx, query)
	if err != nil {
		return nil, err
	}
	for _, t := range b.Teams {
		if t.ID == ref.ID {
			return &TeamReport{Team: t, Stale: stale}, nil
		}
	}
	return nil, apperrors.Wrapf(apperrors.ErrNotFound, "service: team %d", ref.ID)
}

// TeamsReport lists every club, name-sorted.
type TeamsReport struct {
	Teams []fpl.Team
	Stale bool
}

// ListTeams returns every Premier League club.
func (s *Service) ListTeams(ctx context.Context) (*TeamsReport, error) {
	b, stale, err := s.bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	teams := make([]fpl.Team, len(b.Teams))
	copy(teams, b.Teams)
	sort.Slice(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })
	return &TeamsReport{Teams: teams, Stale: stale}, nil
}

// TeamSquadReport lists one club's players grouped in position order.
type TeamSquadReport struct {
	Team    fpl.Team
	Players []PlayerCard
	Stale   bool
}

// TeamSquad resolves a club name and returns its players ordered by
// position then price.
func (s *Service) TeamSquad(ctx context.Context, query string) (*TeamSquadReport, error) {
	b, ref, stale, err := s.resolveTeam(ctx, query)
	if err != nil {
		return nil, err
	}

	report := &TeamSquadReport{Stale: stale}
	for _, t := range b.Teams {
		if t.ID == ref.ID {
			report.Team = t
		}
	}

	var squad []fpl.Element
	for _, e := range b.Elements {
		if e.Team == ref.ID {
			squad = append(squad, e)
		}
	}
	sort.Slice(squad, func(i, j int) bool {
		if squad[i].ElementType != squad[j].ElementType {
			return squad[i].ElementType < squad[j].ElementType
		}
		return squad[i].NowCost > squad[j].NowCost
	})
	for i := range squad {
		report.Players = append(report.Players, playerCard(b, &squad[i]))
	}
	return report, nil
}

// TeamFixture is one upcoming match from a club's point of view.
type TeamFixture struct {
	Gameweek   int
	Opponent   string
	Home       bool
	Difficulty int
	Kickoff    string
}

// TeamFixturesReport is a club's upcoming run with its mean difficulty.
type TeamFixturesReport struct {
	Team          fpl.Team
	Fixtures      []TeamFixture
	AvgDifficulty float64
	Stale         bool
}

// TeamFixtures resolves a club name and returns its next fixtures from
// the upcoming gameweek, with opponents rehydrated to names.
func (s *Service) TeamFixtures(ctx context.Context, query string, gameweeks int) (*TeamFixturesReport, error) {
	if gameweeks <= 0 {
		gameweeks = 5
	}
	b, ref, stale, err := s.resolveTeam(ctx, query)
	if err != nil {
		return nil, err
	}
	fixtures, fxStale, err := s.fixtures(ctx)
	if err != nil {
		return nil, err
	}

	report := &TeamFixturesReport{Stale: stale || fxStale}
	names := make(map[int]string, len(b.Teams))
	for _, t := range b.Teams {
		names[t.ID] = t.Name
		if t.ID == ref.ID {
			report.Team = t
		}
	}

	current := fpl.CurrentGameweek(b.Events, s.nowTime())
	if current == nil {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "service: no upcoming gameweek")
	}
	startGW, endGW := current.ID, current.ID+gameweeks

	total := 0
	for _, f := range fixtures {
		if f.Finished || f.Event == nil || *f.Event < startGW || *f.Event >= endGW {
			continue
		}
		if f.TeamH != ref.ID && f.TeamA != ref.ID {
			continue
		}
		home := f.TeamH == ref.ID
		opponent, difficulty := f.TeamA, f.TeamHDifficulty
		if !home {
			opponent, difficulty = f.TeamH, f.TeamADifficulty
		}
		report.Fixtures = append(report.Fixtures, TeamFixture{
			Gameweek:   *f.Event,
			Opponent:   names[opponent],
			Home:       home,
			Difficulty: difficulty,
			Kickoff:    utils.Value(f.KickoffTime),
		})
		total += difficulty
	}
	sort.Slice(report.Fixtures, func(i, j int) bool {
		return report.Fixtures[i].Gameweek < report.Fixtures[j].Gameweek
	})
	if len(report.Fixtures) > 0 {
		report.AvgDifficulty = float64(total) / float64(len(report.Fixtures))
	}
	return report, nil
}
