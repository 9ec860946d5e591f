package service

import (
	"context"
	"sort"

	"github.com/fantasytools/fpl-agent/fpl"
	apperrors "github.com/fantasytools/fpl-agent/internal/errors"
	"github.com/fantasytools/fpl-agent/internal/utils"
	"github.com/fantasytools/fpl-agent/resolver"
)

// GameweekReport is one gameweek with its popular-choice player IDs
// rehydrated to names.
type GameweekReport struct {
	Event             fpl.Event
	MostCaptained     string
	MostSelected      string
	MostTransferredIn string
	Stale             bool
}

func (s *Service) gameweekReport(ev *fpl.Event, stale bool) *GameweekReport {
	report := &GameweekReport{Event: *ev, Stale: stale}
	rehydrate := func(id *int) string {
		if id == nil {
			return ""
		}
		if d, err := s.names.Rehydrate(resolver.KindPlayer, *id); err == nil {
			return d.Name
		}
		return ""
	}
	report.MostCaptained = rehydrate(ev.MostCaptained)
	report.MostSelected = rehydrate(ev.MostSelected)
	report.MostTransferredIn = rehydrate(ev.MostTransferredIn)
	return report
}

// CurrentGameweek returns the gameweek transfers should be planned
// for, deadline-aware.
func (s *Service) CurrentGameweek(ctx context.Context) (*GameweekReport, error) {
	b, stale, err := s.bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	ev := fpl.CurrentGameweek(b.Events, s.nowTime())
	if ev == nil {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "service: no active or upcoming gameweek")
	}
	return s.gameweekReport(ev, stale), nil
}

// GameweekInfo returns one gameweek by number (1-38).
func (s *Service) GameweekInfo(ctx context.Context, number int) (*GameweekReport, error) {
	b, stale, err := s.bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	ev := fpl.EventByID(b.Events, number)
	if ev == nil {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "service: gameweek %d", number)
	}
	return s.gameweekReport(ev, stale), nil
}

// GameweeksReport is the whole season's gameweek calendar.
type GameweeksReport struct {
	Events []fpl.Event
	Stale  bool
}

// ListGameweeks returns every gameweek of the season in order.
func (s *Service) ListGameweeks(ctx context.Context) (*GameweeksReport, error) {
	b, stale, err := s.bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	events := make([]fpl.Event, len(b.Events))
	copy(events, b.Events)
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return &GameweeksReport{Events: events, Stale: stale}, nil
}

// MatchReport is one fixture rehydrated with both team names.
type MatchReport struct {
	Home           string
	Away           string
	HomeScore      *int
	AwayScore      *int
	Kickoff        string
	Finished       bool
	HomeDifficulty int
	AwayDifficulty int
}

// GameweekFixturesReport lists one gameweek's matches in kickoff order.
type GameweekFixturesReport struct {
	Gameweek int
	Matches  []MatchReport
	Stale    bool
}

// GameweekFixtures returns all fixtures of one gameweek with team IDs
// rehydrated to short names.
func (s *Service) GameweekFixtures(ctx context.Context, gameweek int) (*GameweekFixturesReport, error) {
	b, stale, err := s.bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	fixtures, fxStale, err := s.fixtures(ctx)
	if err != nil {
		return nil, err
	}

	short := make(map[int]string, len(b.Teams))
	for _, t := range b.Teams {
		short[t.ID] = t.ShortName
	}

	report := &GameweekFixturesReport{Gameweek: gameweek, Stale: stale || fxStale}
	for _, f := range fixtures {
		if f.Event == nil || *f.Event != gameweek {
			continue
		}
		report.Matches = append(report.Matches, MatchReport{
			Home:           short[f.TeamH],
			Away:           short[f.TeamA],
			HomeScore:      f.TeamHScore,
			AwayScore:      f.TeamAScore,
			Kickoff:        utils.Value(f.KickoffTime),
			Finished:       f.Finished,
			HomeDifficulty: f.TeamHDifficulty,
			AwayDifficulty: f.TeamADifficulty,
		})
	}
	if len(report.Matches) == 0 {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "service: no fixtures for gameweek %d", gameweek)
	}
	sort.Slice(report.Matches, func(i, j int) bool {
		return report.Matches[i].Kickoff < report.Matches[j].Kickoff
	})
	return report, nil
}
