package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/fantasytools/fpl-agent/auth"
	"github.com/fantasytools/fpl-agent/cache"
	"github.com/fantasytools/fpl-agent/fpl"
	"github.com/fantasytools/fpl-agent/internal/config"
	apperrors "github.com/fantasytools/fpl-agent/internal/errors"
	"github.com/fantasytools/fpl-agent/internal/utils"
	"github.com/fantasytools/fpl-agent/resolver"
	"github.com/fantasytools/fpl-agent/service"
)

const testEntryID = 4242

// fakeUpstream serves canned payloads in place of the FPL API. It backs
// both the orchestrator's data calls and the session store's entry
// resolution.
type fakeUpstream struct {
	mu             sync.Mutex
	bootstrap      *fpl.Bootstrap
	bootstrapErr   error
	bootstrapCalls int
	fixtures       []fpl.Fixture
	myTeam         *fpl.MyTeam
	entries        map[int]*fpl.Entry
	standings      map[int]*fpl.LeagueStandings
	picks          map[string]*fpl.EventPicks
	summaries      map[int]*fpl.ElementSummary
	transferCalls  []*fpl.TransferPayload
}

func marshal(v any) (json.RawMessage, error) {
	b, err := json.Marshal(v)
	return json.RawMessage(b), err
}

func (f *fakeUpstream) Bootstrap(ctx context.Context) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bootstrapCalls++
	if f.bootstrapErr != nil {
		return nil, f.bootstrapErr
	}
	return marshal(f.bootstrap)
}

func (f *fakeUpstream) Fixtures(ctx context.Context) (json.RawMessage, error) {
	return marshal(f.fixtures)
}

func (f *fakeUpstream) ElementSummary(ctx context.Context, elementID int) (json.RawMessage, error) {
	s, ok := f.summaries[elementID]
	if !ok {
		return marshal(&fpl.ElementSummary{})
	}
	return marshal(s)
}

func (f *fakeUpstream) Entry(ctx context.Context, entryID int) (json.RawMessage, error) {
	e, ok := f.entries[entryID]
	if !ok {
		return nil, fmt.Errorf("no entry %d", entryID)
	}
	return marshal(e)
}

func (f *fakeUpstream) EventPicks(ctx context.Context, entryID, gameweek int) (json.RawMessage, error) {
	p, ok := f.picks[fmt.Sprintf("%d/%d", entryID, gameweek)]
	if !ok {
		return nil, fmt.Errorf("no picks for entry %d gw %d", entryID, gameweek)
	}
	return marshal(p)
}

func (f *fakeUpstream) LeagueStandings(ctx context.Context, leagueID, page int) (json.RawMessage, error) {
	st, ok := f.standings[leagueID]
	if !ok {
		return nil, fmt.Errorf("no league %d", leagueID)
	}
	return marshal(st)
}

func (f *fakeUpstream) MyTeam(ctx context.Context, credential *oauth2.Token, entryID int) (*fpl.MyTeam, error) {
	if credential == nil {
		return nil, errors.New("missing credential")
	}
	return f.myTeam, nil
}

func (f *fakeUpstream) Me(ctx context.Context, credential *oauth2.Token) (int, error) {
	return testEntryID, nil
}

func (f *fakeUpstream) ExecuteTransfers(ctx context.Context, credential *oauth2.Token, payload *fpl.TransferPayload) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transferCalls = append(f.transferCalls, payload)
	return json.RawMessage(`{}`), nil
}

func testBootstrap() *fpl.Bootstrap {
	return &fpl.Bootstrap{
		Events: []fpl.Event{
			{ID: 1, Name: "Gameweek 1", DeadlineTime: "2026-08-15T17:30:00Z", Finished: true, IsPrevious: true},
			{ID: 2, Name: "Gameweek 2", DeadlineTime: "2026-08-22T17:30:00Z", IsCurrent: true, MostCaptained: utils.Ptr(300), MostSelected: utils.Ptr(100), AverageEntryScore: 52},
			{ID: 3, Name: "Gameweek 3", DeadlineTime: "2026-08-29T17:30:00Z", IsNext: true},
		},
		Teams: []fpl.Team{
			{ID: 1, Name: "Arsenal", ShortName: "ARS", Strength: 5},
			{ID: 2, Name: "Liverpool", ShortName: "LIV", Strength: 5},
		},
		ElementTypes: []fpl.ElementType{
			{ID: 3, SingularName: "Midfielder", SingularNameShort: "MID"},
			{ID: 4, SingularName: "Forward", SingularNameShort: "FWD"},
		},
		Elements: []fpl.Element{
			{ID: 100, WebName: "M.Salah", FirstName: "Mohamed", SecondName: "Salah", Team: 2, ElementType: 3, NowCost: 130, Form: "8.5", PointsPerGame: "9.1", TotalPoints: 95, Minutes: 900, SelectedByPercent: "45.2"},
			{ID: 200, WebName: "Saka", FirstName: "Bukayo", SecondName: "Saka", Team: 1, ElementType: 3, NowCost: 100, Form: "7.0", PointsPerGame: "10.0", TotalPoints: 88, Minutes: 880, SelectedByPercent: "30.1"},
			{ID: 300, WebName: "Haaland", FirstName: "Erling", SecondName: "Haaland", Team: 1, ElementType: 4, NowCost: 151, Form: "9.2", PointsPerGame: "8.7", TotalPoints: 90, Minutes: 870, SelectedByPercent: "60.3"},
			{ID: 400, WebName: "Benchwarmer", FirstName: "Billy", SecondName: "Benchwarmer", Team: 2, ElementType: 4, NowCost: 45, PointsPerGame: "0.0", Minutes: 0, SelectedByPercent: "0.1"},
		},
	}
}

// testFixture wires the orchestrator against the fake upstream with a
// controllable clock.
type testFixture struct {
	svc      *service.Service
	upstream *fakeUpstream
	sessions *auth.Store
	now      time.Time
	mu       sync.Mutex
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		now: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
		upstream: &fakeUpstream{
			bootstrap: testBootstrap(),
			fixtures: []fpl.Fixture{
				{ID: 1, Event: utils.Ptr(2), TeamH: 1, TeamA: 2, TeamHDifficulty: 4, TeamADifficulty: 4, KickoffTime: utils.Ptr("2026-08-22T14:00:00Z")},
				{ID: 2, Event: utils.Ptr(3), TeamH: 2, TeamA: 1, TeamHDifficulty: 5, TeamADifficulty: 3, KickoffTime: utils.Ptr("2026-08-29T14:00:00Z")},
			},
			myTeam: &fpl.MyTeam{
				Picks: []fpl.Pick{
					{Element: 100, Position: 1, SellingPrice: 125, IsCaptain: true},
					{Element: 200, Position: 2, SellingPrice: 98},
				},
				Transfers: struct {
					Bank  int `json:"bank"`
					Limit int `json:"limit"`
					Made  int `json:"made"`
				}{Bank: 15, Limit: 2, Made: 1},
			},
			entries: map[int]*fpl.Entry{
				testEntryID: {
					ID:                   testEntryID,
					Name:                 "Test FC",
					PlayerFirstName:      "Jo",
					PlayerLastName:       "Bloggs",
					CurrentEvent:         2,
					SummaryOverallPoints: 120,
					SummaryOverallRank:   250000,
				},
			},
			standings: map[int]*fpl.LeagueStandings{},
			picks:     map[string]*fpl.EventPicks{},
			summaries: map[int]*fpl.ElementSummary{},
		},
	}
	f.upstream.entries[testEntryID].Leagues.Classic = []fpl.LeagueRef{
		{ID: 10, Name: "Work League", EntryRank: 2, RankCount: 12},
	}
	f.upstream.standings[10] = &fpl.LeagueStandings{}
	f.upstream.standings[10].League.ID = 10
	f.upstream.standings[10].League.Name = "Work League"
	f.upstream.standings[10].Standings.Page = 1
	f.upstream.standings[10].Standings.Results = []fpl.StandingEntry{
		{Entry: 5555, PlayerName: "Alex Kim", EntryName: "Kim's XI", Rank: 1, Total: 140, EventTotal: 60},
		{Entry: testEntryID, PlayerName: "Jo Bloggs", EntryName: "Test FC", Rank: 2, Total: 120, EventTotal: 55},
	}

	nowFunc := func() time.Time {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.now
	}
	f.sessions = auth.NewStore(f.upstream, zerolog.Nop(), auth.WithNowTime(nowFunc))
	store := cache.NewStore(zerolog.Nop(), cache.WithNowTime(nowFunc))
	names := resolver.New(zerolog.Nop())
	f.svc = service.New(f.upstream, store, f.sessions, names, config.New(), zerolog.Nop(), service.WithNowTime(nowFunc))
	return f
}

func (f *testFixture) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

// login establishes an active session and returns its request ID.
func (f *testFixture) login(t *testing.T) string {
	t.Helper()
	requestID := f.sessions.BeginLogin()

	claims := jwt.MapClaims{"sub": "user", "exp": time.Now().Add(time.Hour).Unix()}
	artifact, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	require.NoError(t, f.sessions.CompleteLogin(requestID, artifact))
	_, err = f.sessions.Confirm(context.Background(), requestID)
	require.NoError(t, err)
	return requestID
}

func TestFindPlayerResolvesAndHydrates(t *testing.T) {
	f := setupTestFixture(t)

	report, err := f.svc.FindPlayer(context.Background(), "mo salah")
	require.NoError(t, err)
	require.Equal(t, "M.Salah", report.Player.Name)
	require.Equal(t, "Liverpool", report.Player.Team)
	require.Equal(t, "MID", report.Player.Position)
	require.Equal(t, 13.0, report.Player.Price)
	require.False(t, report.Stale)
}

func TestConcurrentFirstLookupsAllResolve(t *testing.T) {
	f := setupTestFixture(t)

	// The very first bootstrap round builds the name indexes; callers
	// arriving while that build is in flight must wait for it, not see
	// an empty registry.
	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.FindPlayer(context.Background(), "mo salah")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, 1, f.upstream.bootstrapCalls)
}

func TestFindPlayerNoMatch(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.svc.FindPlayer(context.Background(), "zzzyyyxxx")
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrNoMatch))
}

func TestBootstrapIsCachedAcrossCalls(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.svc.FindPlayer(context.Background(), "salah")
	require.NoError(t, err)
	_, err = f.svc.FindPlayer(context.Background(), "saka")
	require.NoError(t, err)
	require.Equal(t, 1, f.upstream.bootstrapCalls)
}

func TestStaleBootstrapIsSurfaced(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.svc.FindPlayer(context.Background(), "salah")
	require.NoError(t, err)

	f.advance(5 * time.Hour)
	f.upstream.bootstrapErr = errors.New("connection refused")

	report, err := f.svc.FindPlayer(context.Background(), "salah")
	require.NoError(t, err)
	require.True(t, report.Stale)
	require.Equal(t, "M.Salah", report.Player.Name)
}

func TestTopPlayersRanksNumerically(t *testing.T) {
	f := setupTestFixture(t)

	report, err := f.svc.TopPlayers(context.Background())
	require.NoError(t, err)

	mids := report.Positions["MID"]
	require.Len(t, mids, 2)
	// "10.0" beats "9.1" numerically even though it sorts lower as a string.
	require.Equal(t, "Saka", mids[0].Name)
	require.Equal(t, "M.Salah", mids[1].Name)

	// Players without minutes are excluded.
	for _, card := range report.Positions["FWD"] {
		require.NotEqual(t, "Benchwarmer", card.Name)
	}
}

func TestCurrentGameweekRehydratesPopularPicks(t *testing.T) {
	f := setupTestFixture(t)

	report, err := f.svc.CurrentGameweek(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, report.Event.ID)
	require.Equal(t, "Haaland", report.MostCaptained)
	require.Equal(t, "M.Salah", report.MostSelected)
}

func TestGameweekFixturesRehydratesTeams(t *testing.T) {
	f := setupTestFixture(t)

	report, err := f.svc.GameweekFixtures(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, report.Matches, 1)
	require.Equal(t, "ARS", report.Matches[0].Home)
	require.Equal(t, "LIV", report.Matches[0].Away)
}

func TestGameweekFixturesUnknownGameweek(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.svc.GameweekFixtures(context.Background(), 38)
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestTeamFixturesAverageDifficulty(t *testing.T) {
	f := setupTestFixture(t)

	report, err := f.svc.TeamFixtures(context.Background(), "arsenal", 5)
	require.NoError(t, err)
	require.Equal(t, "Arsenal", report.Team.Name)
	require.Len(t, report.Fixtures, 2)
	require.Equal(t, "Liverpool", report.Fixtures[0].Opponent)
	require.True(t, report.Fixtures[0].Home)
	require.InDelta(t, 3.5, report.AvgDifficulty, 0.001)
}

func TestMySquadRequiresLogin(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.svc.MySquad(context.Background(), "no-session")
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrAuthenticationRequired))
}

func TestMySquadRehydratesPicks(t *testing.T) {
	f := setupTestFixture(t)
	requestID := f.login(t)

	report, err := f.svc.MySquad(context.Background(), requestID)
	require.NoError(t, err)
	require.Equal(t, testEntryID, report.EntryID)
	require.InDelta(t, 1.5, report.Bank, 0.001)
	require.Equal(t, 1, report.FreeTransfers)
	require.Len(t, report.Picks, 2)
	require.Equal(t, "M.Salah", report.Picks[0].Player.Name)
	require.True(t, report.Picks[0].Captain)
	require.InDelta(t, 12.5, report.Picks[0].SellingPrice, 0.001)
}

func TestMyPerformance(t *testing.T) {
	f := setupTestFixture(t)
	requestID := f.login(t)

	report, err := f.svc.MyPerformance(context.Background(), requestID)
	require.NoError(t, err)
	require.Equal(t, "Test FC", report.Entry.Name)
	require.Equal(t, 120, report.Entry.SummaryOverallPoints)
	require.Len(t, report.Entry.Leagues.Classic, 1)
}

func summaryWithHistory(t *testing.T, raw string) *fpl.ElementSummary {
	t.Helper()
	var sum fpl.ElementSummary
	require.NoError(t, json.Unmarshal([]byte(raw), &sum))
	return &sum
}

func TestSquadRecentPerformanceAggregatesAndSorts(t *testing.T) {
	f := setupTestFixture(t)
	requestID := f.login(t)

	f.upstream.summaries[100] = summaryWithHistory(t, `{"history":[
		{"round":1,"opponent_team":1,"was_home":true,"total_points":12,"minutes":90,"goals_scored":2},
		{"round":2,"opponent_team":1,"was_home":false,"total_points":3,"minutes":65,"assists":1}]}`)
	f.upstream.summaries[200] = summaryWithHistory(t, `{"history":[
		{"round":2,"opponent_team":2,"was_home":true,"total_points":8,"minutes":90,"goals_scored":1}]}`)

	report, err := f.svc.SquadRecentPerformance(context.Background(), requestID, 0)
	require.NoError(t, err)
	require.Equal(t, testEntryID, report.EntryID)
	require.Equal(t, 5, report.Window)
	require.Len(t, report.Players, 2)

	salah := report.Players[0]
	require.Equal(t, "M.Salah", salah.Player.Name)
	require.Equal(t, 15, salah.TotalPoints)
	require.Equal(t, 155, salah.Minutes)
	require.Equal(t, 2, salah.Goals)
	require.Equal(t, 1, salah.Assists)
	require.Len(t, salah.Gameweeks, 2)
	require.Equal(t, "ARS", salah.Gameweeks[0].Opponent)

	require.Equal(t, "Saka", report.Players[1].Player.Name)
	require.Equal(t, 8, report.Players[1].TotalPoints)
}

func TestSquadRecentPerformanceWindowTruncates(t *testing.T) {
	f := setupTestFixture(t)
	requestID := f.login(t)

	f.upstream.summaries[100] = summaryWithHistory(t, `{"history":[
		{"round":1,"opponent_team":1,"was_home":true,"total_points":12,"minutes":90},
		{"round":2,"opponent_team":1,"was_home":false,"total_points":3,"minutes":65}]}`)
	f.upstream.summaries[200] = summaryWithHistory(t, `{"history":[
		{"round":2,"opponent_team":2,"was_home":true,"total_points":8,"minutes":90}]}`)

	// Only the most recent round counts, so Saka's 8 beats Salah's 3.
	report, err := f.svc.SquadRecentPerformance(context.Background(), requestID, 1)
	require.NoError(t, err)
	require.Equal(t, 1, report.Window)
	require.Equal(t, "Saka", report.Players[0].Player.Name)
	require.Equal(t, "M.Salah", report.Players[1].Player.Name)
	require.Len(t, report.Players[1].Gameweeks, 1)
	require.Equal(t, 2, report.Players[1].Gameweeks[0].Round)
	require.Equal(t, 3, report.Players[1].TotalPoints)
}

func TestSquadRecentPerformanceRequiresLogin(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.svc.SquadRecentPerformance(context.Background(), "no-session", 5)
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrAuthenticationRequired))
}

func TestListGameweeksOrdered(t *testing.T) {
	f := setupTestFixture(t)

	report, err := f.svc.ListGameweeks(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Events, 3)
	require.Equal(t, 1, report.Events[0].ID)
	require.True(t, report.Events[0].Finished)
	require.Equal(t, 2, report.Events[1].ID)
	require.True(t, report.Events[1].IsCurrent)
	require.Equal(t, 3, report.Events[2].ID)
	require.False(t, report.Stale)
}

func TestLeagueStandingsResolvesLeagueName(t *testing.T) {
	f := setupTestFixture(t)
	requestID := f.login(t)

	report, err := f.svc.LeagueStandings(context.Background(), requestID, "work", 1)
	require.NoError(t, err)
	require.Equal(t, "Work League", report.League)
	require.Len(t, report.Rows, 2)
	require.Equal(t, "Alex Kim", report.Rows[0].PlayerName)
}

func TestLeagueStandingsRequiresLogin(t *testing.T) {
	f := setupTestFixture(t)

	_, err := f.svc.LeagueStandings(context.Background(), "nope", "work", 1)
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrAuthenticationRequired))
}

func TestPlanTransfersPricesSwaps(t *testing.T) {
	f := setupTestFixture(t)
	requestID := f.login(t)

	plan, err := f.svc.PlanTransfers(context.Background(), requestID, []string{"salah"}, []string{"haaland"})
	require.NoError(t, err)
	require.Equal(t, 2, plan.Gameweek)
	require.Len(t, plan.Transfers, 1)
	require.Equal(t, "M.Salah", plan.Transfers[0].Out.Name)
	require.Equal(t, "Haaland", plan.Transfers[0].In.Name)
	require.InDelta(t, 12.5, plan.Transfers[0].SellingPrice, 0.001)
	require.InDelta(t, 15.1, plan.Transfers[0].BuyingPrice, 0.001)
	// Planning must not touch the account.
	require.Empty(t, f.upstream.transferCalls)
}

func TestPlanTransfersRejectsUnownedPlayer(t *testing.T) {
	f := setupTestFixture(t)
	requestID := f.login(t)

	_, err := f.svc.PlanTransfers(context.Background(), requestID, []string{"haaland"}, []string{"salah"})
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidQuery))
}

func TestPlanTransfersRejectsMismatchedLists(t *testing.T) {
	f := setupTestFixture(t)
	requestID := f.login(t)

	_, err := f.svc.PlanTransfers(context.Background(), requestID, []string{"salah"}, nil)
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidQuery))
}

func TestExecuteTransfersPostsPlan(t *testing.T) {
	f := setupTestFixture(t)
	requestID := f.login(t)

	plan, err := f.svc.PlanTransfers(context.Background(), requestID, []string{"salah"}, []string{"haaland"})
	require.NoError(t, err)

	require.NoError(t, f.svc.ExecuteTransfers(context.Background(), requestID, plan))
	require.Len(t, f.upstream.transferCalls, 1)

	payload := f.upstream.transferCalls[0]
	require.Equal(t, testEntryID, payload.Entry)
	require.Equal(t, 2, payload.Event)
	require.Len(t, payload.Transfers, 1)
	require.Equal(t, 100, payload.Transfers[0].ElementOut)
	require.Equal(t, 300, payload.Transfers[0].ElementIn)
	require.Equal(t, 125, payload.Transfers[0].SellingPrice)
	require.Equal(t, 151, payload.Transfers[0].PurchasePrice)
}

func TestExecuteTransfersRejectsEmptyPlan(t *testing.T) {
	f := setupTestFixture(t)
	requestID := f.login(t)

	err := f.svc.ExecuteTransfers(context.Background(), requestID, nil)
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidQuery))
}

func TestManagerGameweekTeamResolvesThroughLeague(t *testing.T) {
	f := setupTestFixture(t)
	requestID := f.login(t)

	picks := &fpl.EventPicks{
		Picks: []fpl.Pick{
			{Element: 300, Position: 1, IsCaptain: true},
			{Element: 200, Position: 2},
		},
	}
	picks.EntryHistory.Points = 60
	picks.EntryHistory.TotalPoints = 140
	f.upstream.picks["5555/2"] = picks
	f.upstream.entries[5555] = &fpl.Entry{ID: 5555, Name: "Kim's XI"}

	report, err := f.svc.ManagerGameweekTeam(context.Background(), requestID, "work league", "alex", 2)
	require.NoError(t, err)
	require.Equal(t, "Alex Kim", report.Manager)
	require.Equal(t, "Kim's XI", report.TeamName)
	require.Equal(t, 60, report.Points)
	require.Len(t, report.Picks, 2)
	require.Equal(t, "Haaland", report.Picks[0].Player.Name)
	require.True(t, report.Picks[0].Captain)
}

func TestComparePlayersOrderAndBounds(t *testing.T) {
	f := setupTestFixture(t)

	report, err := f.svc.ComparePlayers(context.Background(), []string{"haaland", "saka"})
	require.NoError(t, err)
	require.Len(t, report.Players, 2)
	require.Equal(t, "Haaland", report.Players[0].Name)
	require.Equal(t, "Saka", report.Players[1].Name)

	_, err = f.svc.ComparePlayers(context.Background(), []string{"salah"})
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrInvalidQuery))
}
