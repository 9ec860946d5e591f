// Package fpl defines the domain model for the Fantasy Premier League
// upstream API: the bulk bootstrap dataset, fixtures, manager entries,
// gameweek picks, and the transfer payload.
package fpl

// Bootstrap is the bulk reference dataset returned by bootstrap-static.
// It is large, slowly changing, and the source for all name indexes.
type Bootstrap struct {
	Events       []Event       `json:"events"`
	Teams        []Team        `json:"teams"`
	Elements     []Element     `json:"elements"`
	ElementTypes []ElementType `json:"element_types"`
}

// Element is a single player in the bootstrap dataset.
type Element struct {
	ID                int     `json:"id"`
	WebName           string  `json:"web_name"`
	FirstName         string  `json:"first_name"`
	SecondName        string  `json:"second_name"`
	Team              int     `json:"team"`
	ElementType       int     `json:"element_type"`
	NowCost           int     `json:"now_cost"`
	Form              string  `json:"form"`
	PointsPerGame     string  `json:"points_per_game"`
	TotalPoints       int     `json:"total_points"`
	Minutes           int     `json:"minutes"`
	GoalsScored       int     `json:"goals_scored"`
	Assists           int     `json:"assists"`
	CleanSheets       int     `json:"clean_sheets"`
	Bonus             int     `json:"bonus"`
	Status            string  `json:"status"`
	News              string  `json:"news"`
	SelectedByPercent string  `json:"selected_by_percent"`
	TransfersInEvent  int     `json:"transfers_in_event"`
	TransfersOutEvent int     `json:"transfers_out_event"`
	ICTIndex          string  `json:"ict_index"`
	EPNext            *string `json:"ep_next"`
}

// Price is the player's cost in millions.
func (e Element) Price() float64 {
	return float64(e.NowCost) / 10
}

// FullName combines the player's first and second names.
func (e Element) FullName() string {
	return e.FirstName + " " + e.SecondName
}

// Team is a Premier League club.
type Team struct {
	ID                  int    `json:"id"`
	Name                string `json:"name"`
	ShortName           string `json:"short_name"`
	Strength            int    `json:"strength"`
	StrengthOverallHome int    `json:"strength_overall_home"`
	StrengthOverallAway int    `json:"strength_overall_away"`
	StrengthAttackHome  int    `json:"strength_attack_home"`
	StrengthAttackAway  int    `json:"strength_attack_away"`
	StrengthDefenceHome int    `json:"strength_defence_home"`
	StrengthDefenceAway int    `json:"strength_defence_away"`
}

// ElementType is a player position (GKP, DEF, MID, FWD).
type ElementType struct {
	ID                int    `json:"id"`
	SingularName      string `json:"singular_name"`
	SingularNameShort string `json:"singular_name_short"`
}

// Event is a single gameweek.
type Event struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	DeadlineTime      string `json:"deadline_time"`
	Finished          bool   `json:"finished"`
	IsPrevious        bool   `json:"is_previous"`
	IsCurrent         bool   `json:"is_current"`
	IsNext            bool   `json:"is_next"`
	Released          bool   `json:"released"`
	CanEnter          bool   `json:"can_enter"`
	AverageEntryScore int    `json:"average_entry_score"`
	HighestScore      *int   `json:"highest_score"`
	MostCaptained     *int   `json:"most_captained"`
	MostViceCaptained *int   `json:"most_vice_captained"`
	MostSelected      *int   `json:"most_selected"`
	MostTransferredIn *int   `json:"most_transferred_in"`
}

// Fixture is a single match between two teams.
type Fixture struct {
	ID              int     `json:"id"`
	Event           *int    `json:"event"`
	TeamH           int     `json:"team_h"`
	TeamA           int     `json:"team_a"`
	TeamHScore      *int    `json:"team_h_score"`
	TeamAScore      *int    `json:"team_a_score"`
	TeamHDifficulty int     `json:"team_h_difficulty"`
	TeamADifficulty int     `json:"team_a_difficulty"`
	KickoffTime     *string `json:"kickoff_time"`
	Finished        bool    `json:"finished"`
}

// Pick is a single slot in a manager's 15-player squad.
type Pick struct {
	Element       int  `json:"element"`
	Position      int  `json:"position"`
	Multiplier    int  `json:"multiplier"`
	IsCaptain     bool `json:"is_captain"`
	IsViceCaptain bool `json:"is_vice_captain"`
	SellingPrice  int  `json:"selling_price"`
}

// MyTeam is the authenticated my-team payload: current picks plus
// transfer state (bank, free transfers).
type MyTeam struct {
	Picks     []Pick `json:"picks"`
	Transfers struct {
		Bank  int `json:"bank"`
		Limit int `json:"limit"`
		Made  int `json:"made"`
	} `json:"transfers"`
}

// EventPicks is a manager's team for one gameweek.
type EventPicks struct {
	ActiveChip    *string `json:"active_chip"`
	Picks         []Pick  `json:"picks"`
	AutomaticSubs []struct {
		ElementIn  int `json:"element_in"`
		ElementOut int `json:"element_out"`
	} `json:"automatic_subs"`
	EntryHistory struct {
		Points             int `json:"points"`
		TotalPoints        int `json:"total_points"`
		OverallRank        int `json:"overall_rank"`
		Value              int `json:"value"`
		Bank               int `json:"bank"`
		EventTransfers     int `json:"event_transfers"`
		EventTransfersCost int `json:"event_transfers_cost"`
		PointsOnBench      int `json:"points_on_bench"`
	} `json:"entry_history"`
}

// LeagueRef is a league membership as reported on an entry.
type LeagueRef struct {
	ID                  int    `json:"id"`
	Name                string `json:"name"`
	LeagueType          string `json:"league_type"`
	EntryRank           int    `json:"entry_rank"`
	EntryPercentileRank int    `json:"entry_percentile_rank"`
	RankCount           int    `json:"rank_count"`
}

// Entry is a manager's account: identity, season summary, and leagues.
type Entry struct {
	ID                         int    `json:"id"`
	Name                       string `json:"name"`
	PlayerFirstName            string `json:"player_first_name"`
	PlayerLastName             string `json:"player_last_name"`
	PlayerRegionName           string `json:"player_region_name"`
	PlayerRegionISOCodeShort   string `json:"player_region_iso_code_short"`
	CurrentEvent               int    `json:"current_event"`
	SummaryOverallPoints       int    `json:"summary_overall_points"`
	SummaryOverallRank         int    `json:"summary_overall_rank"`
	SummaryEventPoints         int    `json:"summary_event_points"`
	SummaryEventRank           int    `json:"summary_event_rank"`
	LastDeadlineValue          int    `json:"last_deadline_value"`
	LastDeadlineBank           int    `json:"last_deadline_bank"`
	LastDeadlineTotalTransfers int    `json:"last_deadline_total_transfers"`
	Leagues                    struct {
		Classic []LeagueRef `json:"classic"`
	} `json:"leagues"`
}

// StandingEntry is one row of a classic league table.
type StandingEntry struct {
	Entry      int    `json:"entry"`
	EntryName  string `json:"entry_name"`
	PlayerName string `json:"player_name"`
	Rank       int    `json:"rank"`
	LastRank   int    `json:"last_rank"`
	EventTotal int    `json:"event_total"`
	Total      int    `json:"total"`
}

// LeagueStandings is one page of a classic league table.
type LeagueStandings struct {
	League struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"league"`
	Standings struct {
		HasNext bool            `json:"has_next"`
		Page    int             `json:"page"`
		Results []StandingEntry `json:"results"`
	} `json:"standings"`
}

// ElementSummary is the per-player detail payload: upcoming fixtures,
// this season's gameweek history, and past seasons.
type ElementSummary struct {
	Fixtures []struct {
		Event      int     `json:"event"`
		IsHome     bool    `json:"is_home"`
		TeamH      int     `json:"team_h"`
		TeamA      int     `json:"team_a"`
		Difficulty int     `json:"difficulty"`
		Kickoff    *string `json:"kickoff_time"`
	} `json:"fixtures"`
	History []struct {
		Round            int  `json:"round"`
		OpponentTeam     int  `json:"opponent_team"`
		WasHome          bool `json:"was_home"`
		TotalPoints      int  `json:"total_points"`
		Minutes          int  `json:"minutes"`
		GoalsScored      int  `json:"goals_scored"`
		Assists          int  `json:"assists"`
		CleanSheets      int  `json:"clean_sheets"`
		Bonus            int  `json:"bonus"`
		TransfersBalance int  `json:"transfers_balance"`
	} `json:"history"`
	HistoryPast []struct {
		SeasonName  string `json:"season_name"`
		TotalPoints int    `json:"total_points"`
		Minutes     int    `json:"minutes"`
		GoalsScored int    `json:"goals_scored"`
		Assists     int    `json:"assists"`
		StartCost   int    `json:"start_cost"`
		EndCost     int    `json:"end_cost"`
	} `json:"history_past"`
}

// Transfer is a single in/out swap in a transfer payload.
type Transfer struct {
	ElementIn     int `json:"element_in"`
	ElementOut    int `json:"element_out"`
	PurchasePrice int `json:"purchase_price"`
	SellingPrice  int `json:"selling_price"`
}

// TransferPayload is the body of the account-mutating transfers call.
type TransferPayload struct {
	Chip      *string    `json:"chip"`
	Entry     int        `json:"entry"`
	Event     int        `json:"event"`
	Transfers []Transfer `json:"transfers"`
	Wildcard  bool       `json:"wildcard"`
	Freehit   bool       `json:"freehit"`
}

// Me is the authenticated account payload used to resolve the caller's
// own entry ID after login.
type Me struct {
	Player struct {
		Entry     int    `json:"entry"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"player"`
}
