package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (h *Handler) mySquad(ctx context.Context, req *mcp.CallToolRequest, in sessionInput) (*mcp.CallToolResult, any, error) {
	report, err := h.svc.MySquad(ctx, in.RequestID)
	if err != nil {
		return h.errResult(err), nil, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Your squad (team ID %d):\n", report.EntryID)
	writePicks(&b, report.Picks)
	fmt.Fprintf(&b, "Bank £%.1fm, %d free transfer(s). Selling prices shown.\n", report.Bank, report.FreeTransfers)
	staleNote(&b, report.Stale)
	return textResult(b.String()), nil, nil
}

type squadPerformanceInput struct {
	RequestID string `json:"request_id" jsonschema:"the request ID returned by login_to_fpl"`
	Gameweeks int    `json:"gameweeks,omitempty" jsonschema:"how many recent gameweeks to cover, default 5"`
}

func (h *Handler) squadRecentPerformance(ctx context.Context, req *mcp.CallToolRequest, in squadPerformanceInput) (*mcp.CallToolResult, any, error) {
	report, err := h.svc.SquadRecentPerformance(ctx, in.RequestID, in.Gameweeks)
	if err != nil {
		return h.errResult(err), nil, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Squad form over the last %d gameweek(s):\n", report.Window)
	for _, p := range report.Players {
		fmt.Fprintf(&b, "  %s (%s %s): %d pts, %d mins, %d goals, %d assists\n",
			p.Player.Name, p.Player.TeamShort, p.Player.Position,
			p.TotalPoints, p.Minutes, p.Goals, p.Assists)
		for _, gw := range p.Gameweeks {
			fmt.Fprintf(&b, "    GW%d %s %s: %d pts, %d mins\n",
				gw.Round, homeAway(gw.Home), gw.Opponent, gw.Points, gw.Minutes)
		}
	}
	staleNote(&b, report.Stale)
	return textResult(b.String()), nil, nil
}

func (h *Handler) myPerformance(ctx context.Context, req *mcp.CallToolRequest, in sessionInput) (*mcp.CallToolResult, any, error) {
	report, err := h.svc.MyPerformance(ctx, in.RequestID)
	if err != nil {
		return h.errResult(err), nil, nil
	}

	e := report.Entry
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s %s)\n", e.Name, e.PlayerFirstName, e.PlayerLastName)
	fmt.Fprintf(&b, "  Overall: %d pts, rank %d\n", e.SummaryOverallPoints, e.SummaryOverallRank)
	fmt.Fprintf(&b, "  Gameweek %d: %d pts, rank %d\n", e.CurrentEvent, e.SummaryEventPoints, e.SummaryEventRank)
	fmt.Fprintf(&b, "  Team value £%.1fm, bank £%.1fm\n", float64(e.LastDeadlineValue)/10, float64(e.LastDeadlineBank)/10)
	if len(e.Leagues.Classic) > 0 {
		b.WriteString("  Leagues:\n")
		for _, l := range e.Leagues.Classic {
			fmt.Fprintf(&b, "    %s: rank %d of %d\n", l.Name, l.EntryRank, l.RankCount)
		}
	}
	staleNote(&b, report.Stale)
	return textResult(b.String()), nil, nil
}

type standingsInput struct {
	RequestID string `json:"request_id" jsonschema:"the request ID returned by login_to_fpl"`
	League    string `json:"league" jsonschema:"the mini-league's name as the user said it"`
	Page      int    `json:"page,omitempty" jsonschema:"standings page, default 1"`
}

func (h *Handler) leagueStandings(ctx context.Context, req *mcp.CallToolRequest, in standingsInput) (*mcp.CallToolResult, any, error) {
	report, err := h.svc.LeagueStandings(ctx, in.RequestID, in.League, in.Page)
	if err != nil {
		return h.errResult(err), nil, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s, page %d:\n", report.League, report.Page)
	for _, row := range report.Rows {
		fmt.Fprintf(&b, "  %d. %s (%s), %d pts, GW %d\n", row.Rank, row.PlayerName, row.EntryName, row.Total, row.EventTotal)
	}
	if report.HasNext {
		b.WriteString("More pages available.\n")
	}
	staleNote(&b, report.Stale)
	return textResult(b.String()), nil, nil
}

type managerTeamInput struct {
	RequestID string `json:"request_id" jsonschema:"the request ID returned by login_to_fpl"`
	League    string `json:"league" jsonschema:"which of the user's leagues the manager is in"`
	Manager   string `json:"manager" jsonschema:"the manager's name or team name"`
	Gameweek  int    `json:"gameweek" jsonschema:"the gameweek to show"`
}

func (h *Handler) managerGameweekTeam(ctx context.Context, req *mcp.CallToolRequest, in managerTeamInput) (*mcp.CallToolResult, any, error) {
	report, err := h.svc.ManagerGameweekTeam(ctx, in.RequestID, in.League, in.Manager, in.Gameweek)
	if err != nil {
		return h.errResult(err), nil, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s), gameweek %d:\n", report.Manager, report.TeamName, report.Gameweek)
	fmt.Fprintf(&b, "  %d pts this gameweek, %d total, overall rank %d\n", report.Points, report.TotalPoints, report.OverallRank)
	fmt.Fprintf(&b, "  Team value £%.1fm, bank £%.1fm\n", report.TeamValue, report.Bank)
	if report.Transfers > 0 {
		fmt.Fprintf(&b, "  %d transfer(s), %d pts cost\n", report.Transfers, report.TransfersCost)
	}
	if report.ActiveChip != "" {
		fmt.Fprintf(&b, "  Chip played: %s\n", report.ActiveChip)
	}
	writePicks(&b, report.Picks)
	if report.PointsOnBench > 0 {
		fmt.Fprintf(&b, "  %d pts left on the bench\n", report.PointsOnBench)
	}
	for _, sub := range report.AutoSubs {
		fmt.Fprintf(&b, "  Auto-sub: %s off, %s on\n", sub[0], sub[1])
	}
	staleNote(&b, report.Stale)
	return textResult(b.String()), nil, nil
}

type compareManagersInput struct {
	RequestID string   `json:"request_id" jsonschema:"the request ID returned by login_to_fpl"`
	League    string   `json:"league" jsonschema:"which of the user's leagues the managers are in"`
	Managers  []string `json:"managers" jsonschema:"2 to 4 manager names to compare"`
	Gameweek  int      `json:"gameweek" jsonschema:"the gameweek to compare"`
}

func (h *Handler) compareManagers(ctx context.Context, req *mcp.CallToolRequest, in compareManagersInput) (*mcp.CallToolResult, any, error) {
	report, err := h.svc.CompareManagers(ctx, in.RequestID, in.League, in.Managers, in.Gameweek)
	if err != nil {
		return h.errResult(err), nil, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Gameweek %d comparison:\n", report.Gameweek)
	for _, team := range report.Teams {
		fmt.Fprintf(&b, "  %s (%s): %d pts, %d total", team.Manager, team.TeamName, team.Points, team.TotalPoints)
		if captain, ok := report.Captains[team.Manager]; ok {
			fmt.Fprintf(&b, ", captain %s", captain)
		}
		b.WriteByte('\n')
	}
	if len(report.Common) > 0 {
		fmt.Fprintf(&b, "Shared starters: %s\n", strings.Join(report.Common, ", "))
	}
	for manager, players := range report.Unique {
		if len(players) > 0 {
			fmt.Fprintf(&b, "Only %s: %s\n", manager, strings.Join(players, ", "))
		}
	}
	staleNote(&b, report.Stale)
	return textResult(b.String()), nil, nil
}

type transfersInput struct {
	RequestID  string   `json:"request_id" jsonschema:"the request ID returned by login_to_fpl"`
	PlayersOut []string `json:"players_out" jsonschema:"names of players to transfer out of the squad"`
	PlayersIn  []string `json:"players_in" jsonschema:"names of players to bring in, same order and length as players_out"`
	Confirm    bool     `json:"confirm,omitempty" jsonschema:"false previews the transfers, true executes them; only set true after the user has explicitly confirmed"`
}

func (h *Handler) makeTransfers(ctx context.Context, req *mcp.CallToolRequest, in transfersInput) (*mcp.CallToolResult, any, error) {
	plan, err := h.svc.PlanTransfers(ctx, in.RequestID, in.PlayersOut, in.PlayersIn)
	if err != nil {
		return h.errResult(err), nil, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Transfer plan for gameweek %d:\n", plan.Gameweek)
	for _, t := range plan.Transfers {
		fmt.Fprintf(&b, "  OUT %s (%s) sells for £%.1fm\n", t.Out.Name, t.Out.TeamShort, t.SellingPrice)
		fmt.Fprintf(&b, "  IN  %s (%s) costs £%.1fm\n", t.In.Name, t.In.TeamShort, t.BuyingPrice)
	}
	staleNote(&b, plan.Stale)

	if !in.Confirm {
		b.WriteString("\nNot executed. Show this plan to the user; call again with confirm=true once they explicitly agree.")
		return textResult(b.String()), nil, nil
	}

	if err := h.svc.ExecuteTransfers(ctx, in.RequestID, plan); err != nil {
		return h.errResult(err), nil, nil
	}
	b.WriteString("\nTransfers executed.")
	return textResult(b.String()), nil, nil
}
