package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type teamInput struct {
	Name string `json:"name" jsonschema:"the club's name, e.g. Arsenal or Spurs"`
}

func (h *Handler) teamInfo(ctx context.Context, req *mcp.CallToolRequest, in teamInput) (*mcp.CallToolResult, any, error) {
	report, err := h.svc.TeamInfo(ctx, in.Name)
	if err != nil {
		return h.errResult(err), nil, nil
	}

	t := report.Team
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s), overall strength %d\n", t.Name, t.ShortName, t.Strength)
	fmt.Fprintf(&b, "  Attack: %d home / %d away\n", t.StrengthAttackHome, t.StrengthAttackAway)
	fmt.Fprintf(&b, "  Defence: %d home / %d away\n", t.StrengthDefenceHome, t.StrengthDefenceAway)
	staleNote(&b, report.Stale)
	return textResult(b.String()), nil, nil
}

type listTeamsInput struct{}

func (h *Handler) listTeams(ctx context.Context, req *mcp.CallToolRequest, in listTeamsInput) (*mcp.CallToolResult, any, error) {
	report, err := h.svc.ListTeams(ctx)
	if err != nil {
		return h.errResult(err), nil, nil
	}

	var b strings.Builder
	for _, t := range report.Teams {
		fmt.Fprintf(&b, "%s (%s)\n", t.Name, t.ShortName)
	}
	staleNote(&b, report.Stale)
	return textResult(b.String()), nil, nil
}

func (h *Handler) teamSquad(ctx context.Context, req *mcp.CallToolRequest, in teamInput) (*mcp.CallToolResult, any, error) {
	report, err := h.svc.TeamSquad(ctx, in.Name)
	if err != nil {
		return h.errResult(err), nil, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s squad:\n", report.Team.Name)
	for _, card := range report.Players {
		b.WriteString("  ")
		writeCardLine(&b, card)
	}
	staleNote(&b, report.Stale)
	return textResult(b.String()), nil, nil
}

type teamFixturesInput struct {
	Name      string `json:"name" jsonschema:"the club's name"`
	Gameweeks int    `json:"gameweeks,omitempty" jsonschema:"how many upcoming gameweeks to analyze, default 5"`
}

func (h *Handler) teamFixtures(ctx context.Context, req *mcp.CallToolRequest, in teamFixturesInput) (*mcp.CallToolResult, any, error) {
	report, err := h.svc.TeamFixtures(ctx, in.Name, in.Gameweeks)
	if err != nil {
		return h.errResult(err), nil, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s upcoming fixtures:\n", report.Team.Name)
	for _, f := range report.Fixtures {
		fmt.Fprintf(&b, "  GW%d %s (%s) difficulty %d\n", f.Gameweek, f.Opponent, homeAway(f.Home), f.Difficulty)
	}
	if len(report.Fixtures) == 0 {
		b.WriteString("  none in the requested window\n")
	} else {
		fmt.Fprintf(&b, "Average difficulty %.1f (1 easiest, 5 hardest)\n", report.AvgDifficulty)
	}
	staleNote(&b, report.Stale)
	return textResult(b.String()), nil, nil
}
