package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type playerInput struct {
	Name string `json:"name" jsonschema:"the player's name as the user typed it"`
}

func (h *Handler) findPlayer(ctx context.Context, req *mcp.CallToolRequest, in playerInput) (*mcp.CallToolResult, any, error) {
	report, err := h.svc.FindPlayer(ctx, in.Name)
	if err != nil {
		return h.errResult(err), nil, nil
	}

	var b strings.Builder
	writeCard(&b, report.Player)
	if len(report.Alternates) > 0 {
		b.WriteString("\nOther possible matches: ")
		names := make([]string, 0, len(report.Alternates))
		for _, c := range report.Alternates {
			names = append(names, c.Name)
		}
		b.WriteString(strings.Join(names, ", "))
		b.WriteByte('\n')
	}
	staleNote(&b, report.Stale)
	return textResult(b.String()), nil, nil
}

func (h *Handler) playerSummary(ctx context.Context, req *mcp.CallToolRequest, in playerInput) (*mcp.CallToolResult, any, error) {
	report, err := h.svc.PlayerSummary(ctx, in.Name)
	if err != nil {
		return h.errResult(err), nil, nil
	}

	var b strings.Builder
	writeCard(&b, report.Player)

	if len(report.Fixtures) > 0 {
		b.WriteString("\nUpcoming fixtures:\n")
		for _, f := range report.Fixtures {
			fmt.Fprintf(&b, "  GW%d %s (%s) difficulty %d\n", f.Gameweek, f.Opponent, homeAway(f.Home), f.Difficulty)
		}
	}
	if len(report.History) > 0 {
		b.WriteString("\nRecent gameweeks:\n")
		history := report.History
		if len(history) > 5 {
			history = history[len(history)-5:]
		}
		for _, gw := range history {
			fmt.Fprintf(&b, "  GW%d vs %s (%s): %d pts, %d min, %dG %dA\n", gw.Round, gw.Opponent, homeAway(gw.Home), gw.Points, gw.Minutes, gw.Goals, gw.Assists)
		}
	}
	if len(report.PastSeasons) > 0 {
		b.WriteString("\nPast seasons:\n")
		for _, season := range report.PastSeasons {
			fmt.Fprintf(&b, "  %s: %d pts, %dG %dA, £%.1fm to £%.1fm\n", season.Season, season.Points, season.Goals, season.Assists, season.StartCost, season.EndCost)
		}
	}
	staleNote(&b, report.Stale)
	return textResult(b.String()), nil, nil
}

type compareInput struct {
	Names []string `json:"names" jsonschema:"2 to 5 player names to compare"`
}

func (h *Handler) comparePlayers(ctx context.Context, req *mcp.CallToolRequest, in compareInput) (*mcp.CallToolResult, any, error) {
	report, err := h.svc.ComparePlayers(ctx, in.Names)
	if err != nil {
		return h.errResult(err), nil, nil
	}

	var b strings.Builder
	for i, card := range report.Players {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeCard(&b, card)
	}
	staleNote(&b, report.Stale)
	return textResult(b.String()), nil, nil
}

type topPlayersInput struct{}

func (h *Handler) topPlayers(ctx context.Context, req *mcp.CallToolRequest, in topPlayersInput) (*mcp.CallToolResult, any, error) {
	report, err := h.svc.TopPlayers(ctx)
	if err != nil {
		return h.errResult(err), nil, nil
	}

	var b strings.Builder
	for _, position := range []string{"GKP", "DEF", "MID", "FWD"} {
		cards := report.Positions[position]
		if len(cards) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s:\n", position)
		for _, card := range cards {
			fmt.Fprintf(&b, "  %s (%s) £%.1fm, %s ppg, %d pts\n", card.Name, card.TeamShort, card.Price, card.PointsPerGame, card.TotalPoints)
		}
	}
	staleNote(&b, report.Stale)
	return textResult(b.String()), nil, nil
}
