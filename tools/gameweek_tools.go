package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fantasytools/fpl-agent/service"
)

func writeGameweek(b *strings.Builder, report *service.GameweekReport) {
	ev := report.Event
	fmt.Fprintf(b, "%s (GW%d), deadline %s\n", ev.Name, ev.ID, ev.DeadlineTime)
	if ev.Finished {
		b.WriteString("  Finished.\n")
	}
	if ev.AverageEntryScore > 0 {
		fmt.Fprintf(b, "  Average score %d", ev.AverageEntryScore)
		if ev.HighestScore != nil {
			fmt.Fprintf(b, ", highest %d", *ev.HighestScore)
		}
		b.WriteByte('\n')
	}
	if report.MostCaptained != "" {
		fmt.Fprintf(b, "  Most captained: %s\n", report.MostCaptained)
	}
	if report.MostSelected != "" {
		fmt.Fprintf(b, "  Most selected: %s\n", report.MostSelected)
	}
	if report.MostTransferredIn != "" {
		fmt.Fprintf(b, "  Most transferred in: %s\n", report.MostTransferredIn)
	}
}

type currentGameweekInput struct{}

func (h *Handler) currentGameweek(ctx context.Context, req *mcp.CallToolRequest, in currentGameweekInput) (*mcp.CallToolResult, any, error) {
	report, err := h.svc.CurrentGameweek(ctx)
	if err != nil {
		return h.errResult(err), nil, nil
	}

	var b strings.Builder
	writeGameweek(&b, report)
	staleNote(&b, report.Stale)
	return textResult(b.String()), nil, nil
}

func (h *Handler) listGameweeks(ctx context.Context, req *mcp.CallToolRequest, in currentGameweekInput) (*mcp.CallToolResult, any, error) {
	report, err := h.svc.ListGameweeks(ctx)
	if err != nil {
		return h.errResult(err), nil, nil
	}

	var b strings.Builder
	b.WriteString("Season gameweeks:\n")
	for _, ev := range report.Events {
		fmt.Fprintf(&b, "  GW%d, deadline %s", ev.ID, ev.DeadlineTime)
		switch {
		case ev.Finished:
			fmt.Fprintf(&b, ", finished, average %d", ev.AverageEntryScore)
		case ev.IsCurrent:
			b.WriteString(", current")
		case ev.IsNext:
			b.WriteString(", next")
		}
		b.WriteByte('\n')
	}
	staleNote(&b, report.Stale)
	return textResult(b.String()), nil, nil
}

type gameweekInput struct {
	Gameweek int `json:"gameweek" jsonschema:"the gameweek number, 1 to 38"`
}

func (h *Handler) gameweekInfo(ctx context.Context, req *mcp.CallToolRequest, in gameweekInput) (*mcp.CallToolResult, any, error) {
	report, err := h.svc.GameweekInfo(ctx, in.Gameweek)
	if err != nil {
		return h.errResult(err), nil, nil
	}

	var b strings.Builder
	writeGameweek(&b, report)
	staleNote(&b, report.Stale)
	return textResult(b.String()), nil, nil
}

func (h *Handler) gameweekFixtures(ctx context.Context, req *mcp.CallToolRequest, in gameweekInput) (*mcp.CallToolResult, any, error) {
	report, err := h.svc.GameweekFixtures(ctx, in.Gameweek)
	if err != nil {
		return h.errResult(err), nil, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Gameweek %d fixtures:\n", report.Gameweek)
	for _, m := range report.Matches {
		if m.Finished && m.HomeScore != nil && m.AwayScore != nil {
			fmt.Fprintf(&b, "  %s %d-%d %s\n", m.Home, *m.HomeScore, *m.AwayScore, m.Away)
			continue
		}
		fmt.Fprintf(&b, "  %s vs %s", m.Home, m.Away)
		if m.Kickoff != "" {
			fmt.Fprintf(&b, " at %s", m.Kickoff)
		}
		b.WriteByte('\n')
	}
	staleNote(&b, report.Stale)
	return textResult(b.String()), nil, nil
}
