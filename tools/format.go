package tools

import (
	"fmt"
	"strings"

	"github.com/fantasytools/fpl-agent/service"
)

// statusNote explains a non-available player status letter.
func statusNote(card service.PlayerCard) string {
	switch card.Status {
	case "", "a":
		return ""
	case "i":
		return "injured"
	case "s":
		return "suspended"
	case "u":
		return "unavailable"
	case "d":
		return "doubtful"
	default:
		return "flagged"
	}
}

func writeCard(b *strings.Builder, card service.PlayerCard) {
	fmt.Fprintf(b, "%s (%s, %s, £%.1fm)\n", card.Name, card.Team, card.Position, card.Price)
	fmt.Fprintf(b, "  Points: %d total, %s per game, form %s\n", card.TotalPoints, card.PointsPerGame, card.Form)
	fmt.Fprintf(b, "  Goals %d, assists %d, clean sheets %d, bonus %d, %d minutes\n", card.Goals, card.Assists, card.CleanSheets, card.Bonus, card.Minutes)
	fmt.Fprintf(b, "  Selected by %s%%\n", card.SelectedBy)
	if note := statusNote(card); note != "" {
		line := note
		if card.News != "" {
			line += ": " + card.News
		}
		fmt.Fprintf(b, "  Status: %s\n", line)
	}
}

func writeCardLine(b *strings.Builder, card service.PlayerCard) {
	fmt.Fprintf(b, "%s (%s, %s) £%.1fm, %d pts, form %s", card.Name, card.TeamShort, card.Position, card.Price, card.TotalPoints, card.Form)
	if note := statusNote(card); note != "" {
		fmt.Fprintf(b, " [%s]", note)
	}
	b.WriteByte('\n')
}

func writePicks(b *strings.Builder, picks []service.SquadPick) {
	for _, pick := range picks {
		if pick.Position == 12 {
			b.WriteString("Bench:\n")
		}
		b.WriteString("  ")
		marker := ""
		if pick.Captain {
			marker = " (C)"
		} else if pick.ViceCaptain {
			marker = " (VC)"
		}
		fmt.Fprintf(b, "%d. %s (%s, %s) £%.1fm%s\n", pick.Position, pick.Player.Name, pick.Player.TeamShort, pick.Player.Position, pick.SellingPrice, marker)
	}
}

// staleNote appends the degraded-data warning when a report was served
// from an expired cache entry.
func staleNote(b *strings.Builder, stale bool) {
	if stale {
		b.WriteString("\nNote: the FPL API is unreachable, this data is from an older cache and may be out of date.\n")
	}
}

func homeAway(home bool) string {
	if home {
		return "H"
	}
	return "A"
}
