// Package tools exposes the agent's operations as MCP tools over the
// official Go SDK. Each tool is a thin adapter: decode arguments, call
// the orchestrator, render the report as text. Domain failures (no
// match, ambiguity, missing login) come back as tool errors with
// actionable messages rather than protocol errors.
package tools

import (
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"

	"github.com/fantasytools/fpl-agent/internal/config"
	apperrors "github.com/fantasytools/fpl-agent/internal/errors"
	"github.com/fantasytools/fpl-agent/resolver"
	"github.com/fantasytools/fpl-agent/service"
)

// Handler carries the dependencies shared by every tool.
type Handler struct {
	svc *service.Service
	cfg *config.Config
	log zerolog.Logger
}

// NewServer builds the MCP server with every tool registered.
func NewServer(svc *service.Service, cfg *config.Config, logger zerolog.Logger, version string) *mcp.Server {
	h := &Handler{svc: svc, cfg: cfg, log: logger}

	server := mcp.NewServer(&mcp.Implementation{Name: "fpl-agent", Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "login_to_fpl",
		Description: "Start connecting the user's FPL account. Returns a login link to open in a browser and a request ID for later calls. The user pastes their FPL access token into the page; it never passes through this conversation.",
	}, h.loginToFPL)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "check_login_status",
		Description: "Check whether a login started with login_to_fpl has finished. Call this after the user says they have completed the login page.",
	}, h.checkLoginStatus)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "logout_from_fpl",
		Description: "Disconnect the user's FPL account and discard their credential.",
	}, h.logoutFromFPL)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_player",
		Description: "Look up one player by name (nicknames and misspellings are fine) and return their price, form, points and availability.",
	}, h.findPlayer)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_player_summary",
		Description: "Return a player's upcoming fixtures with difficulty, recent gameweek history and past seasons.",
	}, h.playerSummary)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "compare_players",
		Description: "Compare 2-5 players side by side on price, form, points and underlying stats.",
	}, h.comparePlayers)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_top_players",
		Description: "Return the best-performing players in each position by points per game.",
	}, h.topPlayers)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_team_info",
		Description: "Return one Premier League club's strength ratings.",
	}, h.teamInfo)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_all_teams",
		Description: "List every Premier League club with its short name.",
	}, h.listTeams)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_players_by_team",
		Description: "List one club's players ordered by position and price.",
	}, h.teamSquad)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_team_fixtures",
		Description: "Analyze a club's upcoming fixtures and average difficulty over the next gameweeks.",
	}, h.teamFixtures)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_current_gameweek",
		Description: "Return the current gameweek and its deadline. Before the deadline this is the gameweek transfers count for.",
	}, h.currentGameweek)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_gameweek_info",
		Description: "Return one gameweek (1-38) with its deadline, average score and most-captained player.",
	}, h.gameweekInfo)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_gameweek_fixtures",
		Description: "Return every match of one gameweek with scores where finished.",
	}, h.gameweekFixtures)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_all_gameweeks",
		Description: "List every gameweek of the season with deadlines and, once played, average scores.",
	}, h.listGameweeks)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_my_squad",
		Description: "Return the logged-in user's current squad with selling prices, bank balance and free transfers. Requires login.",
	}, h.mySquad)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "analyze_squad_recent_performance",
		Description: "Break down how each player in the user's squad performed over the last gameweeks: points, minutes, goals and assists. Requires login.",
	}, h.squadRecentPerformance)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_my_performance",
		Description: "Return the logged-in user's season summary: points, overall rank, team value and mini-leagues. Requires login.",
	}, h.myPerformance)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_league_standings",
		Description: "Return the table of one of the user's mini-leagues, found by league name. Requires login.",
	}, h.leagueStandings)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_manager_gameweek_team",
		Description: "Return a rival manager's team for one gameweek, found by league and manager name. Requires login.",
	}, h.managerGameweekTeam)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "compare_managers",
		Description: "Compare 2-4 managers from one of the user's leagues for a gameweek: captains, shared players and differentials. Requires login.",
	}, h.compareManagers)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "make_transfers",
		Description: "Plan transfers by player name. With confirm=false this only prices the swaps; set confirm=true, after the user explicitly agrees, to execute them. Executing is irreversible. Requires login.",
	}, h.makeTransfers)

	return server
}

// textResult wraps rendered report text in a successful tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// errResult converts a domain error into a tool error the model can act
// on. Resolver errors carry their candidate lists into the message.
func (h *Handler) errResult(err error) *mcp.CallToolResult {
	var ambiguous *resolver.AmbiguousMatchError
	var noMatch *resolver.NoMatchError

	var msg string
	switch {
	case errors.As(err, &ambiguous):
		var b strings.Builder
		fmt.Fprintf(&b, "%q matches several %ss equally well. Ask the user which one they mean:\n", ambiguous.Query, ambiguous.Kind)
		for _, c := range ambiguous.Candidates {
			fmt.Fprintf(&b, "- %s\n", c.Name)
		}
		msg = b.String()
	case errors.As(err, &noMatch):
		var b strings.Builder
		fmt.Fprintf(&b, "No %s matches %q.", noMatch.Kind, noMatch.Query)
		if len(noMatch.Alternates) > 0 {
			b.WriteString(" Closest names:\n")
			for _, c := range noMatch.Alternates {
				fmt.Fprintf(&b, "- %s\n", c.Name)
			}
		}
		msg = b.String()
	case apperrors.Is(err, apperrors.ErrAuthenticationRequired):
		msg = "Not logged in. Use login_to_fpl to connect the user's FPL account first."
	case apperrors.Is(err, apperrors.ErrSessionExpired):
		msg = "The FPL session has expired. Use login_to_fpl to reconnect."
	case apperrors.Is(err, apperrors.ErrUpstreamUnavailable):
		msg = "The FPL API is unreachable right now and no cached data is available. Try again shortly."
	case apperrors.Is(err, apperrors.ErrInvalidQuery):
		msg = err.Error()
	case apperrors.Is(err, apperrors.ErrNotFound):
		msg = err.Error()
	default:
		h.log.Err(err).Msg("tool call failed")
		msg = "Something went wrong: " + err.Error()
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: msg}},
		IsError: true,
	}
}
