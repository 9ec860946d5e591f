package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/fantasytools/fpl-agent/auth"
)

type loginInput struct{}

func (h *Handler) loginToFPL(ctx context.Context, req *mcp.CallToolRequest, in loginInput) (*mcp.CallToolResult, any, error) {
	requestID := h.svc.Sessions().BeginLogin()
	url := strings.TrimRight(h.cfg.PublicBaseURL, "/") + "/login/" + requestID

	var b strings.Builder
	fmt.Fprintf(&b, "Login started. Ask the user to open this link in their browser and follow the steps:\n\n%s\n\n", url)
	fmt.Fprintf(&b, "Request ID: %s\n", requestID)
	b.WriteString("When the user says they are done, call check_login_status with this request ID.")
	return textResult(b.String()), nil, nil
}

type sessionInput struct {
	RequestID string `json:"request_id" jsonschema:"the request ID returned by login_to_fpl"`
}

func (h *Handler) checkLoginStatus(ctx context.Context, req *mcp.CallToolRequest, in sessionInput) (*mcp.CallToolResult, any, error) {
	session, err := h.svc.Sessions().Get(in.RequestID)
	if err != nil {
		return h.errResult(err), nil, nil
	}

	switch session.State {
	case auth.StatePending:
		return textResult("The user has not submitted their token yet. Ask them to finish the login page, then check again."), nil, nil
	case auth.StateAwaitingConfirmation:
		session, err = h.svc.Sessions().Confirm(ctx, in.RequestID)
		if err != nil {
			return h.errResult(err), nil, nil
		}
		return textResult(fmt.Sprintf("Logged in. The user's FPL team ID is %d. Authenticated tools are now available with this request ID.", session.EntryID)), nil, nil
	case auth.StateActive:
		return textResult(fmt.Sprintf("Already logged in as team ID %d.", session.EntryID)), nil, nil
	case auth.StateFailed:
		reason := session.Reason
		if reason == "" {
			reason = "unknown reason"
		}
		return textResult("Login failed: " + reason + ". Start over with login_to_fpl."), nil, nil
	default:
		return textResult(fmt.Sprintf("Login is %s. Start over with login_to_fpl.", session.State)), nil, nil
	}
}

func (h *Handler) logoutFromFPL(ctx context.Context, req *mcp.CallToolRequest, in sessionInput) (*mcp.CallToolResult, any, error) {
	if err := h.svc.Sessions().Logout(in.RequestID); err != nil {
		return h.errResult(err), nil, nil
	}
	return textResult("Logged out. The credential has been discarded."), nil, nil
}
