package service

import (
	"context"

	"github.com/fantasytools/fpl-agent/fpl"
	apperrors "github.com/fantasytools/fpl-agent/internal/errors"
)

// PlannedTransfer is one resolved in/out swap with its prices.
type PlannedTransfer struct {
	Out          PlayerCard
	In           PlayerCard
	SellingPrice float64
	BuyingPrice  float64
}

// TransferPlan is a fully resolved, priced transfer set. Plans are
// advisory until executed; executing is the only account-mutating call
// the core performs and requires the caller's explicit confirmation.
type TransferPlan struct {
	EntryID   int
	Gameweek  int
	Transfers []PlannedTransfer
	Stale     bool

	payload *fpl.TransferPayload
}

// PlanTransfers resolves out/in player names against the caller's
// current squad and the market, and prices each swap. Any name that
// fails to resolve unambiguously fails the whole plan; a player not in
// the caller's squad cannot be transferred out.
func (s *Service) PlanTransfers(ctx context.Context, requestID string, namesOut, namesIn []string) (*TransferPlan, error) {
	if len(namesOut) == 0 || len(namesOut) != len(namesIn) {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidQuery, "service: transfers out (%d) must match transfers in (%d)", len(namesOut), len(namesIn))
	}
	session, err := s.sessions.RequireActive(requestID)
	if err != nil {
		return nil, err
	}

	b, stale, err := s.bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	gw := fpl.CurrentGameweek(b.Events, s.nowTime())
	if gw == nil {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "service: no upcoming gameweek to transfer for")
	}
	team, err := s.client.MyTeam(ctx, session.Credential, session.EntryID)
	if err != nil {
		return nil, err
	}
	selling := make(map[int]int, len(team.Picks))
	for _, pick := range team.Picks {
		selling[pick.Element] = pick.SellingPrice
	}

	plan := &TransferPlan{
		EntryID:  session.EntryID,
		Gameweek: gw.ID,
		Stale:    stale,
		payload: &fpl.TransferPayload{
			Entry: session.EntryID,
			Event: gw.ID,
		},
	}
	for i := range namesOut {
		_, outRef, _, err := s.resolvePlayer(ctx, namesOut[i])
		if err != nil {
			return nil, err
		}
		_, inRef, _, err := s.resolvePlayer(ctx, namesIn[i])
		if err != nil {
			return nil, err
		}
		sellingPrice, owned := selling[outRef.ID]
		if !owned {
			return nil, apperrors.Wrapf(apperrors.ErrInvalidQuery, "service: you do not own %s", outRef.Name)
		}
		outElem, err := elementByID(b, outRef.ID)
		if err != nil {
			return nil, err
		}
		inElem, err := elementByID(b, inRef.ID)
		if err != nil {
			return nil, err
		}
		plan.Transfers = append(plan.Transfers, PlannedTransfer{
			Out:          playerCard(b, outElem),
			In:           playerCard(b, inElem),
			SellingPrice: float64(sellingPrice) / 10,
			BuyingPrice:  inElem.Price(),
		})
		plan.payload.Transfers = append(plan.payload.Transfers, fpl.Transfer{
			ElementOut:    outRef.ID,
			ElementIn:     inRef.ID,
			SellingPrice:  sellingPrice,
			PurchasePrice: inElem.NowCost,
		})
	}
	return plan, nil
}

// ExecuteTransfers posts a previously built plan upstream. This is
// irreversible; callers must have confirmed the plan with the user.
func (s *Service) ExecuteTransfers(ctx context.Context, requestID string, plan *TransferPlan) error {
	session, err := s.sessions.RequireActive(requestID)
	if err != nil {
		return err
	}
	if plan == nil || plan.payload == nil || len(plan.payload.Transfers) == 0 {
		return apperrors.Wrapf(apperrors.ErrInvalidQuery, "service: empty transfer plan")
	}
	if plan.EntryID != session.EntryID {
		return apperrors.Wrapf(apperrors.ErrInvalidQuery, "service: plan belongs to entry %d, session is entry %d", plan.EntryID, session.EntryID)
	}
	if _, err := s.client.ExecuteTransfers(ctx, session.Credential, plan.payload); err != nil {
		return err
	}
	s.log.Info().Int("entry_id", plan.EntryID).Int("gameweek", plan.Gameweek).
		Int("transfers", len(plan.Transfers)).Msg("transfers executed")
	return nil
}
