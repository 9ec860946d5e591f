package resolver_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/fantasytools/fpl-agent/fpl"
	apperrors "github.com/fantasytools/fpl-agent/internal/errors"
	"github.com/fantasytools/fpl-agent/resolver"
)

func testBootstrap() *fpl.Bootstrap {
	return &fpl.Bootstrap{
		Teams: []fpl.Team{
			{ID: 1, Name: "Arsenal", ShortName: "ARS", Strength: 5},
			{ID: 2, Name: "Liverpool", ShortName: "LIV", Strength: 5},
		},
		ElementTypes: []fpl.ElementType{
			{ID: 3, SingularName: "Midfielder", SingularNameShort: "MID"},
		},
		Elements: []fpl.Element{
			{ID: 100, WebName: "M.Salah", FirstName: "Mohamed", SecondName: "Salah", Team: 2, ElementType: 3, NowCost: 130, SelectedByPercent: "45.2"},
			{ID: 200, WebName: "Ødegaard", FirstName: "Martin", SecondName: "Ødegaard", Team: 1, ElementType: 3, NowCost: 83, SelectedByPercent: "18.0"},
		},
	}
}

func TestResolveBeforeIndexBuilt(t *testing.T) {
	r := resolver.New(zerolog.Nop())

	_, err := r.Resolve(resolver.KindPlayer, "Salah")
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrUpstreamUnavailable))
}

func TestRebuildFromBootstrap(t *testing.T) {
	r := resolver.New(zerolog.Nop())
	r.RebuildFromBootstrap(testBootstrap())

	ref, err := r.Resolve(resolver.KindPlayer, "mohamed salah")
	require.NoError(t, err)
	require.Equal(t, 100, ref.ID)
	require.Equal(t, "M.Salah", ref.Name)

	display, err := r.Rehydrate(resolver.KindPlayer, 100)
	require.NoError(t, err)
	require.Equal(t, "Liverpool MID £13.0m", display.Detail)

	teamRef, err := r.Resolve(resolver.KindTeam, "LIV")
	require.NoError(t, err)
	require.Equal(t, 2, teamRef.ID)
	require.Equal(t, "Liverpool", teamRef.Name)
}

func TestRebuildSwapsSnapshotWholesale(t *testing.T) {
	r := resolver.New(zerolog.Nop())
	r.RebuildFromBootstrap(testBootstrap())

	replacement := testBootstrap()
	replacement.Elements = replacement.Elements[:1]
	r.RebuildFromBootstrap(replacement)

	_, err := r.Resolve(resolver.KindPlayer, "Ødegaard")
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrNoMatch))

	ref, err := r.Resolve(resolver.KindPlayer, "Salah")
	require.NoError(t, err)
	require.Equal(t, 100, ref.ID)
}

func TestRegistryOnlyHoldsPlayersAndTeams(t *testing.T) {
	r := resolver.New(zerolog.Nop())
	r.RebuildFromBootstrap(testBootstrap())

	_, err := r.Resolve(resolver.KindLeague, "work league")
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrInternal))
}

func TestResolverOptionsPropagateToIndexes(t *testing.T) {
	r := resolver.New(zerolog.Nop(), resolver.WithThreshold(0.99))
	r.RebuildFromBootstrap(testBootstrap())

	_, err := r.Resolve(resolver.KindPlayer, "Salagh")
	require.Error(t, err)
	require.True(t, apperrors.Is(err, apperrors.ErrNoMatch))
}
