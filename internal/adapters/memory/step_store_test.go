package memory

import (
	"MathBot/internal/core/domain"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepStore_SaveOverwrites(t *testing.T) {
	ctx := t.Context()
	store := NewStepStore()

	require.NoError(t, store.Save(ctx, &domain.PendingStep{ChatID: 1, Kind: domain.StepMatrix, Args: map[string]string{domain.ArgAction: "det"}}))
	require.NoError(t, store.Save(ctx, &domain.PendingStep{ChatID: 1, Kind: domain.StepCalc}))

	step, err := store.Take(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, step)
	assert.Equal(t, domain.StepCalc, step.Kind)
	assert.Empty(t, step.Arg(domain.ArgAction))
}

func TestStepStore_TakeRemoves(t *testing.T) {
	ctx := t.Context()
	store := NewStepStore()

	require.NoError(t, store.Save(ctx, &domain.PendingStep{ChatID: 7, Kind: domain.StepFactorize}))

	first, err := store.Take(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := store.Take(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, second, "a taken step must not be delivered twice")
}

func TestStepStore_DeleteAndIsolation(t *testing.T) {
	ctx := t.Context()
	store := NewStepStore()

	args := map[string]string{domain.ArgModulo: "7"}
	require.NoError(t, store.Save(ctx, &domain.PendingStep{ChatID: 1, Kind: domain.StepInverseElem, Args: args}))
	require.NoError(t, store.Save(ctx, &domain.PendingStep{ChatID: 2, Kind: domain.StepLogic}))

	// Mutating the caller's map must not leak into the store.
	args[domain.ArgModulo] = "9"

	require.NoError(t, store.Delete(ctx, 2))
	gone, err := store.Take(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, gone)

	kept, err := store.Take(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.Equal(t, "7", kept.Arg(domain.ArgModulo))
}
