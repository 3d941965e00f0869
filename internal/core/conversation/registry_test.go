package conversation

import (
	"MathBot/internal/adapters/memory"
	"MathBot/internal/core/domain"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry() *Registry {
	nopLogger := zerolog.Nop()
	return NewRegistry(memory.NewStepStore(), &nopLogger)
}

func TestRegistry_AtMostOnePerChat(t *testing.T) {
	ctx := t.Context()
	reg := newRegistry()

	require.NoError(t, reg.Register(ctx, 1, domain.StepMatrix, map[string]string{domain.ArgAction: "det"}))
	require.NoError(t, reg.Register(ctx, 1, domain.StepRing, map[string]string{domain.ArgCommand: "nilpotents"}))

	step, err := reg.Take(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, step)
	assert.Equal(t, domain.StepRing, step.Kind)
	assert.Equal(t, "nilpotents", step.Arg(domain.ArgCommand))

	next, err := reg.Take(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, next)
}

func TestRegistry_ReRegisterKeepsDialogueAlive(t *testing.T) {
	ctx := t.Context()
	reg := newRegistry()

	require.NoError(t, reg.Register(ctx, 3, domain.StepInverseModulo, nil))

	step, err := reg.Take(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, step)

	// The continuation asks for the element, binding the modulus.
	require.NoError(t, reg.Register(ctx, 3, domain.StepInverseElem, map[string]string{domain.ArgModulo: "26"}))

	step, err = reg.Take(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, step)
	assert.Equal(t, domain.StepInverseElem, step.Kind)
	assert.Equal(t, "26", step.Arg(domain.ArgModulo))
}

func TestRegistry_Clear(t *testing.T) {
	ctx := t.Context()
	reg := newRegistry()

	require.NoError(t, reg.Register(ctx, 8, domain.StepReportText, nil))
	require.NoError(t, reg.Register(ctx, 9, domain.StepCalc, nil))
	require.NoError(t, reg.Clear(ctx, 8))

	cleared, err := reg.Take(ctx, 8)
	require.NoError(t, err)
	assert.Nil(t, cleared)

	other, err := reg.Take(ctx, 9)
	require.NoError(t, err)
	assert.NotNil(t, other, "clearing one chat leaves the others alone")
}
