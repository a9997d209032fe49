package variables_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"daocore/variables"
)

func TestRepository_UpdateAt_ImmediateValue(t *testing.T) {
	now := uint64(1000)
	repo := variables.New(variables.NewMemoryState(), func() uint64 { return now })

	require.NoError(t, repo.UpdateAt("k", []byte("v1"), nil))
	v, ok := repo.Get("k")
	require.True(t, ok)
	require.Equal(t, "v1", string(v))
}

func TestRepository_UpdateAt_ScheduledActivation(t *testing.T) {
	now := uint64(1000)
	repo := variables.New(variables.NewMemoryState(), func() uint64 { return now })

	require.NoError(t, repo.UpdateAt("k", []byte("v1"), nil))

	activation := now + 100
	require.NoError(t, repo.UpdateAt("k", []byte("v2"), &activation))

	v, ok := repo.Get("k")
	require.True(t, ok)
	require.Equal(t, "v1", string(v), "scheduled value not yet active")

	now = activation + 1
	v, ok = repo.Get("k")
	require.True(t, ok)
	require.Equal(t, "v2", string(v), "scheduled value promoted once its activation time has passed")
}

func TestRepository_UpdateAt_RejectsPastActivation(t *testing.T) {
	now := uint64(1000)
	repo := variables.New(variables.NewMemoryState(), func() uint64 { return now })

	past := now - 1
	err := repo.UpdateAt("k", []byte("v"), &past)
	require.Error(t, err)
}

func TestRepository_UpdateAt_PromotesDueScheduleBeforeOverwriting(t *testing.T) {
	now := uint64(1000)
	repo := variables.New(variables.NewMemoryState(), func() uint64 { return now })

	require.NoError(t, repo.UpdateAt("k", []byte("v1"), nil))
	activation := now + 10
	require.NoError(t, repo.UpdateAt("k", []byte("v2"), &activation))

	now = activation + 1
	next := now + 50
	require.NoError(t, repo.UpdateAt("k", []byte("v3"), &next))

	v, ok := repo.Get("k")
	require.True(t, ok)
	require.Equal(t, "v2", string(v), "the due v2 schedule promotes to current before v3 is scheduled on top")
}

func TestRepository_All_ReflectsEffectiveValues(t *testing.T) {
	now := uint64(1000)
	repo := variables.New(variables.NewMemoryState(), func() uint64 { return now })
	require.NoError(t, repo.UpdateAt("a", []byte("1"), nil))
	require.NoError(t, repo.UpdateAt("b", []byte("2"), nil))

	all := repo.All()
	require.Equal(t, "1", string(all["a"]))
	require.Equal(t, "2", string(all["b"]))
}

func TestMustGetString_MissingKeyReturnsEmpty(t *testing.T) {
	repo := variables.New(variables.NewMemoryState(), func() uint64 { return 0 })
	require.Equal(t, "", variables.MustGetString(repo, "missing"))
}
