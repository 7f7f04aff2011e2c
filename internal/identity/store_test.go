package identity

import (
	"os"
	"testing"

	"ai_todo/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestLoadWithoutStateIsEmpty(t *testing.T) {
	t.Setenv(EnvOverride, "")
	s := NewStore(t.TempDir())

	v, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, "", v)
}

func TestSetLoadClear(t *testing.T) {
	t.Setenv(EnvOverride, "")
	dir := t.TempDir()
	s := NewStore(dir + "/nested")

	v, err := s.Set("  alice  ")
	require.NoError(t, err)
	require.Equal(t, "alice", v)

	// a fresh store on the same dir sees it, as after a restart
	loaded, err := NewStore(dir + "/nested").Load()
	require.NoError(t, err)
	require.Equal(t, "alice", loaded)

	require.NoError(t, s.Clear())
	require.NoError(t, s.Clear())

	loaded, err = s.Load()
	require.NoError(t, err)
	require.Equal(t, "", loaded)
}

func TestSetRejectsBlank(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.Set("   ")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, statErr := os.Stat(s.Path())
	require.True(t, os.IsNotExist(statErr))
}

func TestEnvOverrideWins(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.Set("alice")
	require.NoError(t, err)

	t.Setenv(EnvOverride, "bob")
	v, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, "bob", v)
}

func TestLoadCorruptFile(t *testing.T) {
	t.Setenv(EnvOverride, "")
	s := NewStore(t.TempDir())
	require.NoError(t, os.WriteFile(s.Path(), []byte("identifier: [unclosed"), 0o600))

	_, err := s.Load()
	require.Error(t, err)
}
