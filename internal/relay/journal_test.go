package relay

import (
	"path/filepath"
	"testing"
	"time"

	"payment-terminal-bridge/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := OpenJournal(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestJournal_Lifecycle(t *testing.T) {
	j := openTestJournal(t)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	first := &domain.RelayCommand{ID: uuid.New(), Type: "sale", TargetDevice: "reader-a", Sequence: 7}
	second := &domain.RelayCommand{ID: uuid.New(), Type: domain.RelayCommandReset, TargetDevice: "reader-a", Sequence: 8}
	require.NoError(t, j.Begin(second, start.Add(time.Second)))
	require.NoError(t, j.Begin(first, start))

	pending, err := j.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].CommandID)
	assert.Equal(t, int64(7), pending[0].Sequence)
	assert.False(t, pending[0].Executed())

	require.NoError(t, j.Record(first.ID, domain.RelayStatusCompleted, []byte(`{"approved":true}`), nil, false))
	e, err := j.Get(first.ID)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.True(t, e.Executed())
	assert.JSONEq(t, `{"approved":true}`, string(e.Result))

	require.NoError(t, j.Complete(first.ID))
	pending, err = j.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].CommandID)
}

func TestJournal_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := OpenJournal(path)
	require.NoError(t, err)

	cmd := &domain.RelayCommand{ID: uuid.New(), Type: "sale", TargetDevice: "reader-a"}
	require.NoError(t, j.Begin(cmd, time.Now()))
	require.NoError(t, j.Close())

	j, err = OpenJournal(path)
	require.NoError(t, err)
	defer j.Close()

	pending, err := j.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, cmd.ID, pending[0].CommandID)
}

func TestJournal_RecordUnknownEntry(t *testing.T) {
	j := openTestJournal(t)
	assert.Error(t, j.Record(uuid.New(), domain.RelayStatusFailed, nil, nil, false))

	e, err := j.Get(uuid.New())
	assert.NoError(t, err)
	assert.Nil(t, e)
}
