package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adoreport/adoreport/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestRecordAndLoadEntries(t *testing.T) {
	root := Root(t.TempDir())

	older := &model.History{
		ID:        "aaaaaaaa-1111",
		Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Publish:   &model.Publish{State: "disabled"},
	}
	newer := &model.History{
		ID:        "bbbbbbbb-2222",
		Timestamp: time.Date(2024, 1, 3, 3, 4, 5, 0, time.UTC),
		Publish:   &model.Publish{RunID: 42, State: "completed", Published: 3},
	}

	dir, err := Record(root, older)
	require.NoError(t, err)
	require.Equal(t, "20240102-030405-norun-aaaaaaaa", filepath.Base(dir))

	dir, err = Record(root, newer)
	require.NoError(t, err)
	require.Equal(t, "20240103-030405-run42-bbbbbbbb", filepath.Base(dir))

	entries, err := LoadEntries(zerolog.Nop(), root)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, newer.ID, entries[0].History.ID)
	require.Equal(t, int64(3), entries[0].History.Publish.Published)
	require.Equal(t, older.ID, entries[1].History.ID)
}

func TestLoadEntries_MissingRoot(t *testing.T) {
	entries, err := LoadEntries(zerolog.Nop(), filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestLoadEntries_SkipsCorruptFiles(t *testing.T) {
	root := Root(t.TempDir())
	bad := filepath.Join(root, "history", "broken")
	require.NoError(t, os.MkdirAll(bad, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(bad, fileName), []byte("{"), 0644))

	_, err := Record(root, &model.History{ID: "cccccccc", Timestamp: time.Now()})
	require.NoError(t, err)

	entries, err := LoadEntries(zerolog.Nop(), root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "cccccccc", entries[0].History.ID)
}
