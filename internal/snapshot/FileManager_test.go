package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starbot/internal/models"
	"starbot/internal/testutil"
)

func populatedStore(t *testing.T) models.StarStoreInterface {
	t.Helper()
	store := models.NewStarStore()
	store.RegisterUser("U1", "Al")
	store.RegisterUser("U2", "Bea")
	_, err := store.IncrementStar("U1", "2025-01-06")
	require.NoError(t, err)
	_, err = store.IncrementStar("U1", "2025-01-06")
	require.NoError(t, err)
	_, err = store.IncrementStar("U2", "2025-01-07")
	require.NoError(t, err)
	return store
}

func TestFileManager_SaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stars.dat")

	compressor, err := NewZstdCompressor()
	require.NoError(t, err)
	defer compressor.Close()

	source := populatedStore(t)
	fm := NewFileManager(compressor, source, &testutil.MockLogger{})
	require.NoError(t, fm.SaveToFile(path))

	restored := models.NewStarStore()
	fm2 := NewFileManager(compressor, restored, &testutil.MockLogger{})
	require.NoError(t, fm2.LoadFromFile(path))

	counts, err := restored.GetUserDayCounts("U1")
	require.NoError(t, err)
	assert.Equal(t, 2, counts["2025-01-06"])

	names, err := restored.GetDisplayNames()
	require.NoError(t, err)
	assert.Equal(t, "Bea", names["U2"])

	users, err := restored.ListUsers()
	require.NoError(t, err)
	assert.Equal(t, []string{"U1", "U2"}, users)
}

func TestFileManager_SaveClearsDirty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stars.dat")

	store := populatedStore(t)
	require.True(t, store.Dirty())

	fm := NewFileManager(&testutil.MockCompressor{}, store, &testutil.MockLogger{})
	require.NoError(t, fm.SaveToFile(path))
	assert.False(t, store.Dirty())
}

func TestFileManager_SaveLeavesNoTmpFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stars.dat")

	fm := NewFileManager(&testutil.MockCompressor{}, populatedStore(t), &testutil.MockLogger{})
	require.NoError(t, fm.SaveToFile(path))

	_, err := os.Stat(path)
	assert.NoError(t, err)
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileManager_LoadMissingFileIsFreshStart(t *testing.T) {
	store := models.NewStarStore()
	fm := NewFileManager(&testutil.MockCompressor{}, store, &testutil.MockLogger{})

	err := fm.LoadFromFile(filepath.Join(t.TempDir(), "nope.dat"))
	assert.NoError(t, err)
	assert.Equal(t, 0, store.CountUsers())
}

func TestFileManager_LoadCorruptSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stars.dat")
	require.NoError(t, os.WriteFile(path, []byte("not json at all"), 0644))

	store := models.NewStarStore()
	fm := NewFileManager(&testutil.MockCompressor{}, store, &testutil.MockLogger{})

	err := fm.LoadFromFile(path)
	assert.Error(t, err)
	assert.Equal(t, 0, store.CountUsers())
}

func TestFileManager_CompressorErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	compressor := &testutil.MockCompressor{
		CompressFn: func(_ []byte) ([]byte, error) { return nil, boom },
	}

	store := populatedStore(t)
	fm := NewFileManager(compressor, store, &testutil.MockLogger{})

	err := fm.SaveToFile(filepath.Join(t.TempDir(), "stars.dat"))
	assert.ErrorIs(t, err, boom)
	// Failed save must not mark the store clean.
	assert.True(t, store.Dirty())
}
