package instance

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireAt_ExclusiveWithinProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "motionwall.lock")

	lock, err := AcquireAt(path)
	require.NoError(t, err)
	defer lock.Release()

	// flock is per open file description, so a second open in the same
	// process still conflicts.
	_, err = AcquireAt(path)
	assert.Error(t, err)
}

func TestRelease_RemovesFileAndIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "motionwall.lock")

	lock, err := AcquireAt(path)
	require.NoError(t, err)

	lock.Release()
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr), "lock file should be removed")

	// Second release must not panic or error.
	lock.Release()

	// Lock can be re-acquired after release.
	again, err := AcquireAt(path)
	require.NoError(t, err)
	again.Release()
}

func TestAcquireAt_WritesPid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "motionwall.lock")

	lock, err := AcquireAt(path)
	require.NoError(t, err)
	defer lock.Release()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
