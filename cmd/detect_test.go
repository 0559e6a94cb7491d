package cmd

import (
	"encoding/json"
	"testing"

	"github.com/fulmenhq/gamescout/pkg/inventory"
	"github.com/fulmenhq/gamescout/pkg/osreg"
	"github.com/fulmenhq/gamescout/pkg/sources"
	"github.com/fulmenhq/gamescout/pkg/store"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func detectJSON(t *testing.T, args ...string) map[inventory.Platform]sources.Presence {
	t.Helper()
	out, _, err := executeCommand(append([]string{"detect", "--json"}, args...)...)
	require.NoError(t, err)

	var presence []sources.Presence
	require.NoError(t, json.Unmarshal([]byte(out), &presence))
	require.Len(t, presence, len(inventory.Platforms()))

	byPlatform := make(map[inventory.Platform]sources.Presence, len(presence))
	for _, p := range presence {
		byPlatform[p.Platform] = p
	}
	return byPlatform
}

func TestDetectFindsInstallRoots(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/vol/c/Steam/steamapps", 0o755))
	useFixtures(t, fsys, osreg.Static{}, "/vol/c")

	got := detectJSON(t)
	assert.True(t, got[inventory.Steam].Installed)
	assert.NotEmpty(t, got[inventory.Steam].Roots)
	assert.False(t, got[inventory.GOG].Installed)

	exists, err := afero.Exists(fsys, "/cache/platforms.yaml")
	require.NoError(t, err)
	assert.True(t, exists, "detection is cached")
}

func TestDetectUsesFreshCacheUnlessRefreshed(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/vol/c/Steam/steamapps", 0o755))
	useFixtures(t, fsys, osreg.Static{}, "/vol/c")

	require.True(t, detectJSON(t)[inventory.Steam].Installed)
	require.NoError(t, fsys.RemoveAll("/vol/c/Steam"))

	assert.True(t, detectJSON(t)[inventory.Steam].Installed, "served from cache")
	assert.False(t, detectJSON(t, "--refresh")[inventory.Steam].Installed)
}

func TestDetectNoCacheLeavesNoFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	useFixtures(t, fsys, osreg.Static{}, "/vol/c")

	detectJSON(t, "--no-cache")
	exists, err := afero.Exists(fsys, "/cache/platforms.yaml")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDetectIgnoresStaleCache(t *testing.T) {
	fsys := afero.NewMemMapFs()
	useFixtures(t, fsys, osreg.Static{}, "/vol/c")

	stale := store.PlatformCache{
		DetectedAt: fixedNow.AddDate(0, 0, -7),
		Platforms:  []sources.Presence{{Platform: inventory.Steam, Installed: true, Roots: []string{"/old"}}},
	}
	require.NoError(t, store.SaveDetection(fsys, "/cache/platforms.yaml", stale))

	assert.False(t, detectJSON(t)[inventory.Steam].Installed)
}

func TestDetectTable(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/vol/c/Steam", 0o755))
	useFixtures(t, fsys, osreg.Static{}, "/vol/c")

	out, _, err := executeCommand("detect", "--no-cache")
	require.NoError(t, err)
	assert.Contains(t, out, "Platform")
	assert.Contains(t, out, "Steam")
	assert.Contains(t, out, "1 of 10 launchers installed")
}
