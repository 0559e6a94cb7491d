package osreg

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUninstallEntryMatchesVendor(t *testing.T) {
	entry := UninstallEntry{DisplayName: "Diablo IV", Publisher: "Blizzard Entertainment"}
	assert.True(t, entry.MatchesVendor([]string{"blizzard entertainment"}))
	assert.False(t, entry.MatchesVendor([]string{"rockstar", ""}))

	byName := UninstallEntry{DisplayName: "Rockstar Games Launcher", Publisher: ""}
	assert.True(t, byName.MatchesVendor([]string{"ROCKSTAR"}))
}

func TestStaticReader(t *testing.T) {
	branch := UninstallBranches[0]
	reader := Static{
		Branches: map[Key][]UninstallEntry{
			branch: {{SubKey: "Overwatch", DisplayName: "Overwatch"}},
		},
		Keys: map[Key]bool{{Hive: LocalMachine, Path: `SOFTWARE\WOW6432Node\Ubisoft\Launcher`}: true},
	}

	entries, err := reader.UninstallEntries(context.Background(), branch)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	entries[0].DisplayName = "changed"

	again, _ := reader.UninstallEntries(context.Background(), branch)
	assert.Equal(t, "Overwatch", again[0].DisplayName)

	missing, err := reader.UninstallEntries(context.Background(), UninstallBranches[2])
	require.NoError(t, err)
	assert.Empty(t, missing)

	assert.True(t, reader.KeyExists(context.Background(), Key{Hive: LocalMachine, Path: `SOFTWARE\WOW6432Node\Ubisoft\Launcher`}))
	assert.False(t, reader.KeyExists(context.Background(), Key{Hive: CurrentUser, Path: `SOFTWARE\Nothing`}))
}

func TestStaticReaderHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Static{}.UninstallEntries(ctx, UninstallBranches[0])
	assert.ErrorIs(t, err, context.Canceled)
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, `HKCU\SOFTWARE\Test`, Key{Hive: CurrentUser, Path: `SOFTWARE\Test`}.String())
}
