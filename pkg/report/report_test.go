package report

import (
	"strings"
	"testing"
	"time"

	"github.com/fulmenhq/gamescout/pkg/ascii"
	"github.com/fulmenhq/gamescout/pkg/inventory"
	"github.com/fulmenhq/gamescout/pkg/scan"
	"github.com/fulmenhq/gamescout/pkg/sources"
	"github.com/fulmenhq/gamescout/pkg/volume"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *scan.Result {
	entries := []inventory.Entry{
		{AppID: "440", Name: "Team Fortress 2", Platform: inventory.Steam},
		{AppID: "620", Name: "Portal 2", Platform: inventory.Steam},
		{AppID: "Fortnite", Name: "Fortnite", Platform: inventory.Epic},
	}
	return &scan.Result{
		Entries: entries,
		Stats:   inventory.ComputeStats(entries, 1500*time.Millisecond),
		Diagnostics: scan.Diagnostics{
			Attempted: []inventory.Platform{inventory.Steam, inventory.Epic, inventory.GOG},
			Failed:    []inventory.Platform{inventory.GOG},
		},
	}
}

func TestSummary(t *testing.T) {
	out, err := Summary(sampleResult(), "games.json")
	require.NoError(t, err)

	width := ascii.StringWidth("Epic Games Store")
	assert.Contains(t, out, "Found 3 games across 2 platforms in 1.5s\n")
	assert.Contains(t, out, "  "+ascii.PadRight("Steam", width)+"  2\n")
	assert.Contains(t, out, "  Epic Games Store  1\n")
	assert.Contains(t, out, "  "+ascii.PadRight("GOG Galaxy", width)+"  0  (failed)\n")
	assert.Contains(t, out, "Sources that failed: GOG Galaxy\n")
	assert.Contains(t, out, "Inventory written to games.json")
	assert.NotContains(t, out, "Riot Games")

	steam := strings.Index(out, "Steam")
	epic := strings.Index(out, "Epic Games Store  1")
	assert.Less(t, steam, epic, "rows follow canonical platform order")
}

func TestSummaryWithoutFailuresOrOutput(t *testing.T) {
	res := sampleResult()
	res.Diagnostics.Failed = nil

	out, err := Summary(res, "")
	require.NoError(t, err)
	assert.NotContains(t, out, "failed")
	assert.NotContains(t, out, "Inventory written")
}

func TestSummaryDoesNotEscapePaths(t *testing.T) {
	out, err := Summary(&scan.Result{}, `C:\Users\me & you\games.json`)
	require.NoError(t, err)
	assert.Contains(t, out, "Found 0 games across 0 platforms")
	assert.Contains(t, out, `C:\Users\me & you\games.json`)
}

func TestVolumes(t *testing.T) {
	out := Volumes([]volume.Volume{
		{Root: `C:\`, FSType: "NTFS", Free: 1 << 30, Total: 4 << 30},
		{Root: `D:\`, FSType: "NTFS", Free: 0, Total: 1 << 40},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Root")
	assert.Contains(t, lines[2], `C:\`)
	assert.Contains(t, lines[2], "1.0 GiB")
	assert.Contains(t, lines[2], "4.0 GiB")
	assert.Contains(t, lines[3], "1.0 TiB")
	assert.True(t, strings.HasPrefix(lines[3], "2"))
}

func TestDetectionListsInstalledFirst(t *testing.T) {
	out := Detection([]sources.Presence{
		{Platform: inventory.Steam},
		{Platform: inventory.Ubisoft, Installed: true, Markers: []string{`HKLM\SOFTWARE\Ubisoft\Launcher`}},
		{Platform: inventory.Epic, Installed: true, Roots: []string{`C:\Program Files\Epic Games`, `D:\Epic Games`}},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[2], "Ubisoft Connect")
	assert.Contains(t, lines[2], `registry: HKLM\SOFTWARE\Ubisoft\Launcher`)
	assert.Contains(t, lines[3], "Epic Games Store")
	assert.Contains(t, lines[3], `C:\Program Files\Epic Games (+1)`)
	assert.Contains(t, lines[4], "Steam")
	assert.Contains(t, lines[4], "no")
}

func TestGames(t *testing.T) {
	out := Games([]inventory.Entry{
		{AppID: "440", Name: "Team Fortress 2", Platform: inventory.Steam, ExecutablePath: `C:\TF2\hl2.exe`},
	})
	assert.Contains(t, out, "Team Fortress 2  steam")
	assert.Contains(t, out, `C:\TF2\hl2.exe`)
}
