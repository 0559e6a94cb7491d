package store

import (
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fulmenhq/gamescout/pkg/inventory"
	"github.com/fulmenhq/gamescout/pkg/sources"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntries() []inventory.Entry {
	return []inventory.Entry{
		{AppID: "440", Name: "Team Fortress 2", Platform: inventory.Steam, ExecutablePath: `C:\Steam\steamapps\common\Team Fortress 2\hl2.exe`},
		{AppID: "Fortnite", Name: "Fortnite", Platform: inventory.Epic, LaunchID: "fn:4fe75bbc:Fortnite"},
		{AppID: "", Name: "Star Citizen", Platform: inventory.StarCitizen},
	}
}

func TestSaveLoadAllFormats(t *testing.T) {
	for _, format := range Formats() {
		t.Run(string(format), func(t *testing.T) {
			fsys := afero.NewMemMapFs()
			path := "/out/games." + string(format)
			entries := sampleEntries()

			require.NoError(t, Save(fsys, path, format, entries))
			loaded, err := Load(fsys, path)
			require.NoError(t, err)
			assert.Equal(t, entries, loaded)
		})
	}
}

func TestJSONIsTopLevelArray(t *testing.T) {
	data, err := Encode(sampleEntries(), JSON)
	require.NoError(t, err)
	s := string(data)
	assert.True(t, strings.HasPrefix(s, "[\n"), s)
	assert.Contains(t, s, `"executablePath": "C:\\Steam`)
	assert.Contains(t, s, `"launchId": "fn:4fe75bbc:Fortnite"`)
	assert.Equal(t, 1, strings.Count(s, `"executablePath"`))
	assert.Equal(t, 1, strings.Count(s, `"launchId"`))
	assert.NotContains(t, s, "totalGames")

	var raw []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Len(t, raw, 3)
}

func TestYAMLIsTopLevelSequence(t *testing.T) {
	data, err := Encode(sampleEntries(), YAML)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "- appId: \"440\""), string(data))
}

func TestTOMLHoldsGamesTable(t *testing.T) {
	data, err := Encode(sampleEntries(), TOML)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[[games]]")

	_, err = Decode([]byte("surprise = true\n"), TOML)
	require.ErrorIs(t, err, ErrInvalidDocument)
	assert.ErrorContains(t, err, "games is required")
	assert.ErrorContains(t, err, `"surprise"`)
}

func TestHiddenInstallDirIsNotPersisted(t *testing.T) {
	entries := []inventory.Entry{{AppID: "440", Name: "Team Fortress 2", Platform: inventory.Steam, InstallDir: "/vol/c/Steam"}}
	for _, format := range Formats() {
		data, err := Encode(entries, format)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "/vol/c/Steam", string(format))
	}
}

func TestEmptyInventoryEncodesEmptyList(t *testing.T) {
	data, err := Encode(nil, JSON)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
	assert.NoError(t, Validate(data))

	for _, format := range Formats() {
		data, err := Encode(nil, format)
		require.NoError(t, err)
		loaded, err := Decode(data, format)
		require.NoError(t, err, string(format))
		assert.Empty(t, loaded)
	}
}

func TestValidateRejectsBadDocuments(t *testing.T) {
	tests := map[string]string{
		"object root":      `{"games": []}`,
		"blank name":       `[{"appId": "1", "name": "   ", "platform": "steam"}]`,
		"unknown platform": `[{"appId": "1", "name": "Celeste", "platform": "itch"}]`,
		"extra field":      `[{"appId": "1", "name": "Celeste", "platform": "steam", "surprise": true}]`,
		"missing app id":   `[{"name": "Celeste", "platform": "steam"}]`,
		"not json":         `[`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			err := Validate([]byte(doc))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDocument))
		})
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/games.yaml", []byte("- appId: \"1\"\n  name: Celeste\n  platform: itch\n"), 0o644))
	_, err := Load(fsys, "/games.yaml")
	assert.ErrorIs(t, err, ErrInvalidDocument)

	_, err = Load(fsys, "/missing.json")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFormatFlagValue(t *testing.T) {
	var f Format
	require.NoError(t, f.Set("YML"))
	assert.Equal(t, YAML, f)
	assert.Equal(t, "format", f.Type())
	assert.ErrorIs(t, f.Set("xml"), ErrUnsupportedFormat)

	got, ok := FormatForPath("out/games.toml")
	assert.True(t, ok)
	assert.Equal(t, TOML, got)
	_, ok = FormatForPath("games")
	assert.False(t, ok)

	_, err := Encode(nil, Format("xml"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDetectionCache(t *testing.T) {
	fsys := afero.NewMemMapFs()
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	cache := PlatformCache{
		DetectedAt: now,
		Platforms: []sources.Presence{
			{Platform: inventory.Steam, Installed: true, Roots: []string{`C:\Steam`}},
			{Platform: inventory.GOG},
		},
	}

	require.NoError(t, SaveDetection(fsys, "/cache/platforms.yaml", cache))
	loaded, err := LoadDetection(fsys, "/cache/platforms.yaml")
	require.NoError(t, err)
	assert.Equal(t, cache.Platforms, loaded.Platforms)
	assert.True(t, loaded.Fresh(now.Add(time.Hour), 24*time.Hour))
	assert.False(t, loaded.Fresh(now.Add(48*time.Hour), 24*time.Hour))

	var missing *PlatformCache
	assert.False(t, missing.Fresh(now, time.Hour))
}
