package progress

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fulmenhq/gamescout/pkg/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineSinkFormat(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLineSink(&buf)

	sink.Report(Event{Stage: StageStart, Percent: 0})
	sink.Report(Event{Stage: StageScanner, Platform: inventory.Steam, Tier: 1, Percent: 18, TotalFound: 1,
		NewRecords: []inventory.Candidate{{
			AppID: "440", Name: "Team Fortress 2", Platform: inventory.Steam,
			ExecutablePath: "C:/Steam/hl2.exe", InstallDir: "C:/Steam",
		}},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `PROGRESS:{"type":"start","percentage":0,"games_found":0}`, lines[0])
	assert.Equal(t, `PROGRESS:{"type":"scanner_done","platform":"steam","tier":1,"percentage":18,"games_found":1,`+
		`"games":[{"appId":"440","name":"Team Fortress 2","platform":"steam","executablePath":"C:/Steam/hl2.exe"}]}`, lines[1])
}

func TestScannerPercent(t *testing.T) {
	tests := []struct {
		completed, total, want int
	}{
		{0, 10, 10},
		{1, 10, 18},
		{5, 10, 50},
		{10, 10, 90},
		{12, 10, 90},
		{1, 0, 90},
		{1, 3, 36},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ScannerPercent(tt.completed, tt.total), "%d/%d", tt.completed, tt.total)
	}
}

func TestMultiAndFunc(t *testing.T) {
	var a, b []Stage
	sink := Multi(Func(func(e Event) { a = append(a, e.Stage) }), nil, Func(func(e Event) { b = append(b, e.Stage) }))
	sink.Report(Event{Stage: StageDone, Percent: 100})
	Discard.Report(Event{Stage: StageDone})

	assert.Equal(t, []Stage{StageDone}, a)
	assert.Equal(t, []Stage{StageDone}, b)
}
