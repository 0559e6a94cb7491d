// Package report renders human readable summaries of scans, volumes and
// platform detection.
package report

import (
	_ "embed"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/aymerick/raymond"
	"github.com/dustin/go-humanize"
	"github.com/fulmenhq/gamescout/pkg/ascii"
	"github.com/fulmenhq/gamescout/pkg/inventory"
	"github.com/fulmenhq/gamescout/pkg/scan"
	"github.com/fulmenhq/gamescout/pkg/sources"
	"github.com/fulmenhq/gamescout/pkg/volume"
)

//go:embed templates/summary.hbs
var summarySource string

var (
	summaryOnce sync.Once
	summaryTpl  *raymond.Template
	summaryErr  error
)

func summaryTemplate() (*raymond.Template, error) {
	summaryOnce.Do(func() {
		summaryTpl, summaryErr = raymond.Parse(summarySource)
		if summaryErr != nil {
			return
		}
		summaryTpl.RegisterHelper("pad", func(value, width interface{}) string {
			w, _ := strconv.Atoi(fmt.Sprintf("%v", width))
			return ascii.PadRight(fmt.Sprintf("%v", value), w)
		})
	})
	return summaryTpl, summaryErr
}

// Summary renders the per-platform result of a scan. Every attempted platform
// is listed in canonical order, including those that found nothing. output is
// the written inventory path and may be empty.
func Summary(res *scan.Result, output string) (string, error) {
	tpl, err := summaryTemplate()
	if err != nil {
		return "", fmt.Errorf("failed to parse summary template: %w", err)
	}

	counts := inventory.CountByPlatform(res.Entries)
	failed := make(map[inventory.Platform]bool, len(res.Diagnostics.Failed))
	for _, p := range res.Diagnostics.Failed {
		failed[p] = true
	}
	attempted := make(map[inventory.Platform]bool, len(res.Diagnostics.Attempted))
	for _, p := range res.Diagnostics.Attempted {
		attempted[p] = true
	}

	width := 0
	var rows []map[string]interface{}
	var failedNames []string
	for _, p := range inventory.Platforms() {
		if !attempted[p] && counts[p] == 0 {
			continue
		}
		name := p.DisplayName()
		width = max(width, ascii.StringWidth(name))
		rows = append(rows, map[string]interface{}{
			"name":   name,
			"count":  counts[p],
			"failed": failed[p],
		})
		if failed[p] {
			failedNames = append(failedNames, name)
		}
	}

	out, err := tpl.Exec(map[string]interface{}{
		"total":     res.Stats.Total,
		"platforms": res.Stats.Platforms,
		"elapsed":   res.Stats.Elapsed.Round(time.Millisecond).String(),
		"rows":      rows,
		"width":     width,
		"failed":    failedNames,
		"output":    output,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render summary: %w", err)
	}
	return out, nil
}

// Volumes renders the volumes in scan order.
func Volumes(volumes []volume.Volume) string {
	columns := []ascii.Column{
		{Header: "#", Align: ascii.AlignRight},
		{Header: "Root", MaxWidth: 40},
		{Header: "FS"},
		{Header: "Free", Align: ascii.AlignRight},
		{Header: "Total", Align: ascii.AlignRight},
	}
	rows := make([][]string, len(volumes))
	for i, v := range volumes {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			v.Root,
			v.FSType,
			humanize.IBytes(v.Free),
			humanize.IBytes(v.Total),
		}
	}
	return ascii.Table(columns, rows)
}

// Detection renders platform presence, installed platforms first.
func Detection(presence []sources.Presence) string {
	columns := []ascii.Column{
		{Header: "Platform"},
		{Header: "Installed"},
		{Header: "Evidence", MaxWidth: 60},
	}
	var installed, missing [][]string
	for _, p := range presence {
		row := []string{p.Platform.DisplayName(), "no", ""}
		if p.Installed {
			row[1] = "yes"
			row[2] = evidence(p)
			installed = append(installed, row)
			continue
		}
		missing = append(missing, row)
	}
	return ascii.Table(columns, append(installed, missing...))
}

func evidence(p sources.Presence) string {
	switch {
	case len(p.Roots) > 0 && len(p.Markers) > 0:
		return fmt.Sprintf("%s (+%d)", p.Roots[0], len(p.Roots)+len(p.Markers)-1)
	case len(p.Roots) > 1:
		return fmt.Sprintf("%s (+%d)", p.Roots[0], len(p.Roots)-1)
	case len(p.Roots) == 1:
		return p.Roots[0]
	case len(p.Markers) > 0:
		return "registry: " + p.Markers[0]
	}
	return ""
}

// Games renders the inventory entries.
func Games(entries []inventory.Entry) string {
	columns := []ascii.Column{
		{Header: "Name", MaxWidth: 40},
		{Header: "Platform"},
		{Header: "App ID", MaxWidth: 24},
		{Header: "Executable", MaxWidth: 60},
	}
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.Name, string(e.Platform), e.AppID, e.ExecutablePath}
	}
	return ascii.Table(columns, rows)
}
