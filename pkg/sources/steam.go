package sources

import (
	"context"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/andygrunwald/vdf"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/fulmenhq/gamescout/pkg/inventory"
	"github.com/fulmenhq/gamescout/pkg/logger"
	"github.com/spf13/afero"
)

const (
	steamApps         = "steamapps"
	steamCommon       = "common"
	steamLibraryFile  = "libraryfolders.vdf"
	steamManifestGlob = "appmanifest_*.acf"
)

// steamManifestAdapter reads appmanifest_*.acf files from every Steam library.
type steamManifestAdapter struct {
	desc Descriptor
}

func (a steamManifestAdapter) Name() string { return "steam-manifest" }

func (a steamManifestAdapter) Probe(ctx context.Context, env Env) []inventory.Candidate {
	fsys := env.fs()
	accept := func(path string) bool { return env.filter().AcceptExecutable(a.desc.platform, path) }

	var out []inventory.Candidate
	for _, library := range steamLibraries(fsys, a.desc, env.roots()) {
		appsDir := filepath.Join(library, steamApps)
		infos, err := afero.ReadDir(fsys, appsDir)
		if err != nil {
			logMissing(appsDir, err)
			continue
		}
		for _, info := range infos {
			if ctx.Err() != nil {
				return out
			}
			if info.IsDir() {
				continue
			}
			if ok, _ := doublestar.Match(steamManifestGlob, strings.ToLower(info.Name())); !ok {
				continue
			}
			path := filepath.Join(appsDir, info.Name())
			state, err := readVDF(fsys, path)
			if err != nil {
				logger.Debug("Skipping unreadable Steam manifest", logger.String("path", path), logger.Err(err))
				continue
			}
			app := lookupMap(state, "AppState")
			appID := lookupString(app, "appid")
			name := lookupString(app, "name")
			if appID == "" || name == "" {
				logger.Debug("Skipping incomplete Steam manifest", logger.String("path", path))
				continue
			}
			c := inventory.Candidate{AppID: appID, Name: name}
			if dir := lookupString(app, "installdir"); dir != "" {
				c.InstallDir = filepath.Join(appsDir, steamCommon, dir)
				c.ExecutablePath = FindExecutable(ctx, fsys, c.InstallDir, a.desc.exeDepth, accept)
			}
			out = append(out, c)
		}
	}
	return out
}

// steamLibraries returns the Steam install roots present on the volumes plus
// every library they list in libraryfolders.vdf.
func steamLibraries(fsys afero.Fs, desc Descriptor, roots []string) []string {
	var libraries []string
	for _, root := range roots {
		for _, dir := range desc.InstallRoots(root) {
			if !isDir(fsys, dir) {
				continue
			}
			libraries = append(libraries, dir)
			libraries = append(libraries, libraryFolders(fsys, filepath.Join(dir, steamApps, steamLibraryFile))...)
		}
	}
	return uniquePaths(libraries)
}

// libraryFolders parses both the nested form ("0" { "path" "..." }) and the
// legacy form ("1" "D:\\Games") of libraryfolders.vdf.
func libraryFolders(fsys afero.Fs, path string) []string {
	doc, err := readVDF(fsys, path)
	if err != nil {
		logMissing(path, err)
		return nil
	}
	folders := lookupMap(doc, "libraryfolders")

	keys := make([]string, 0, len(folders))
	for k := range folders {
		if _, err := strconv.Atoi(k); err == nil {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		a, _ := strconv.Atoi(keys[i])
		b, _ := strconv.Atoi(keys[j])
		return a < b
	})

	var out []string
	for _, k := range keys {
		var p string
		switch v := folders[k].(type) {
		case string:
			p = v
		case map[string]interface{}:
			p = lookupString(v, "path")
		}
		if p = unescapeVDFPath(p); p != "" && isDir(fsys, p) {
			out = append(out, p)
		}
	}
	return out
}

func readVDF(fsys afero.Fs, path string) (map[string]interface{}, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return vdf.NewParser(f).Parse()
}

func unescapeVDFPath(p string) string {
	return strings.TrimSpace(strings.ReplaceAll(p, `\\`, `\`))
}

// lookupMap finds a nested object by case-insensitive key.
func lookupMap(m map[string]interface{}, key string) map[string]interface{} {
	for k, v := range m {
		if strings.EqualFold(k, key) {
			if nested, ok := v.(map[string]interface{}); ok {
				return nested
			}
		}
	}
	return nil
}

// lookupString finds a trimmed string value by case-insensitive key.
func lookupString(m map[string]interface{}, key string) string {
	for k, v := range m {
		if strings.EqualFold(k, key) {
			if s, ok := v.(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

// steamCommonRoots lists steamapps/common of every library for the
// directory-convention adapter.
func steamCommonRoots(desc Descriptor) func(Env) []string {
	return func(env Env) []string {
		libraries := steamLibraries(env.fs(), desc, env.roots())
		out := make([]string, 0, len(libraries))
		for _, lib := range libraries {
			out = append(out, filepath.Join(lib, steamApps, steamCommon))
		}
		return out
	}
}
