package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

const appName = "hrboard"

// dataDirEnv names the variable that pins the data directory.
const dataDirEnv = envPrefix + "_DATA_DIR"

// osDataBases lists, per GOOS, the variables holding a base directory for
// application data, most specific first. The first one set wins.
var osDataBases = map[string][]string{
	"windows": {"LOCALAPPDATA", "APPDATA"},
	"linux":   {"XDG_DATA_HOME"},
}

// osDataFallback is the home-relative base used when no variable is set.
var osDataFallback = map[string][]string{
	"darwin":  {"Library", "Application Support"},
	"windows": nil,
	"linux":   {".local", "share"},
}

// DefaultDataDir returns HRBOARD_DATA_DIR when set, otherwise the per-OS
// location:
//
//   - macOS:   ~/Library/Application Support/hrboard
//   - Linux:   $XDG_DATA_HOME/hrboard, or ~/.local/share/hrboard
//   - Windows: %LOCALAPPDATA%\hrboard, %APPDATA%\hrboard, or ~\hrboard
func DefaultDataDir() string {
	home, _ := os.UserHomeDir()
	return resolveDataDir(os.Getenv, runtime.GOOS, home)
}

func resolveDataDir(getenv func(string) string, goos, home string) string {
	if dir := strings.TrimSpace(getenv(dataDirEnv)); dir != "" {
		return expandHome(dir, home)
	}

	bases, ok := osDataBases[goos]
	if !ok && goos != "darwin" {
		bases = osDataBases["linux"] // freebsd and friends follow XDG
	}
	for _, name := range bases {
		if base := getenv(name); base != "" {
			return filepath.Join(base, appName)
		}
	}

	fallback, ok := osDataFallback[goos]
	if !ok {
		fallback = osDataFallback["linux"]
	}
	return filepath.Join(append(append([]string{home}, fallback...), appName)...)
}

// expandHome replaces a leading "~" with home.
func expandHome(dir, home string) string {
	if dir == "~" {
		return home
	}
	if strings.HasPrefix(dir, "~/") || strings.HasPrefix(dir, `~\`) {
		return filepath.Join(home, dir[2:])
	}
	return dir
}
