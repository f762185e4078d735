package cookies

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-ini/ini"
	"github.com/laurynn-wl/cookie-project/pkg/logger"
)

// browserSpec describes a browser's cookie database candidate paths.
type browserSpec struct {
	// Name is the human-readable browser name (e.g., "Firefox").
	Name string
	// CookiePaths contains direct cookie file candidates for Chromium-family
	// browsers. The first path that exists on disk is used.
	CookiePaths []string
	// ProfilesIniPaths contains candidate paths to Firefox-style profiles.ini
	// files. Empty for Chromium-family browsers.
	ProfilesIniPaths []string
}

// parseProfilesIni returns the absolute path to the default profile directory
// named by a Firefox-style profiles.ini.
//
// Priority:
//  1. [Install*] section Default= key, used by modern Firefox
//  2. [Profile*] section with Default=1, for older profiles
//
// Returns "" if the file cannot be read or names no default profile.
func parseProfilesIni(iniPath string) string {
	cfg, err := ini.Load(iniPath)
	if err != nil {
		return ""
	}
	iniDir := filepath.Dir(iniPath)
	resolve := func(sec *ini.Section, p string) string {
		p = filepath.FromSlash(p)
		if sec.HasKey("IsRelative") && sec.Key("IsRelative").String() == "0" {
			return p
		}
		return filepath.Join(iniDir, p)
	}

	for _, sec := range cfg.Sections() {
		if !strings.HasPrefix(sec.Name(), "Install") {
			continue
		}
		if def := sec.Key("Default").String(); def != "" {
			return filepath.Join(iniDir, filepath.FromSlash(def))
		}
	}
	for _, sec := range cfg.Sections() {
		if !strings.HasPrefix(sec.Name(), "Profile") {
			continue
		}
		if sec.Key("Default").String() == "1" {
			if p := sec.Key("Path").String(); p != "" {
				return resolve(sec, p)
			}
		}
	}
	return ""
}

// candidatePaths expands spec into the cookie files to try, in order.
func (spec browserSpec) candidatePaths() []string {
	if len(spec.ProfilesIniPaths) == 0 {
		return spec.CookiePaths
	}
	var paths []string
	for _, iniPath := range spec.ProfilesIniPaths {
		if profileDir := parseProfilesIni(iniPath); profileDir != "" {
			paths = append(paths, filepath.Join(profileDir, "cookies.sqlite"))
		}
	}
	return paths
}

// detectWithSpecs returns a store over the first readable cookie file among
// specs. Production code calls DetectFileStore.
func detectWithSpecs(specs []browserSpec, now time.Time, l logger.Logger) (*FileStore, error) {
	var tried []string
	for _, spec := range specs {
		tried = append(tried, spec.Name)
		for _, cookiePath := range spec.candidatePaths() {
			if _, err := os.Stat(cookiePath); err != nil {
				continue
			}
			cookies, source, err := LoadCookies(cookiePath, now, l)
			if err != nil {
				l.Debug("cookies: skipping %s store: %v", spec.Name, err)
				continue
			}
			source.Browser = spec.Name
			return NewFileStore(cookies, source), nil
		}
	}
	return nil, fmt.Errorf("no supported browser cookie store found (tried %s)", strings.Join(tried, ", "))
}

// chromiumSpec lists the Network/Cookies location used since Chrome 96 ahead
// of the legacy profile-root Cookies file.
func chromiumSpec(name, profileDir string) browserSpec {
	return browserSpec{
		Name: name,
		CookiePaths: []string{
			filepath.Join(profileDir, "Network", "Cookies"),
			filepath.Join(profileDir, "Cookies"),
		},
	}
}
