//go:build windows

package cookies

import (
	"os"
	"path/filepath"
)

var chromiumProfiles = []struct {
	name string
	dir  []string
}{
	{"Chrome", []string{"Google", "Chrome"}},
	{"Chromium", []string{"Chromium"}},
	{"Edge", []string{"Microsoft", "Edge"}},
	{"Brave", []string{"BraveSoftware", "Brave-Browser"}},
	{"Vivaldi", []string{"Vivaldi"}},
}

// getBrowserCookiePathsForEnv returns browser specs for the given LOCALAPPDATA
// and APPDATA values. Firefox-family profiles live under the roaming APPDATA.
func getBrowserCookiePathsForEnv(localAppData, appData string) []browserSpec {
	specs := []browserSpec{
		{Name: "Firefox", ProfilesIniPaths: []string{
			filepath.Join(appData, "Mozilla", "Firefox", "profiles.ini"),
		}},
		{Name: "LibreWolf", ProfilesIniPaths: []string{
			filepath.Join(appData, "LibreWolf", "profiles.ini"),
		}},
	}
	for _, p := range chromiumProfiles {
		base := filepath.Join(append([]string{localAppData}, p.dir...)...)
		specs = append(specs, chromiumSpec(p.name, filepath.Join(base, "User Data", "Default")))
	}
	return specs
}

// getBrowserCookiePaths returns browser specs using real Windows environment variables.
func getBrowserCookiePaths() []browserSpec {
	return getBrowserCookiePathsForEnv(os.Getenv("LOCALAPPDATA"), os.Getenv("APPDATA"))
}
