//go:build unix

package cookies

import (
	"os"
	"path/filepath"
	"runtime"
)

// chromiumProfile locates the Default profile of a Chromium-family browser
// relative to the platform config root.
type chromiumProfile struct {
	name   string
	darwin []string
	linux  []string
}

var chromiumProfiles = []chromiumProfile{
	{"Chrome", []string{"Google", "Chrome"}, []string{"google-chrome"}},
	{"Chromium", []string{"Chromium"}, []string{"chromium"}},
	{"Edge", []string{"Microsoft Edge"}, []string{"microsoft-edge"}},
	{"Brave", []string{"BraveSoftware", "Brave-Browser"}, []string{"BraveSoftware", "Brave-Browser"}},
	{"Vivaldi", []string{"Vivaldi"}, []string{"vivaldi"}},
}

// getBrowserCookiePathsForHome returns browser specs rooted at homeDir.
// Priority: Firefox, LibreWolf, then the Chromium family.
func getBrowserCookiePathsForHome(homeDir string) []browserSpec {
	isDarwin := runtime.GOOS == "darwin"
	appSupport := filepath.Join(homeDir, "Library", "Application Support")

	var specs []browserSpec
	if isDarwin {
		specs = append(specs,
			browserSpec{Name: "Firefox", ProfilesIniPaths: []string{
				filepath.Join(appSupport, "Firefox", "profiles.ini"),
			}},
			browserSpec{Name: "LibreWolf", ProfilesIniPaths: []string{
				filepath.Join(appSupport, "librewolf", "profiles.ini"),
			}},
		)
	} else {
		specs = append(specs,
			browserSpec{Name: "Firefox", ProfilesIniPaths: []string{
				filepath.Join(homeDir, ".mozilla", "firefox", "profiles.ini"),
				filepath.Join(homeDir, "snap", "firefox", "common", ".mozilla", "firefox", "profiles.ini"),
			}},
			browserSpec{Name: "LibreWolf", ProfilesIniPaths: []string{
				filepath.Join(homeDir, ".librewolf", "profiles.ini"),
			}},
		)
	}

	for _, p := range chromiumProfiles {
		var base string
		if isDarwin {
			base = filepath.Join(append([]string{appSupport}, p.darwin...)...)
		} else {
			base = filepath.Join(append([]string{homeDir, ".config"}, p.linux...)...)
		}
		specs = append(specs, chromiumSpec(p.name, filepath.Join(base, "Default")))
	}
	return specs
}

// getBrowserCookiePaths returns browser specs rooted at the real user home directory.
func getBrowserCookiePaths() []browserSpec {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return getBrowserCookiePathsForHome(homeDir)
}
