package nativehost

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/afero"
)

// HostName is the native messaging host identifier. The extension connects
// with chrome.runtime.connectNative(HostName).
const HostName = "com.cookiewatch.host"

const manifestDescription = "cookiewatch cookie privacy native host"

// Browser is a browser that supports native messaging.
type Browser string

const (
	BrowserChrome   Browser = "chrome"
	BrowserFirefox  Browser = "firefox"
	BrowserChromium Browser = "chromium"
	BrowserEdge     Browser = "edge"
	BrowserBrave    Browser = "brave"
)

func SupportedBrowsers() []Browser {
	return []Browser{BrowserChrome, BrowserFirefox, BrowserChromium, BrowserEdge, BrowserBrave}
}

// ParseBrowser maps a user supplied name to a supported Browser.
func ParseBrowser(name string) (Browser, error) {
	for _, b := range SupportedBrowsers() {
		if string(b) == name {
			return b, nil
		}
	}
	return "", fmt.Errorf("unsupported browser %q", name)
}

// ChromeManifest is the manifest format of Chromium based browsers.
type ChromeManifest struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Path           string   `json:"path"`
	Type           string   `json:"type"`
	AllowedOrigins []string `json:"allowed_origins"`
}

// FirefoxManifest is the manifest format of Firefox.
type FirefoxManifest struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Path              string   `json:"path"`
	Type              string   `json:"type"`
	AllowedExtensions []string `json:"allowed_extensions"`
}

func GenerateChromeManifest(hostPath, extensionID string) []byte {
	b, _ := json.MarshalIndent(ChromeManifest{
		Name:           HostName,
		Description:    manifestDescription,
		Path:           hostPath,
		Type:           "stdio",
		AllowedOrigins: []string{"chrome-extension://" + extensionID + "/"},
	}, "", "  ")
	return b
}

func GenerateFirefoxManifest(hostPath, extensionID string) []byte {
	b, _ := json.MarshalIndent(FirefoxManifest{
		Name:              HostName,
		Description:       manifestDescription,
		Path:              hostPath,
		Type:              "stdio",
		AllowedExtensions: []string{extensionID},
	}, "", "  ")
	return b
}

// getManifestPath returns where browser looks for the manifest on platform.
func getManifestPath(browser Browser, platform, homeDir string) string {
	manifestFile := HostName + ".json"

	switch platform {
	case "darwin":
		appSupport := filepath.Join(homeDir, "Library", "Application Support")
		switch browser {
		case BrowserChrome:
			return filepath.Join(appSupport, "Google", "Chrome", "NativeMessagingHosts", manifestFile)
		case BrowserChromium:
			return filepath.Join(appSupport, "Chromium", "NativeMessagingHosts", manifestFile)
		case BrowserFirefox:
			return filepath.Join(appSupport, "Mozilla", "NativeMessagingHosts", manifestFile)
		case BrowserEdge:
			return filepath.Join(appSupport, "Microsoft Edge", "NativeMessagingHosts", manifestFile)
		case BrowserBrave:
			return filepath.Join(appSupport, "BraveSoftware", "Brave-Browser", "NativeMessagingHosts", manifestFile)
		}
	case "linux":
		switch browser {
		case BrowserChrome:
			return filepath.Join(homeDir, ".config", "google-chrome", "NativeMessagingHosts", manifestFile)
		case BrowserChromium:
			return filepath.Join(homeDir, ".config", "chromium", "NativeMessagingHosts", manifestFile)
		case BrowserFirefox:
			return filepath.Join(homeDir, ".mozilla", "native-messaging-hosts", manifestFile)
		case BrowserEdge:
			return filepath.Join(homeDir, ".config", "microsoft-edge", "NativeMessagingHosts", manifestFile)
		case BrowserBrave:
			return filepath.Join(homeDir, ".config", "BraveSoftware", "Brave-Browser", "NativeMessagingHosts", manifestFile)
		}
	case "windows":
		// The browser finds this file through the registry key written by
		// registerHost.
		return filepath.Join(homeDir, "AppData", "Local", "cookiewatch", "NativeMessagingHosts", string(browser), manifestFile)
	}
	return ""
}

// registryKey is the HKCU key pointing a browser at the manifest on Windows.
func registryKey(browser Browser) string {
	var vendor string
	switch browser {
	case BrowserChrome:
		vendor = `Google\Chrome`
	case BrowserChromium:
		vendor = `Chromium`
	case BrowserEdge:
		vendor = `Microsoft\Edge`
	case BrowserBrave:
		vendor = `BraveSoftware\Brave-Browser`
	case BrowserFirefox:
		vendor = `Mozilla`
	default:
		return ""
	}
	return `Software\` + vendor + `\NativeMessagingHosts\` + HostName
}

// ManifestStatus reports the installed manifest of one browser.
type ManifestStatus struct {
	Browser   Browser `json:"browser"`
	Path      string  `json:"path"`
	Installed bool    `json:"installed"`
	// HostPath is the binary the installed manifest points at.
	HostPath string `json:"host_path,omitempty"`
}

// ManifestInstaller installs, removes and inspects manifests.
type ManifestInstaller struct {
	HostPath           string
	ChromeExtensionID  string
	FirefoxExtensionID string
	// BaseDir overrides the home directory. Registry keys are only written
	// when it is empty.
	BaseDir string
	// Fs defaults to the OS filesystem.
	Fs afero.Fs
	// Platform defaults to runtime.GOOS.
	Platform string
}

// Validate checks that the host path and at least one extension ID are set.
func (m *ManifestInstaller) Validate() error {
	if m.HostPath == "" {
		return errors.New("host path is required")
	}
	if !hasExtensions(m.ChromeExtensionID, m.FirefoxExtensionID) {
		return errors.New("a chrome or firefox extension ID is required")
	}
	return nil
}

func (m *ManifestInstaller) fs() afero.Fs {
	if m.Fs == nil {
		return afero.NewOsFs()
	}
	return m.Fs
}

func (m *ManifestInstaller) platform() string {
	if m.Platform == "" {
		return runtime.GOOS
	}
	return m.Platform
}

func (m *ManifestInstaller) getHomeDir() string {
	if m.BaseDir != "" {
		return m.BaseDir
	}
	home, _ := os.UserHomeDir()
	return home
}

func (m *ManifestInstaller) manifestPath(browser Browser) (string, error) {
	p := getManifestPath(browser, m.platform(), m.getHomeDir())
	if p == "" {
		return "", fmt.Errorf("unsupported browser/platform: %s/%s", browser, m.platform())
	}
	return p, nil
}

// Install writes the manifest for browser and returns its path.
func (m *ManifestInstaller) Install(browser Browser) (string, error) {
	if err := m.Validate(); err != nil {
		return "", err
	}
	var manifest []byte
	if browser == BrowserFirefox {
		if m.FirefoxExtensionID == "" {
			return "", errors.New("firefox extension ID is required")
		}
		manifest = GenerateFirefoxManifest(m.HostPath, m.FirefoxExtensionID)
	} else {
		if m.ChromeExtensionID == "" {
			return "", errors.New("chrome extension ID is required")
		}
		manifest = GenerateChromeManifest(m.HostPath, m.ChromeExtensionID)
	}
	manifestPath, err := m.manifestPath(browser)
	if err != nil {
		return "", err
	}

	fs := m.fs()
	if err := fs.MkdirAll(filepath.Dir(manifestPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create manifest directory: %w", err)
	}
	if err := afero.WriteFile(fs, manifestPath, manifest, 0644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}
	if m.platform() == "windows" && m.BaseDir == "" {
		if err := registerHost(registryKey(browser), manifestPath); err != nil {
			return "", fmt.Errorf("failed to register manifest: %w", err)
		}
	}
	return manifestPath, nil
}

// InstallAll installs every browser the configured extension IDs allow and
// returns the written paths by browser.
func (m *ManifestInstaller) InstallAll() (map[Browser]string, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	paths := make(map[Browser]string)
	for _, b := range SupportedBrowsers() {
		if (b == BrowserFirefox && m.FirefoxExtensionID == "") || (b != BrowserFirefox && m.ChromeExtensionID == "") {
			continue
		}
		p, err := m.Install(b)
		if err != nil {
			return paths, fmt.Errorf("%s: %w", b, err)
		}
		paths[b] = p
	}
	return paths, nil
}

// Uninstall removes the manifest of browser. A missing manifest is not an
// error.
func (m *ManifestInstaller) Uninstall(browser Browser) error {
	manifestPath, err := m.manifestPath(browser)
	if err != nil {
		return err
	}
	if err := UninstallManifest(m.fs(), manifestPath); err != nil {
		return err
	}
	if m.platform() == "windows" && m.BaseDir == "" {
		return unregisterHost(registryKey(browser))
	}
	return nil
}

// Status inspects the manifest of every supported browser.
func (m *ManifestInstaller) Status() []ManifestStatus {
	fs := m.fs()
	out := make([]ManifestStatus, 0, len(SupportedBrowsers()))
	for _, b := range SupportedBrowsers() {
		st := ManifestStatus{Browser: b}
		p, err := m.manifestPath(b)
		if err != nil {
			out = append(out, st)
			continue
		}
		st.Path = p
		if data, err := afero.ReadFile(fs, p); err == nil {
			var installed struct {
				Name string `json:"name"`
				Path string `json:"path"`
			}
			if json.Unmarshal(data, &installed) == nil && installed.Name == HostName {
				st.Installed = true
				st.HostPath = installed.Path
			}
		}
		out = append(out, st)
	}
	return out
}

// UninstallManifest removes the manifest at path if it exists.
func UninstallManifest(fs afero.Fs, path string) error {
	exists, err := afero.Exists(fs, path)
	if err != nil || !exists {
		return err
	}
	return fs.Remove(path)
}
