package nativehost

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/laurynn-wl/cookie-project/internal/nativehost"
)

// executable is the binary path written into the manifests.
var executable = os.Executable

func install(c *cli.Context) error {
	chromeID := c.String("chrome-extension-id")
	firefoxID := c.String("firefox-extension-id")
	if c.Bool("auto") {
		if chromeID == "" {
			chromeID = nativehost.OfficialChromeExtensionID
		}
		if firefoxID == "" {
			firefoxID = nativehost.OfficialFirefoxExtensionID
		}
	}

	if chromeID == "" && firefoxID == "" {
		return cli.NewExitError("at least one extension ID is required (--chrome-extension-id, --firefox-extension-id or --auto)", 1)
	}

	browsers, err := browsersFor(c.String("browser"))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	hostPath, err := executable()
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("failed to get executable path: %v", err), 1)
	}

	installer := &nativehost.ManifestInstaller{
		HostPath:           hostPath,
		ChromeExtensionID:  chromeID,
		FirefoxExtensionID: firefoxID,
		BaseDir:            c.String("base-dir"),
	}

	all := len(browsers) > 1
	installed := []string{}
	errors := []string{}
	for _, b := range browsers {
		// with --browser all, only the browsers an ID was given for
		if all && ((b == nativehost.BrowserFirefox && firefoxID == "") || (b != nativehost.BrowserFirefox && chromeID == "")) {
			continue
		}
		path, err := installer.Install(b)
		if err != nil {
			errors = append(errors, fmt.Sprintf("%s: %v", b, err))
			continue
		}
		installed = append(installed, fmt.Sprintf("%s: %s", b, path))
	}

	if len(installed) > 0 {
		fmt.Println("Installed manifests:")
		for _, m := range installed {
			fmt.Printf("  %s\n", m)
		}
	}

	if len(errors) > 0 {
		fmt.Println("\nErrors:")
		for _, e := range errors {
			fmt.Printf("  %s\n", e)
		}
		if len(installed) == 0 {
			return cli.NewExitError("installation failed", 1)
		}
	}

	return nil
}
