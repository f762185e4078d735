package nativehost

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/laurynn-wl/cookie-project/internal/nativehost"
)

func uninstall(c *cli.Context) error {
	browsers, err := browsersFor(c.String("browser"))
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	installer := &nativehost.ManifestInstaller{BaseDir: c.String("base-dir")}

	removed := []string{}
	errors := []string{}
	for _, b := range browsers {
		if err := installer.Uninstall(b); err != nil {
			errors = append(errors, fmt.Sprintf("%s: %v", b, err))
			continue
		}
		removed = append(removed, fmt.Sprintf("%s: removed (or was not installed)", b))
	}

	if len(removed) > 0 {
		fmt.Println("Uninstalled manifests:")
		for _, m := range removed {
			fmt.Printf("  %s\n", m)
		}
	}

	if len(errors) > 0 {
		fmt.Println("\nErrors:")
		for _, e := range errors {
			fmt.Printf("  %s\n", e)
		}
	}

	return nil
}
