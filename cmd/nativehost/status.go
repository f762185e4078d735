package nativehost

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/laurynn-wl/cookie-project/internal/nativehost"
)

func status(c *cli.Context) error {
	installer := &nativehost.ManifestInstaller{BaseDir: c.String("base-dir")}

	fmt.Println("Native Messaging Host Status")
	fmt.Println("============================")
	fmt.Printf("Host Name: %s\n\n", nativehost.HostName)

	for _, st := range installer.Status() {
		if !st.Installed {
			fmt.Printf("%s: Not installed\n", st.Browser)
			continue
		}
		fmt.Printf("%s: Installed\n", st.Browser)
		fmt.Printf("  Path: %s\n", st.Path)
		fmt.Printf("  Host: %s\n", st.HostPath)
	}
	return nil
}
