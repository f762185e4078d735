//go:build !windows

package nativehost

// Browsers outside Windows find manifests by path alone.
func registerHost(string, string) error { return nil }

func unregisterHost(string) error { return nil }
