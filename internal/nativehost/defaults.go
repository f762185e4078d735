package nativehost

// OfficialChromeExtensionID is the Chrome Web Store ID of the cookiewatch
// extension. Empty until the extension is published.
const OfficialChromeExtensionID = ""

// OfficialFirefoxExtensionID is the add-on ID of the cookiewatch extension.
const OfficialFirefoxExtensionID = "cookiewatch@laurynn-wl.github.io"

// HasOfficialExtensions reports whether install can run without explicit
// extension IDs.
func HasOfficialExtensions() bool {
	return hasExtensions(OfficialChromeExtensionID, OfficialFirefoxExtensionID)
}

func hasExtensions(chromeID, firefoxID string) bool {
	return chromeID != "" || firefoxID != ""
}
