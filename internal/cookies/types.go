package cookies

// CookieFormat identifies the format of a browser cookie store.
type CookieFormat int

const (
	// FormatUnknown means the cookie store format could not be detected.
	FormatUnknown CookieFormat = 0
	// FormatFirefox means the cookie store uses the Firefox moz_cookies SQLite schema.
	FormatFirefox CookieFormat = 1
	// FormatChrome means the cookie store uses the Chromium cookies SQLite schema.
	FormatChrome CookieFormat = 2
	// FormatNetscape means the cookie store uses the Netscape tab-separated text format.
	FormatNetscape CookieFormat = 3
)

func (f CookieFormat) String() string {
	switch f {
	case FormatFirefox:
		return "firefox"
	case FormatChrome:
		return "chrome"
	case FormatNetscape:
		return "netscape"
	default:
		return "unknown"
	}
}

// CookieSource describes where cookies were loaded from.
type CookieSource struct {
	// Path is the filesystem path to the cookie store file.
	Path string
	// Format is the detected cookie store format.
	Format CookieFormat
	// Browser is the detected browser name (e.g., "Firefox", "Chrome", "Netscape").
	Browser string
}
