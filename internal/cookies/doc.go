// Package cookies reads browser cookie files for offline audits. It supports
// Firefox (moz_cookies SQLite), Chromium-family (cookies SQLite) and Netscape
// text cookie files and exposes them as a read-only cookielib.CookieStore.
//
// Cookie values are kept in memory only and never logged. Encrypted Chromium
// values are not decrypted: classification and scoring only need names and
// attributes.
package cookies
