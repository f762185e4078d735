package cookielib

import "errors"

var (
	// ErrNoActivePage is returned when there is no page (or page URL) to collect from.
	ErrNoActivePage = errors.New("no active page to collect cookies from")
	// ErrResourceEnumeration is returned when the page's frames or subresources cannot be listed.
	ErrResourceEnumeration = errors.New("failed to enumerate page resources")
	// ErrCookieFetch marks a failed cookie query for a single URL.
	ErrCookieFetch = errors.New("failed to fetch cookies")
	// ErrDeletion marks a cookie the store did not confirm as removed.
	ErrDeletion = errors.New("cookie was not deleted")
	// ErrDatasetLoad is returned when the reference cookie dataset cannot be loaded.
	ErrDatasetLoad = errors.New("failed to load cookie dataset")
	// ErrReadOnlyStore is returned by cookie stores that cannot be modified.
	ErrReadOnlyStore = errors.New("cookie store is read-only")
)
