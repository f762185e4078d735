package cookielib

// Dedupe drops repeated cookies by (name, domain, path, storeId). The first
// occurrence of every key is kept and input order is preserved.
func Dedupe(cookies []Cookie) []Cookie {
	if len(cookies) == 0 {
		return nil
	}
	seen := make(map[Key]struct{}, len(cookies))
	out := make([]Cookie, 0, len(cookies))
	for i := range cookies {
		k := cookies[i].Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, cookies[i])
	}
	return out
}
