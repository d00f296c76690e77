package domain

import "strings"

// FilterBySN returns the subset of entries observable by a client presenting
// the given SN. It is a pure function and preserves catalog order.
//
// A client with an SN sees explicitly public entries plus entries whose
// whitelist contains its SN. A client without an SN sees public entries only.
// Entries whose whitelist is unset (nil) are invisible in both branches; that
// asymmetry between "unset" and "empty" is deliberate and matches the
// long-standing behavior clients depend on.
func FilterBySN(entries []CatalogEntry, clientSN string) []CatalogEntry {
	clientSN = strings.TrimSpace(clientSN)

	visible := make([]CatalogEntry, 0, len(entries))
	for _, e := range entries {
		if e.IsPublic() {
			visible = append(visible, e)
			continue
		}
		if clientSN != "" && e.AllowsSN(clientSN) {
			visible = append(visible, e)
		}
	}
	return visible
}
