package domain

// CatalogEntry represents one published package in the shared catalog.
//
// It is NOT tied to Redis, the seed file or any client API shape.
// All inputs (admin API, seed, store) are merged into this structure.
//
// An entry is uniquely identified by its numeric ID across the whole catalog.
type CatalogEntry struct {
	// ─────────────────────────────
	// Identity & ownership (immutable after creation)
	// ─────────────────────────────

	// ID is the catalog-wide unique numeric identifier.
	ID int64 `json:"id"`

	// AppID is the legacy composite identifier ("<packageName>-<id>").
	AppID string `json:"appId"`

	// Owner is the username of the manager account that created the entry.
	Owner string `json:"owner"`

	// ─────────────────────────────
	// Visibility
	// ─────────────────────────────

	// AllowedSN is the SN whitelist controlling which client devices may
	// observe this entry:
	//
	//	nil        -> unset: the entry is visible to nobody at all
	//	[]string{} -> public: visible to every client
	//	populated  -> visible only to clients presenting a listed SN
	//
	// The nil state exists only in legacy data; new entries always carry
	// at least an empty list. It deliberately stays invisible rather than
	// being coerced to public.
	AllowedSN []string `json:"allowedSn"`

	// ─────────────────────────────
	// Descriptive payload (opaque to the authorization core)
	// ─────────────────────────────

	AppName     string     `json:"appName"`
	EnName      string     `json:"enName"`
	PackageName string     `json:"packageName"`
	DownloadURL string     `json:"downloadUrl"`
	IconURL     string     `json:"iconUrl"`
	MD5         string     `json:"md5"`
	Size        string     `json:"size"`
	UpdateTime  string     `json:"updateTime"`
	Desc        string     `json:"desc"`
	Status      int        `json:"status"`
	Category    string     `json:"category"`
	Publisher   string     `json:"publisher"`
	Tags        []EntryTag `json:"tags"`
	Version     string     `json:"version"`
	VersionName string     `json:"versionName"`
	VersionCode string     `json:"versionCode"`
	Score       float64    `json:"score"`
	Changelog   string     `json:"changelog"`
}

// EntryTag is a display tag attached to a catalog entry.
type EntryTag struct {
	Name      string `json:"name"`
	BgColor   string `json:"bgColor"`
	TextColor string `json:"textColor"`
}

// IsPublic reports whether the entry is explicitly public (empty, non-nil
// whitelist). A nil whitelist is NOT public.
func (e *CatalogEntry) IsPublic() bool {
	return e.AllowedSN != nil && len(e.AllowedSN) == 0
}

// AllowsSN reports whether the given client SN is whitelisted. Comparison is
// exact string equality; a nil or empty whitelist never matches.
func (e *CatalogEntry) AllowsSN(sn string) bool {
	for _, allowed := range e.AllowedSN {
		if allowed == sn {
			return true
		}
	}
	return false
}
