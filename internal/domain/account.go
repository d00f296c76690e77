package domain

// Role is a closed enumeration of account roles. Capability checks are flat
// per-operation tests, never inheritance.
type Role string

const (
	// RoleSuper has unrestricted catalog and account-management rights.
	RoleSuper Role = "super"

	// RoleManager may create and delete catalog entries it owns, subject to
	// a quota and the SN-ownership registry.
	RoleManager Role = "manager"
)

// Satisfies reports whether an actor holding this role may use an operation
// gated on required. Super satisfies every gate; other roles only their own.
func (r Role) Satisfies(required Role) bool {
	if r == RoleSuper {
		return true
	}
	return r == required
}

// Account is a backend login with its quota bookkeeping.
type Account struct {
	// Username doubles as the account identifier.
	Username string `json:"-"`

	// Password is compared as a plain value. Credential hashing is out of
	// scope for this backend.
	Password string `json:"password"`

	Role Role `json:"role"`

	// MaxApps caps how many catalog entries the account may own at once.
	// nil means unlimited. Ignored for super accounts.
	MaxApps *int `json:"max_apps,omitempty"`

	// OwnsApps counts the entries currently owned by the account. It is
	// maintained incrementally on create/delete, not recomputed from the
	// catalog, so it can drift if the catalog is mutated out of band. The
	// reconciler recounts it periodically.
	OwnsApps int `json:"owns_apps"`
}

// Principal is an authenticated actor as seen by the authorization core.
type Principal struct {
	ID   string
	Role Role
}

// Principal returns the principal view of the account.
func (a *Account) Principal() Principal {
	return Principal{ID: a.Username, Role: a.Role}
}
