package domain

// CheckSNGrants validates that a manager may whitelist the requested SN codes.
// Each SN must be either unclaimed in the registry or registered to ownerID
// itself; the first SN owned by someone else fails with SNConflictError.
//
// Passing this check does not claim unclaimed SNs. Registry assignment is a
// separate, super-only operation, and grants are not re-validated if the
// registry changes later.
func CheckSNGrants(ownerID string, requested []string, registry map[string]string) error {
	for _, sn := range requested {
		if current, claimed := registry[sn]; claimed && current != ownerID {
			return &SNConflictError{SN: sn, Owner: current}
		}
	}
	return nil
}

// CanDelete validates a delete request against role and ownership: super may
// delete anything, everyone else only entries they own.
func CanDelete(p Principal, entry *CatalogEntry) error {
	if p.Role == RoleSuper {
		return nil
	}
	if p.ID == entry.Owner {
		return nil
	}
	return ErrForbidden
}
