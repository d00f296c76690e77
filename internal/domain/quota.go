package domain

// CheckQuota validates that the account may create one more catalog entry.
// Super accounts and managers without a configured limit are never capped.
func CheckQuota(account *Account) error {
	if account.Role == RoleSuper {
		return nil
	}
	if account.MaxApps == nil {
		return nil
	}
	if account.OwnsApps >= *account.MaxApps {
		return ErrQuotaExceeded
	}
	return nil
}

// CheckLowerLimit validates that a new max-apps limit does not undercut the
// number of entries the account currently owns.
func CheckLowerLimit(account *Account, newMax int) error {
	if newMax < account.OwnsApps {
		return &LimitBelowUsageError{Max: newMax, Owns: account.OwnsApps}
	}
	return nil
}
