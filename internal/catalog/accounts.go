package catalog

import (
	"context"

	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/domain"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/logger"
)

// Authenticate checks a username/password pair against the account store and
// returns the matching principal. Passwords are plain values by design.
func (s *Service) Authenticate(ctx context.Context, username, password string) (domain.Principal, error) {
	accounts, err := s.accounts.Load(ctx)
	if err != nil {
		return domain.Principal{}, err
	}
	acc, ok := accounts[username]
	if !ok || acc.Password != password {
		return domain.Principal{}, domain.ErrForbidden
	}
	return acc.Principal(), nil
}

// Accounts returns the account snapshot keyed by username.
func (s *Service) Accounts(ctx context.Context) (map[string]domain.Account, error) {
	return s.accounts.Load(ctx)
}

// AddManager creates a new manager account with the given quota.
// maxApps nil means unlimited.
func (s *Service) AddManager(ctx context.Context, username, password string, maxApps *int) error {
	if username == "" || password == "" {
		return domain.ErrInvalidTarget
	}
	if maxApps != nil && *maxApps < 0 {
		return domain.ErrInvalidTarget
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.accounts.Load(ctx)
	if err != nil {
		return err
	}
	if _, taken := accounts[username]; taken {
		return domain.ErrAccountExists
	}
	accounts[username] = domain.Account{
		Username: username,
		Password: password,
		Role:     domain.RoleManager,
		MaxApps:  maxApps,
		OwnsApps: 0,
	}
	if err := s.accounts.Save(ctx, accounts); err != nil {
		return err
	}

	s.log.Info("manager account added", logger.String("username", username))
	return nil
}

// UpdateManager changes a manager's password and/or max-apps limit. A new
// limit must not undercut the entries the manager currently owns; the check
// shares the mutation lock with Create so the two cannot interleave.
func (s *Service) UpdateManager(ctx context.Context, username, newPassword string, newMax *int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.accounts.Load(ctx)
	if err != nil {
		return err
	}
	acc, ok := accounts[username]
	if !ok || acc.Role != domain.RoleManager {
		return domain.ErrInvalidTarget
	}

	if newPassword != "" {
		acc.Password = newPassword
	}
	if newMax != nil {
		if *newMax < 0 {
			return domain.ErrInvalidTarget
		}
		if err := domain.CheckLowerLimit(&acc, *newMax); err != nil {
			return err
		}
		limit := *newMax
		acc.MaxApps = &limit
	}

	accounts[username] = acc
	if err := s.accounts.Save(ctx, accounts); err != nil {
		return err
	}

	s.log.Info("manager account updated", logger.String("username", username))
	return nil
}

// Recount derives each manager's owns-apps counter from the catalog and
// persists corrections. It returns how many accounts were adjusted. This is
// the operational safety net for counter drift; the request path never
// recomputes.
func (s *Service) Recount(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.catalog.Load(ctx)
	if err != nil {
		return 0, err
	}
	accounts, err := s.accounts.Load(ctx)
	if err != nil {
		return 0, err
	}

	owned := make(map[string]int, len(accounts))
	for i := range entries {
		owned[entries[i].Owner]++
	}

	adjusted := 0
	for name, acc := range accounts {
		if acc.Role != domain.RoleManager {
			continue
		}
		actual := owned[name]
		if acc.OwnsApps == actual {
			continue
		}
		s.log.Warn("owns-apps counter drifted, correcting",
			logger.String("username", name),
			logger.Int("counted", acc.OwnsApps),
			logger.Int("actual", actual))
		acc.OwnsApps = actual
		accounts[name] = acc
		adjusted++
	}

	if adjusted == 0 {
		return 0, nil
	}
	if err := s.accounts.Save(ctx, accounts); err != nil {
		return 0, err
	}
	return adjusted, nil
}
