// Package catalog implements the authorization and mutation core of the
// appstore backend: who may publish what, who may see what, and the quota
// and SN-ownership rules arbitrating between manager accounts.
package catalog

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/domain"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/logger"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/store"
)

const (
	// IDMin and IDMax bound the space of generated entry IDs.
	IDMin int64 = 100000
	IDMax int64 = 999999

	// maxIDAttempts caps the random-ID retry loop. The ID space holds
	// 900000 values, so hitting the cap means the catalog is effectively
	// full and the create fails with ErrIDSpaceExhausted.
	maxIDAttempts = 1000
)

// DeletedInfo reports what a successful delete removed.
type DeletedInfo struct {
	ID    int64
	Owner string
}

// Service is the catalog mutation core. Every create/delete is a
// read-modify-write across the catalog and account stores; a single global
// mutex serializes them so the quota counters and ID uniqueness hold under
// concurrent requests. Reads go straight to store snapshots without locking.
type Service struct {
	mu    sync.Mutex // serializes catalog + account mutations
	regMu sync.Mutex // serializes SN-registry mutations, independent of mu

	catalog  store.Catalog
	accounts store.Accounts
	registry store.SNRegistry
	log      logger.Logger

	// randID produces a candidate entry ID in [IDMin, IDMax].
	// Replaceable in tests.
	randID func() int64
}

// New creates the catalog service on top of the three stores.
func New(catalog store.Catalog, accounts store.Accounts, registry store.SNRegistry, log logger.Logger) *Service {
	return &Service{
		catalog:  catalog,
		accounts: accounts,
		registry: registry,
		log:      log,
		randID: func() int64 {
			return IDMin + rand.Int63n(IDMax-IDMin+1)
		},
	}
}

// Create validates and appends a new catalog entry owned by the principal.
//
// requestedID, when non-nil, must be unique catalog-wide or the create fails
// with ErrDuplicateID; it is never silently reassigned. When nil, a random ID
// is drawn and redrawn until unique (bounded by maxIDAttempts).
func (s *Service) Create(ctx context.Context, p domain.Principal, draft domain.CatalogEntry, requestedID *int64) (domain.CatalogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.accounts.Load(ctx)
	if err != nil {
		return domain.CatalogEntry{}, err
	}
	acting, ok := accounts[p.ID]
	if !ok {
		return domain.CatalogEntry{}, domain.ErrForbidden
	}
	if err := domain.CheckQuota(&acting); err != nil {
		return domain.CatalogEntry{}, err
	}

	if len(draft.AllowedSN) > 0 {
		owners, err := s.registry.Load(ctx)
		if err != nil {
			return domain.CatalogEntry{}, err
		}
		if err := domain.CheckSNGrants(p.ID, draft.AllowedSN, owners); err != nil {
			return domain.CatalogEntry{}, err
		}
	}

	entries, err := s.catalog.Load(ctx)
	if err != nil {
		return domain.CatalogEntry{}, err
	}

	id, err := s.resolveID(entries, requestedID)
	if err != nil {
		return domain.CatalogEntry{}, err
	}

	draft.ID = id
	draft.Owner = p.ID
	if draft.AllowedSN == nil {
		// A fresh entry without a whitelist is public. The nil "unset"
		// state is reachable only through legacy data.
		draft.AllowedSN = []string{}
	}
	if draft.AppID == "" {
		draft.AppID = draft.PackageName + "-" + strconv.FormatInt(id, 10)
	}
	if draft.UpdateTime == "" {
		draft.UpdateTime = strconv.FormatInt(time.Now().UnixMilli(), 10)
	}

	if err := s.catalog.Save(ctx, append(entries, draft)); err != nil {
		return domain.CatalogEntry{}, err
	}

	if acting.Role == domain.RoleManager {
		acting.OwnsApps++
		accounts[p.ID] = acting
		if err := s.accounts.Save(ctx, accounts); err != nil {
			// Put the catalog back so neither store moved.
			if rbErr := s.catalog.Save(ctx, entries); rbErr != nil {
				s.log.Error("failed to roll back catalog after account save failure",
					logger.Int64("entry_id", id),
					logger.Error(rbErr))
			}
			return domain.CatalogEntry{}, err
		}
	}

	s.log.Info("catalog entry created",
		logger.Int64("entry_id", id),
		logger.String("owner", p.ID),
		logger.Int("allowed_sn", len(draft.AllowedSN)))

	return draft, nil
}

// Delete removes an entry by ID and decrements the former owner's counter.
// Super may delete any entry; a manager only its own.
func (s *Service) Delete(ctx context.Context, p domain.Principal, id int64) (DeletedInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.catalog.Load(ctx)
	if err != nil {
		return DeletedInfo{}, err
	}

	idx := -1
	for i := range entries {
		if entries[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return DeletedInfo{}, domain.ErrNotFound
	}
	removed := entries[idx]

	if err := domain.CanDelete(p, &removed); err != nil {
		return DeletedInfo{}, err
	}

	remaining := make([]domain.CatalogEntry, 0, len(entries)-1)
	remaining = append(remaining, entries[:idx]...)
	remaining = append(remaining, entries[idx+1:]...)

	if err := s.catalog.Save(ctx, remaining); err != nil {
		return DeletedInfo{}, err
	}

	accounts, err := s.accounts.Load(ctx)
	if err == nil {
		if owner, ok := accounts[removed.Owner]; ok && owner.Role == domain.RoleManager {
			if owner.OwnsApps > 0 {
				owner.OwnsApps--
			}
			accounts[removed.Owner] = owner
			err = s.accounts.Save(ctx, accounts)
		}
	}
	if err != nil {
		if rbErr := s.catalog.Save(ctx, entries); rbErr != nil {
			s.log.Error("failed to roll back catalog after account save failure",
				logger.Int64("entry_id", id),
				logger.Error(rbErr))
		}
		return DeletedInfo{}, err
	}

	s.log.Info("catalog entry deleted",
		logger.Int64("entry_id", id),
		logger.String("owner", removed.Owner),
		logger.String("deleted_by", p.ID))

	return DeletedInfo{ID: removed.ID, Owner: removed.Owner}, nil
}

// resolveID picks the ID for a new entry. Explicit IDs fail on collision,
// implicit ones retry until unique or the attempt budget runs out.
func (s *Service) resolveID(entries []domain.CatalogEntry, requestedID *int64) (int64, error) {
	existing := make(map[int64]struct{}, len(entries))
	for i := range entries {
		existing[entries[i].ID] = struct{}{}
	}

	if requestedID != nil {
		if _, taken := existing[*requestedID]; taken {
			return 0, domain.ErrDuplicateID
		}
		return *requestedID, nil
	}

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := s.randID()
		if _, taken := existing[id]; !taken {
			return id, nil
		}
	}
	return 0, domain.ErrIDSpaceExhausted
}

// List returns the full catalog snapshot in stored order.
func (s *Service) List(ctx context.Context) ([]domain.CatalogEntry, error) {
	return s.catalog.Load(ctx)
}

// VisibleTo returns the catalog subset observable by a client presenting sn.
func (s *Service) VisibleTo(ctx context.Context, sn string) ([]domain.CatalogEntry, error) {
	entries, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterBySN(entries, sn), nil
}

// Find returns the entry with the given ID, or ErrNotFound.
func (s *Service) Find(ctx context.Context, id int64) (domain.CatalogEntry, error) {
	entries, err := s.catalog.Load(ctx)
	if err != nil {
		return domain.CatalogEntry{}, err
	}
	for i := range entries {
		if entries[i].ID == id {
			return entries[i], nil
		}
	}
	return domain.CatalogEntry{}, domain.ErrNotFound
}

// AssignSN registers an SN code to a manager account, overwriting any prior
// owner. The target must be an existing manager; entries that whitelisted the
// SN under the old owner are not re-validated.
func (s *Service) AssignSN(ctx context.Context, sn, managerID string) error {
	if sn == "" || managerID == "" {
		return domain.ErrInvalidTarget
	}

	accounts, err := s.accounts.Load(ctx)
	if err != nil {
		return err
	}
	target, ok := accounts[managerID]
	if !ok || target.Role != domain.RoleManager {
		return domain.ErrInvalidTarget
	}

	s.regMu.Lock()
	defer s.regMu.Unlock()

	owners, err := s.registry.Load(ctx)
	if err != nil {
		return err
	}
	owners[sn] = managerID
	if err := s.registry.Save(ctx, owners); err != nil {
		return err
	}

	s.log.Info("sn assigned",
		logger.String("sn", sn),
		logger.String("owner", managerID))
	return nil
}

// ReleaseSN removes an SN ownership mapping.
func (s *Service) ReleaseSN(ctx context.Context, sn string) error {
	s.regMu.Lock()
	defer s.regMu.Unlock()

	owners, err := s.registry.Load(ctx)
	if err != nil {
		return err
	}
	if _, ok := owners[sn]; !ok {
		return domain.ErrNotFound
	}
	delete(owners, sn)
	if err := s.registry.Save(ctx, owners); err != nil {
		return err
	}

	s.log.Info("sn released", logger.String("sn", sn))
	return nil
}

// SNOwners returns the SN-ownership snapshot.
func (s *Service) SNOwners(ctx context.Context) (map[string]string, error) {
	return s.registry.Load(ctx)
}
