// Package memory provides in-memory store implementations.
//
// Used by tests and as a throwaway backend when no Redis is configured.
// Snapshots are deep-copied on both Load and Save so callers can never
// observe each other's in-flight mutations.
package memory

import (
	"context"
	"sync"

	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/domain"
)

// Catalog is an in-memory catalog store.
type Catalog struct {
	mu      sync.RWMutex
	entries []domain.CatalogEntry
}

// NewCatalog creates an empty in-memory catalog store.
func NewCatalog() *Catalog {
	return &Catalog{}
}

func (c *Catalog) Load(ctx context.Context) ([]domain.CatalogEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyEntries(c.entries), nil
}

func (c *Catalog) Save(ctx context.Context, entries []domain.CatalogEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = copyEntries(entries)
	return nil
}

// Accounts is an in-memory account store.
type Accounts struct {
	mu       sync.RWMutex
	accounts map[string]domain.Account
}

// NewAccounts creates an empty in-memory account store.
func NewAccounts() *Accounts {
	return &Accounts{accounts: make(map[string]domain.Account)}
}

func (a *Accounts) Load(ctx context.Context) (map[string]domain.Account, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return copyAccounts(a.accounts), nil
}

func (a *Accounts) Save(ctx context.Context, accounts map[string]domain.Account) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.accounts = copyAccounts(accounts)
	return nil
}

// SNRegistry is an in-memory SN-ownership store.
type SNRegistry struct {
	mu     sync.RWMutex
	owners map[string]string
}

// NewSNRegistry creates an empty in-memory SN registry store.
func NewSNRegistry() *SNRegistry {
	return &SNRegistry{owners: make(map[string]string)}
}

func (r *SNRegistry) Load(ctx context.Context) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	owners := make(map[string]string, len(r.owners))
	for sn, owner := range r.owners {
		owners[sn] = owner
	}
	return owners, nil
}

func (r *SNRegistry) Save(ctx context.Context, owners map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := make(map[string]string, len(owners))
	for sn, owner := range owners {
		copied[sn] = owner
	}
	r.owners = copied
	return nil
}

func copyEntries(entries []domain.CatalogEntry) []domain.CatalogEntry {
	copied := make([]domain.CatalogEntry, len(entries))
	for i, e := range entries {
		// Preserve the nil/empty distinction on AllowedSN: nil means "unset"
		// and must survive a round trip unchanged.
		if e.AllowedSN != nil {
			sns := make([]string, len(e.AllowedSN))
			copy(sns, e.AllowedSN)
			e.AllowedSN = sns
		}
		if e.Tags != nil {
			tags := make([]domain.EntryTag, len(e.Tags))
			copy(tags, e.Tags)
			e.Tags = tags
		}
		copied[i] = e
	}
	return copied
}

func copyAccounts(accounts map[string]domain.Account) map[string]domain.Account {
	copied := make(map[string]domain.Account, len(accounts))
	for name, acc := range accounts {
		if acc.MaxApps != nil {
			limit := *acc.MaxApps
			acc.MaxApps = &limit
		}
		copied[name] = acc
	}
	return copied
}
