// Package redis persists the catalog collections as JSON snapshots, one Redis
// key per collection. A snapshot write is a single SET and therefore atomic
// with respect to concurrent loads.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/domain"
)

// Catalog is the Redis-backed catalog store.
type Catalog struct {
	client *redis.Client
}

// NewCatalog creates a Redis-backed catalog store.
func NewCatalog(client *redis.Client) *Catalog {
	return &Catalog{client: client}
}

func (c *Catalog) Load(ctx context.Context) ([]domain.CatalogEntry, error) {
	data, err := c.client.Get(ctx, KeyCatalog).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []domain.CatalogEntry{}, nil
		}
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	var entries []domain.CatalogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}
	return entries, nil
}

func (c *Catalog) Save(ctx context.Context, entries []domain.CatalogEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}
	if err := c.client.Set(ctx, KeyCatalog, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}
	return nil
}

// Accounts is the Redis-backed account store.
type Accounts struct {
	client *redis.Client
}

// NewAccounts creates a Redis-backed account store.
func NewAccounts(client *redis.Client) *Accounts {
	return &Accounts{client: client}
}

func (a *Accounts) Load(ctx context.Context) (map[string]domain.Account, error) {
	data, err := a.client.Get(ctx, KeyAccounts).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return map[string]domain.Account{}, nil
		}
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}

	var accounts map[string]domain.Account
	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal accounts: %w", err)
	}
	// Usernames are map keys on the wire; restore them on the values.
	for name, acc := range accounts {
		acc.Username = name
		accounts[name] = acc
	}
	return accounts, nil
}

func (a *Accounts) Save(ctx context.Context, accounts map[string]domain.Account) error {
	data, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("failed to marshal accounts: %w", err)
	}
	if err := a.client.Set(ctx, KeyAccounts, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save accounts: %w", err)
	}
	return nil
}

// SNRegistry is the Redis-backed SN-ownership store.
type SNRegistry struct {
	client *redis.Client
}

// NewSNRegistry creates a Redis-backed SN registry store.
func NewSNRegistry(client *redis.Client) *SNRegistry {
	return &SNRegistry{client: client}
}

func (r *SNRegistry) Load(ctx context.Context) (map[string]string, error) {
	data, err := r.client.Get(ctx, KeySNOwners).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to load sn registry: %w", err)
	}

	var owners map[string]string
	if err := json.Unmarshal(data, &owners); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sn registry: %w", err)
	}
	return owners, nil
}

func (r *SNRegistry) Save(ctx context.Context, owners map[string]string) error {
	data, err := json.Marshal(owners)
	if err != nil {
		return fmt.Errorf("failed to marshal sn registry: %w", err)
	}
	if err := r.client.Set(ctx, KeySNOwners, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save sn registry: %w", err)
	}
	return nil
}
