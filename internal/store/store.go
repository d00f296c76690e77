// Package store defines the persistence boundary of the catalog core.
//
// Each persisted collection is read and written as a whole snapshot: Load
// returns a copy the caller may mutate freely, Save replaces the stored state
// all-or-nothing. Partial writes must never be visible to subsequent loads.
// Serializing concurrent mutations is the caller's job (see internal/catalog).
package store

import (
	"context"

	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/domain"
)

// Catalog persists the ordered collection of catalog entries.
type Catalog interface {
	Load(ctx context.Context) ([]domain.CatalogEntry, error)
	Save(ctx context.Context, entries []domain.CatalogEntry) error
}

// Accounts persists manager accounts keyed by username.
type Accounts interface {
	Load(ctx context.Context) (map[string]domain.Account, error)
	Save(ctx context.Context, accounts map[string]domain.Account) error
}

// SNRegistry persists the SN-code ownership map (sn -> manager username).
// Absence of a key means the SN is unclaimed.
type SNRegistry interface {
	Load(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, owners map[string]string) error
}
