// Package seed bootstraps empty stores from a YAML file so a fresh deployment
// starts with working accounts instead of a locked-out backend.
package seed

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/domain"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/logger"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/store"
)

// Loader reads and parses a seed YAML file.
type Loader struct {
	filePath string
}

// NewLoader creates a seed loader for the given file path.
func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Load reads and parses the seed file.
func (l *Loader) Load() (*File, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed yaml: %w", err)
	}
	return &f, nil
}

// Apply writes seed data into each store that is currently empty. Populated
// stores are left untouched, so re-running on an existing deployment is safe.
func Apply(ctx context.Context, f *File, catalog store.Catalog, accounts store.Accounts, registry store.SNRegistry, log logger.Logger) error {
	existing, err := accounts.Load(ctx)
	if err != nil {
		return err
	}
	if len(existing) == 0 && len(f.Accounts) > 0 {
		seeded := make(map[string]domain.Account, len(f.Accounts))
		for name, props := range f.Accounts {
			role := domain.Role(props.Role)
			if role != domain.RoleSuper && role != domain.RoleManager {
				return fmt.Errorf("seed account %s has unknown role %q", name, props.Role)
			}
			seeded[name] = domain.Account{
				Username: name,
				Password: props.Password,
				Role:     role,
				MaxApps:  props.MaxApps,
			}
		}
		if err := accounts.Save(ctx, seeded); err != nil {
			return err
		}
		log.Info("seeded accounts", logger.Int("count", len(seeded)))
	}

	owners, err := registry.Load(ctx)
	if err != nil {
		return err
	}
	if len(owners) == 0 && len(f.SNOwners) > 0 {
		if err := registry.Save(ctx, f.SNOwners); err != nil {
			return err
		}
		log.Info("seeded sn registry", logger.Int("count", len(f.SNOwners)))
	}

	entries, err := catalog.Load(ctx)
	if err != nil {
		return err
	}
	if len(entries) == 0 && len(f.Apps) > 0 {
		seeded := make([]domain.CatalogEntry, 0, len(f.Apps))
		for _, props := range f.Apps {
			seeded = append(seeded, entryFromProps(props))
		}
		if err := catalog.Save(ctx, seeded); err != nil {
			return err
		}
		log.Info("seeded catalog", logger.Int("count", len(seeded)))
	}

	return nil
}

func entryFromProps(props AppProps) domain.CatalogEntry {
	e := domain.CatalogEntry{
		ID:          props.ID,
		AppID:       props.PackageName + "-" + strconv.FormatInt(props.ID, 10),
		Owner:       props.Owner,
		AllowedSN:   props.AllowedSn,
		AppName:     props.AppName,
		PackageName: props.PackageName,
		DownloadURL: props.DownloadURL,
		IconURL:     props.IconURL,
		MD5:         props.MD5,
		Size:        props.Size,
		Desc:        props.Desc,
		Category:    props.Category,
		Publisher:   props.Publisher,
		Version:     props.Version,
		UpdateTime:  strconv.FormatInt(time.Now().UnixMilli(), 10),
		Status:      1,
		Score:       5.0,
	}
	if e.Version == "" {
		e.Version = "1.0"
	}
	e.VersionName = e.Version
	if e.VersionCode == "" {
		e.VersionCode = "1"
	}
	return e
}
