package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/domain"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/logger"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/store/memory"
)

const seedYAML = `
accounts:
  root:
    password: rootpw
    role: super
  alice:
    password: alicepw
    role: manager
    maxApps: 3

snOwners:
  "114514": alice

apps:
  - id: 100001
    appName: Calculator
    packageName: com.example.calc
    downloadUrl: https://dl.example.com/calc.apk
    owner: alice
    allowedSn: []
  - id: 100002
    appName: Private Notes
    packageName: com.example.notes
    downloadUrl: https://dl.example.com/notes.apk
    owner: alice
    allowedSn:
      - "114514"
  - id: 100003
    appName: Legacy
    packageName: com.example.legacy
    downloadUrl: https://dl.example.com/legacy.apk
    owner: alice
`

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing seed file: %v", err)
	}
	return path
}

func TestLoadParsesSeedFile(t *testing.T) {
	f, err := NewLoader(writeSeedFile(t, seedYAML)).Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if len(f.Accounts) != 2 {
		t.Errorf("accounts = %d, want 2", len(f.Accounts))
	}
	if f.Accounts["alice"].MaxApps == nil || *f.Accounts["alice"].MaxApps != 3 {
		t.Errorf("alice maxApps = %v, want 3", f.Accounts["alice"].MaxApps)
	}
	if f.Accounts["root"].MaxApps != nil {
		t.Errorf("root maxApps = %v, want nil", f.Accounts["root"].MaxApps)
	}
	if f.SNOwners["114514"] != "alice" {
		t.Errorf("sn owner = %s, want alice", f.SNOwners["114514"])
	}
	if len(f.Apps) != 3 {
		t.Fatalf("apps = %d, want 3", len(f.Apps))
	}

	// The yaml distinguishes an explicit empty list from an absent key.
	if f.Apps[0].AllowedSn == nil {
		t.Errorf("explicit empty allowedSn parsed as nil")
	}
	if f.Apps[2].AllowedSn != nil {
		t.Errorf("absent allowedSn parsed as %v, want nil", f.Apps[2].AllowedSn)
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := NewLoader("/does/not/exist.yaml").Load(); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestApplySeedsEmptyStores(t *testing.T) {
	ctx := context.Background()
	log := logger.New("error", false)

	f, err := NewLoader(writeSeedFile(t, seedYAML)).Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	catalog := memory.NewCatalog()
	accounts := memory.NewAccounts()
	registry := memory.NewSNRegistry()

	if err := Apply(ctx, f, catalog, accounts, registry, log); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	accs, _ := accounts.Load(ctx)
	if accs["root"].Role != domain.RoleSuper {
		t.Errorf("root role = %s", accs["root"].Role)
	}
	if accs["alice"].Username != "alice" {
		t.Errorf("username not restored: %+v", accs["alice"])
	}

	entries, _ := catalog.Load(ctx)
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	if entries[0].Status != 1 || entries[0].Score != 5.0 {
		t.Errorf("defaults not applied: %+v", entries[0])
	}
	if entries[0].AppID != "com.example.calc-100001" {
		t.Errorf("appId = %s", entries[0].AppID)
	}
	if entries[2].AllowedSN != nil {
		t.Errorf("legacy nil whitelist coerced to %v", entries[2].AllowedSN)
	}

	owners, _ := registry.Load(ctx)
	if owners["114514"] != "alice" {
		t.Errorf("registry = %v", owners)
	}
}

func TestApplySkipsPopulatedStores(t *testing.T) {
	ctx := context.Background()
	log := logger.New("error", false)

	f, err := NewLoader(writeSeedFile(t, seedYAML)).Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	catalog := memory.NewCatalog()
	accounts := memory.NewAccounts()
	registry := memory.NewSNRegistry()

	existing := map[string]domain.Account{
		"live": {Username: "live", Password: "pw", Role: domain.RoleSuper},
	}
	if err := accounts.Save(ctx, existing); err != nil {
		t.Fatalf("seeding accounts: %v", err)
	}

	if err := Apply(ctx, f, catalog, accounts, registry, log); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	accs, _ := accounts.Load(ctx)
	if len(accs) != 1 || accs["live"].Username != "live" {
		t.Errorf("populated account store was overwritten: %v", accs)
	}

	// Empty stores alongside a populated one still get seeded.
	entries, _ := catalog.Load(ctx)
	if len(entries) != 3 {
		t.Errorf("catalog not seeded: %d entries", len(entries))
	}
}

func TestApplyRejectsUnknownRole(t *testing.T) {
	ctx := context.Background()
	log := logger.New("error", false)

	f := &File{
		Accounts: map[string]AccountProps{
			"weird": {Password: "pw", Role: "admin"},
		},
	}

	err := Apply(ctx, f, memory.NewCatalog(), memory.NewAccounts(), memory.NewSNRegistry(), log)
	if err == nil {
		t.Fatal("expected error for unknown role")
	}
}
