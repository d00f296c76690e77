package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/domain"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/logger"
	"github.com/idkwhatismyname123/zyb-appstore-iot-admin/internal/store/memory"
)

func intPtr(v int) *int { return &v }

func int64Ptr(v int64) *int64 { return &v }

func newTestService(t *testing.T, accounts map[string]domain.Account, owners map[string]string) *Service {
	t.Helper()
	ctx := context.Background()

	accStore := memory.NewAccounts()
	if accounts != nil {
		if err := accStore.Save(ctx, accounts); err != nil {
			t.Fatalf("seeding accounts: %v", err)
		}
	}
	regStore := memory.NewSNRegistry()
	if owners != nil {
		if err := regStore.Save(ctx, owners); err != nil {
			t.Fatalf("seeding sn registry: %v", err)
		}
	}

	return New(memory.NewCatalog(), accStore, regStore, logger.New("error", false))
}

func testAccounts() map[string]domain.Account {
	return map[string]domain.Account{
		"root":  {Username: "root", Password: "pw", Role: domain.RoleSuper},
		"alice": {Username: "alice", Password: "pw", Role: domain.RoleManager, MaxApps: intPtr(2)},
		"bob":   {Username: "bob", Password: "pw", Role: domain.RoleManager},
	}
}

func TestCreateAssignsOwnerAndCountsQuota(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testAccounts(), nil)
	alice := domain.Principal{ID: "alice", Role: domain.RoleManager}

	created, err := svc.Create(ctx, alice, domain.CatalogEntry{AppName: "calc"}, nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.Owner != "alice" {
		t.Errorf("owner = %s, want alice", created.Owner)
	}
	if created.ID < IDMin || created.ID > IDMax {
		t.Errorf("generated id %d outside [%d, %d]", created.ID, IDMin, IDMax)
	}
	if created.AllowedSN == nil || len(created.AllowedSN) != 0 {
		t.Errorf("new entry without whitelist should be public, got %v", created.AllowedSN)
	}

	accounts, err := svc.Accounts(ctx)
	if err != nil {
		t.Fatalf("accounts: %v", err)
	}
	if got := accounts["alice"].OwnsApps; got != 1 {
		t.Errorf("alice.OwnsApps = %d, want 1", got)
	}
}

func TestCreateQuotaBoundary(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testAccounts(), nil)
	alice := domain.Principal{ID: "alice", Role: domain.RoleManager}

	// Limit is 2: two creates succeed, the third fails.
	for i := 0; i < 2; i++ {
		if _, err := svc.Create(ctx, alice, domain.CatalogEntry{AppName: "app"}, nil); err != nil {
			t.Fatalf("create %d failed: %v", i, err)
		}
	}
	if _, err := svc.Create(ctx, alice, domain.CatalogEntry{AppName: "app"}, nil); !errors.Is(err, domain.ErrQuotaExceeded) {
		t.Fatalf("third create = %v, want ErrQuotaExceeded", err)
	}

	entries, _ := svc.List(ctx)
	if len(entries) != 2 {
		t.Errorf("catalog holds %d entries after failed create, want 2", len(entries))
	}
}

func TestCreateExplicitIDCollision(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testAccounts(), nil)
	bob := domain.Principal{ID: "bob", Role: domain.RoleManager}

	if _, err := svc.Create(ctx, bob, domain.CatalogEntry{AppName: "first"}, int64Ptr(123456)); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, err := svc.Create(ctx, bob, domain.CatalogEntry{AppName: "second"}, int64Ptr(123456))
	if !errors.Is(err, domain.ErrDuplicateID) {
		t.Fatalf("duplicate explicit id = %v, want ErrDuplicateID", err)
	}

	accounts, _ := svc.Accounts(ctx)
	if got := accounts["bob"].OwnsApps; got != 1 {
		t.Errorf("bob.OwnsApps = %d after failed create, want 1", got)
	}
}

func TestCreateRandomIDRetriesOnCollision(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testAccounts(), nil)
	bob := domain.Principal{ID: "bob", Role: domain.RoleManager}

	if _, err := svc.Create(ctx, bob, domain.CatalogEntry{AppName: "taken"}, int64Ptr(100000)); err != nil {
		t.Fatalf("seed create failed: %v", err)
	}

	// First draw collides with the existing id, second is free.
	draws := []int64{100000, 100001}
	svc.randID = func() int64 {
		id := draws[0]
		if len(draws) > 1 {
			draws = draws[1:]
		}
		return id
	}

	created, err := svc.Create(ctx, bob, domain.CatalogEntry{AppName: "retried"}, nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID != 100001 {
		t.Errorf("id = %d, want the redrawn 100001", created.ID)
	}
}

func TestCreateIDSpaceExhausted(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testAccounts(), nil)
	bob := domain.Principal{ID: "bob", Role: domain.RoleManager}

	if _, err := svc.Create(ctx, bob, domain.CatalogEntry{AppName: "only"}, int64Ptr(500000)); err != nil {
		t.Fatalf("seed create failed: %v", err)
	}

	// Every draw collides; the retry budget must run out instead of looping.
	svc.randID = func() int64 { return 500000 }

	_, err := svc.Create(ctx, bob, domain.CatalogEntry{AppName: "never"}, nil)
	if !errors.Is(err, domain.ErrIDSpaceExhausted) {
		t.Fatalf("create = %v, want ErrIDSpaceExhausted", err)
	}
}

func TestCreateSNConflict(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testAccounts(), map[string]string{
		"114514": "bob",
	})
	alice := domain.Principal{ID: "alice", Role: domain.RoleManager}

	_, err := svc.Create(ctx, alice, domain.CatalogEntry{
		AppName:   "blocked",
		AllowedSN: []string{"114514"},
	}, nil)

	var conflict *domain.SNConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("create = %v, want SNConflictError", err)
	}
	if conflict.SN != "114514" || conflict.Owner != "bob" {
		t.Errorf("conflict = %+v, want SN=114514 Owner=bob", conflict)
	}

	// Bob owns the SN, so his own whitelist passes.
	bob := domain.Principal{ID: "bob", Role: domain.RoleManager}
	if _, err := svc.Create(ctx, bob, domain.CatalogEntry{
		AppName:   "allowed",
		AllowedSN: []string{"114514"},
	}, nil); err != nil {
		t.Fatalf("owner's own sn rejected: %v", err)
	}
}

func TestDeleteOwnershipAndCounter(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testAccounts(), nil)
	alice := domain.Principal{ID: "alice", Role: domain.RoleManager}
	bob := domain.Principal{ID: "bob", Role: domain.RoleManager}
	root := domain.Principal{ID: "root", Role: domain.RoleSuper}

	created, err := svc.Create(ctx, alice, domain.CatalogEntry{AppName: "mine"}, nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := svc.Delete(ctx, bob, created.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("foreign delete = %v, want ErrForbidden", err)
	}

	info, err := svc.Delete(ctx, root, created.ID)
	if err != nil {
		t.Fatalf("super delete failed: %v", err)
	}
	if info.Owner != "alice" {
		t.Errorf("deleted owner = %s, want alice", info.Owner)
	}

	accounts, _ := svc.Accounts(ctx)
	if got := accounts["alice"].OwnsApps; got != 0 {
		t.Errorf("alice.OwnsApps = %d after delete, want 0", got)
	}

	if _, err := svc.Delete(ctx, root, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("double delete = %v, want ErrNotFound", err)
	}
}

func TestDeleteCounterNeverNegative(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testAccounts(), nil)
	root := domain.Principal{ID: "root", Role: domain.RoleSuper}

	// Catalog entry whose owner's counter is already zero (drifted data).
	if err := svc.catalog.Save(ctx, []domain.CatalogEntry{
		{ID: 111111, Owner: "alice", AllowedSN: []string{}},
	}); err != nil {
		t.Fatalf("seeding catalog: %v", err)
	}

	if _, err := svc.Delete(ctx, root, 111111); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	accounts, _ := svc.Accounts(ctx)
	if got := accounts["alice"].OwnsApps; got != 0 {
		t.Errorf("alice.OwnsApps = %d, want 0 (floor)", got)
	}
}

func TestConcurrentCreatesStayConsistent(t *testing.T) {
	ctx := context.Background()
	accounts := testAccounts()
	accounts["alice"] = domain.Account{
		Username: "alice",
		Password: "pw",
		Role:     domain.RoleManager,
		MaxApps:  intPtr(50),
	}
	svc := newTestService(t, accounts, nil)
	alice := domain.Principal{ID: "alice", Role: domain.RoleManager}

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Create(ctx, alice, domain.CatalogEntry{AppName: "race"}, nil); err != nil {
				t.Errorf("concurrent create failed: %v", err)
			}
		}()
	}
	wg.Wait()

	entries, _ := svc.List(ctx)
	if len(entries) != n {
		t.Fatalf("catalog holds %d entries, want %d", len(entries), n)
	}
	seen := make(map[int64]bool, n)
	for _, e := range entries {
		if seen[e.ID] {
			t.Errorf("duplicate id %d", e.ID)
		}
		seen[e.ID] = true
	}

	accs, _ := svc.Accounts(ctx)
	if got := accs["alice"].OwnsApps; got != n {
		t.Errorf("alice.OwnsApps = %d, want %d", got, n)
	}
}

func TestAssignAndReleaseSN(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testAccounts(), nil)

	if err := svc.AssignSN(ctx, "SN-1", "alice"); err != nil {
		t.Fatalf("assign failed: %v", err)
	}

	// Reassignment overwrites the prior owner.
	if err := svc.AssignSN(ctx, "SN-1", "bob"); err != nil {
		t.Fatalf("reassign failed: %v", err)
	}
	owners, _ := svc.SNOwners(ctx)
	if owners["SN-1"] != "bob" {
		t.Errorf("SN-1 owner = %s, want bob", owners["SN-1"])
	}

	// Super and unknown accounts are not valid targets.
	if err := svc.AssignSN(ctx, "SN-2", "root"); !errors.Is(err, domain.ErrInvalidTarget) {
		t.Errorf("assign to super = %v, want ErrInvalidTarget", err)
	}
	if err := svc.AssignSN(ctx, "SN-2", "ghost"); !errors.Is(err, domain.ErrInvalidTarget) {
		t.Errorf("assign to unknown = %v, want ErrInvalidTarget", err)
	}

	if err := svc.ReleaseSN(ctx, "SN-1"); err != nil {
		t.Fatalf("release failed: %v", err)
	}
	if err := svc.ReleaseSN(ctx, "SN-1"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("double release = %v, want ErrNotFound", err)
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testAccounts(), nil)

	p, err := svc.Authenticate(ctx, "alice", "pw")
	if err != nil {
		t.Fatalf("valid login failed: %v", err)
	}
	if p.ID != "alice" || p.Role != domain.RoleManager {
		t.Errorf("principal = %+v", p)
	}

	if _, err := svc.Authenticate(ctx, "alice", "wrong"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("bad password = %v, want ErrForbidden", err)
	}
	if _, err := svc.Authenticate(ctx, "ghost", "pw"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("unknown user = %v, want ErrForbidden", err)
	}
}

func TestAddAndUpdateManager(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testAccounts(), nil)

	if err := svc.AddManager(ctx, "carol", "secret", intPtr(3)); err != nil {
		t.Fatalf("add manager failed: %v", err)
	}
	if err := svc.AddManager(ctx, "carol", "other", nil); !errors.Is(err, domain.ErrAccountExists) {
		t.Errorf("duplicate username = %v, want ErrAccountExists", err)
	}
	if err := svc.AddManager(ctx, "", "secret", nil); !errors.Is(err, domain.ErrInvalidTarget) {
		t.Errorf("empty username = %v, want ErrInvalidTarget", err)
	}

	carol := domain.Principal{ID: "carol", Role: domain.RoleManager}
	for i := 0; i < 2; i++ {
		if _, err := svc.Create(ctx, carol, domain.CatalogEntry{AppName: "app"}, nil); err != nil {
			t.Fatalf("create %d failed: %v", i, err)
		}
	}

	// Lowering the limit below current ownership must fail.
	err := svc.UpdateManager(ctx, "carol", "", intPtr(1))
	var below *domain.LimitBelowUsageError
	if !errors.As(err, &below) {
		t.Fatalf("undercutting limit = %v, want LimitBelowUsageError", err)
	}

	if err := svc.UpdateManager(ctx, "carol", "newpw", intPtr(2)); err != nil {
		t.Fatalf("valid update failed: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "carol", "newpw"); err != nil {
		t.Errorf("new password rejected: %v", err)
	}

	// Super accounts are not updatable through this path.
	if err := svc.UpdateManager(ctx, "root", "x", nil); !errors.Is(err, domain.ErrInvalidTarget) {
		t.Errorf("update super = %v, want ErrInvalidTarget", err)
	}
}

func TestRecountFixesDrift(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testAccounts(), nil)

	if err := svc.catalog.Save(ctx, []domain.CatalogEntry{
		{ID: 1, Owner: "alice", AllowedSN: []string{}},
		{ID: 2, Owner: "alice", AllowedSN: []string{}},
		{ID: 3, Owner: "bob", AllowedSN: []string{}},
	}); err != nil {
		t.Fatalf("seeding catalog: %v", err)
	}

	adjusted, err := svc.Recount(ctx)
	if err != nil {
		t.Fatalf("recount failed: %v", err)
	}
	if adjusted != 2 {
		t.Errorf("adjusted = %d, want 2", adjusted)
	}

	accounts, _ := svc.Accounts(ctx)
	if accounts["alice"].OwnsApps != 2 || accounts["bob"].OwnsApps != 1 {
		t.Errorf("counters = alice:%d bob:%d, want 2/1",
			accounts["alice"].OwnsApps, accounts["bob"].OwnsApps)
	}

	// Second pass finds nothing to fix.
	adjusted, err = svc.Recount(ctx)
	if err != nil {
		t.Fatalf("second recount failed: %v", err)
	}
	if adjusted != 0 {
		t.Errorf("second recount adjusted = %d, want 0", adjusted)
	}
}

func TestVisibleTo(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, testAccounts(), nil)

	if err := svc.catalog.Save(ctx, []domain.CatalogEntry{
		{ID: 1, Owner: "alice", AllowedSN: []string{}},
		{ID: 2, Owner: "alice", AllowedSN: []string{"SN-X"}},
		{ID: 3, Owner: "bob", AllowedSN: nil},
	}); err != nil {
		t.Fatalf("seeding catalog: %v", err)
	}

	visible, err := svc.VisibleTo(ctx, "SN-X")
	if err != nil {
		t.Fatalf("visibleTo failed: %v", err)
	}
	if len(visible) != 2 || visible[0].ID != 1 || visible[1].ID != 2 {
		t.Errorf("visible = %v", visible)
	}
}
