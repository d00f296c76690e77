package domain

import (
	"errors"
	"testing"
)

func TestCheckSNGrants(t *testing.T) {
	registry := map[string]string{
		"SN-A": "alice",
		"SN-B": "bob",
	}

	tests := []struct {
		name      string
		owner     string
		requested []string
		wantSN    string // empty => no conflict expected
	}{
		{
			name:      "unclaimed sns pass",
			owner:     "alice",
			requested: []string{"SN-NEW", "SN-OTHER"},
		},
		{
			name:      "own sn passes",
			owner:     "alice",
			requested: []string{"SN-A"},
		},
		{
			name:      "foreign sn conflicts",
			owner:     "alice",
			requested: []string{"SN-B"},
			wantSN:    "SN-B",
		},
		{
			name:      "mixed list fails on the foreign sn",
			owner:     "alice",
			requested: []string{"SN-A", "SN-NEW", "SN-B"},
			wantSN:    "SN-B",
		},
		{
			name:      "empty request passes",
			owner:     "alice",
			requested: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckSNGrants(tt.owner, tt.requested, registry)

			if tt.wantSN == "" {
				if err != nil {
					t.Errorf("CheckSNGrants() = %v, want nil", err)
				}
				return
			}

			var conflict *SNConflictError
			if !errors.As(err, &conflict) {
				t.Fatalf("CheckSNGrants() = %v, want SNConflictError", err)
			}
			if conflict.SN != tt.wantSN {
				t.Errorf("conflict.SN = %s, want %s", conflict.SN, tt.wantSN)
			}
			if conflict.Owner != registry[tt.wantSN] {
				t.Errorf("conflict.Owner = %s, want %s", conflict.Owner, registry[tt.wantSN])
			}
		})
	}
}

func TestCheckSNGrantsDoesNotClaim(t *testing.T) {
	registry := map[string]string{}
	if err := CheckSNGrants("alice", []string{"SN-FREE"}, registry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(registry) != 0 {
		t.Errorf("grant check mutated the registry: %v", registry)
	}
}

func TestCanDelete(t *testing.T) {
	entry := CatalogEntry{ID: 100001, Owner: "alice"}

	tests := []struct {
		name    string
		p       Principal
		wantErr error
	}{
		{name: "super deletes anything", p: Principal{ID: "root", Role: RoleSuper}, wantErr: nil},
		{name: "owner deletes own entry", p: Principal{ID: "alice", Role: RoleManager}, wantErr: nil},
		{name: "other manager is forbidden", p: Principal{ID: "bob", Role: RoleManager}, wantErr: ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CanDelete(tt.p, &entry); !errors.Is(err, tt.wantErr) {
				t.Errorf("CanDelete() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
