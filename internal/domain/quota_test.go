package domain

import (
	"errors"
	"testing"
)

func intPtr(v int) *int { return &v }

func TestCheckQuota(t *testing.T) {
	tests := []struct {
		name    string
		account Account
		wantErr error
	}{
		{
			name:    "super is never capped",
			account: Account{Role: RoleSuper, MaxApps: intPtr(0), OwnsApps: 50},
			wantErr: nil,
		},
		{
			name:    "manager without limit is unlimited",
			account: Account{Role: RoleManager, MaxApps: nil, OwnsApps: 1000},
			wantErr: nil,
		},
		{
			name:    "manager under limit may create",
			account: Account{Role: RoleManager, MaxApps: intPtr(5), OwnsApps: 4},
			wantErr: nil,
		},
		{
			name:    "manager at limit is blocked",
			account: Account{Role: RoleManager, MaxApps: intPtr(5), OwnsApps: 5},
			wantErr: ErrQuotaExceeded,
		},
		{
			name:    "manager over limit is blocked",
			account: Account{Role: RoleManager, MaxApps: intPtr(5), OwnsApps: 6},
			wantErr: ErrQuotaExceeded,
		},
		{
			name:    "zero limit blocks the first create",
			account: Account{Role: RoleManager, MaxApps: intPtr(0), OwnsApps: 0},
			wantErr: ErrQuotaExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckQuota(&tt.account)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("CheckQuota() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCheckLowerLimit(t *testing.T) {
	acc := Account{Role: RoleManager, OwnsApps: 3}

	if err := CheckLowerLimit(&acc, 3); err != nil {
		t.Errorf("limit equal to usage rejected: %v", err)
	}
	if err := CheckLowerLimit(&acc, 10); err != nil {
		t.Errorf("limit above usage rejected: %v", err)
	}

	err := CheckLowerLimit(&acc, 2)
	var below *LimitBelowUsageError
	if !errors.As(err, &below) {
		t.Fatalf("limit below usage accepted, err = %v", err)
	}
	if below.Max != 2 || below.Owns != 3 {
		t.Errorf("LimitBelowUsageError = %+v, want Max=2 Owns=3", below)
	}
}

func TestRoleSatisfies(t *testing.T) {
	tests := []struct {
		role     Role
		required Role
		want     bool
	}{
		{RoleSuper, RoleSuper, true},
		{RoleSuper, RoleManager, true},
		{RoleManager, RoleManager, true},
		{RoleManager, RoleSuper, false},
	}

	for _, tt := range tests {
		if got := tt.role.Satisfies(tt.required); got != tt.want {
			t.Errorf("%s.Satisfies(%s) = %v, want %v", tt.role, tt.required, got, tt.want)
		}
	}
}
