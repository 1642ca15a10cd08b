package utils

import "testing"

func TestMatchesPermission(t *testing.T) {
	tests := []struct {
		name         string
		userPerm     string
		requiredPerm string
		expected     bool
	}{
		// Exact matches
		{"exact match", "saf:verify", "saf:verify", true},
		{"different action", "saf:read", "saf:verify", false},
		{"different resource", "saf:read", "receipt:read", false},

		// Full wildcard
		{"full wildcard *:*:*", "*:*:*", "geotag:capture", true},
		{"full wildcard *", "*", "memo:read", true},

		// Resource wildcard
		{"resource wildcard matches read", "saf:*", "saf:read", true},
		{"resource wildcard matches verify", "saf:*", "saf:verify", true},
		{"resource wildcard other resource", "saf:*", "geotag:capture", false},

		// Action wildcard
		{"action wildcard matches receipts", "*:read", "receipt:read", true},
		{"action wildcard matches masters", "*:read", "master:read", true},
		{"action wildcard other action", "*:read", "saf:verify", false},

		// Edge cases
		{"empty required permission", "saf:read", "", false},
		{"empty user permission", "", "saf:read", false},
		{"both empty", "", "", true},
		{"single part", "admin", "admin", true},
		{"single part vs multi-part", "admin", "admin:read", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MatchesPermission(tt.userPerm, tt.requiredPerm)
			if result != tt.expected {
				t.Errorf("MatchesPermission(%q, %q) = %v, expected %v",
					tt.userPerm, tt.requiredPerm, result, tt.expected)
			}
		})
	}
}

func TestHasAnyPermission(t *testing.T) {
	tests := []struct {
		name     string
		granted  []string
		required string
		expected bool
	}{
		{"ULB TC can verify", []string{"saf:read", "saf:verify", "*:read"}, "saf:verify", true},
		{"ULB TC cannot geotag", []string{"saf:read", "saf:verify", "*:read"}, "geotag:capture", false},
		{"agency TC geotags", []string{"saf:*", "geotag:capture"}, "geotag:capture", true},
		{"super admin", []string{"*:*:*"}, "memo:read", true},
		{"no grants", nil, "saf:read", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasAnyPermission(tt.granted, tt.required); got != tt.expected {
				t.Errorf("HasAnyPermission(%v, %q) = %v, expected %v", tt.granted, tt.required, got, tt.expected)
			}
		})
	}
}

func BenchmarkMatchesPermission(b *testing.B) {
	for i := 0; i < b.N; i++ {
		MatchesPermission("saf:*", "saf:verify")
	}
}
