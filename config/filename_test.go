package config

import "testing"

func TestCleanFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "thesis", "thesis"},
		{"path separator", "thesis/draft", "thesisdraft"},
		{"spaces", "my thesis", "my_thesis"},
		{"tex special", "50% & more#1", "50____more_1"},
		{"braces", "{draft}", "_draft_"},
		{"leading dots", "..hidden", "hidden"},
		{"control", "a\tb\x01c", "abc"},
		{"nothing left", "/", badFileName},
		{"empty", "", badFileName},
		{"unicode kept", "praca-łódź", "praca-łódź"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanFileName(tt.in); got != tt.want {
				t.Errorf("CleanFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
