package naming

import (
	"strings"
	"testing"
)

func TestResolveNamespace(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"My.Host.LOCAL", "my-host-local"},
		{"laptop", "laptop"},
		{"ip-10-0-0-12.ec2.internal", "ip-10-0-0-12-ec2-internal"},
		{"", ""},
		{"...", "---"},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			got := ResolveNamespace(tt.host)
			if got != tt.want {
				t.Errorf("ResolveNamespace(%q) = %q, want %q", tt.host, got, tt.want)
			}
			if again := ResolveNamespace(tt.host); again != got {
				t.Errorf("not deterministic: %q then %q", got, again)
			}
			if strings.Contains(got, ".") || got != strings.ToLower(got) {
				t.Errorf("ResolveNamespace(%q) = %q contains dots or uppercase", tt.host, got)
			}
		})
	}
}

func TestValidateNamespace(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"my-host-local", false},
		{"", true},
		{"host_with_underscore", true},
		{"-leading", true},
		{strings.Repeat("a", 63), false},
		{strings.Repeat("a", 64), true},
	}
	for _, tt := range tests {
		err := ValidateNamespace(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateNamespace(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestValidateReleaseName(t *testing.T) {
	if err := ValidateReleaseName("langsmith"); err != nil {
		t.Errorf("langsmith: %v", err)
	}
	if err := ValidateReleaseName(strings.Repeat("r", 54)); err == nil {
		t.Error("expected error for 54-char release name")
	}
}
