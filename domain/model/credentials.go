package model

import (
	"fmt"
	"strings"
)

// Credentials are the operator-supplied admin email and license key.
type Credentials struct {
	Email      string
	LicenseKey string
}

// Validate reports a precondition error when a required value is missing.
func (c Credentials) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Email) == "" {
		missing = append(missing, "initialOrgAdminEmail")
	}
	if strings.TrimSpace(c.LicenseKey) == "" {
		missing = append(missing, "LicenseKey")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required credential(s): %s", ErrPrecondition, strings.Join(missing, ", "))
	}
	return nil
}

// Secrets are generated once per run and shared by both values documents.
type Secrets struct {
	APIKeySalt    string
	JWTSecret     string
	AdminPassword string
}
