package valuesdoc

import (
	"fmt"

	"github.com/kompox/lsinstall/domain/model"
)

// Fields substituted into the primary values document.
var (
	LicenseKeyPath    = Path{"config", "langsmithLicenseKey"}
	APIKeySaltPath    = Path{"config", "apiKeySalt"}
	JWTSecretPath     = Path{"config", "jwtSecret"}
	AdminEmailPath    = Path{"config", "initialOrgAdminEmail"}
	AdminPasswordPath = Path{"config", "initialOrgAdminPassword"}

	// ExtensionLicenseKeyPath is only written when the extension is installed.
	ExtensionLicenseKeyPath = Path{"config", "langgraphPlatformLicenseKey"}

	ExtensionEnabledPath         = Path{"config", "langgraphPlatform", "enabled"}
	ExtensionBlockLicenseKeyPath = Path{"config", "langgraphPlatform", "langgraphPlatformLicenseKey"}
)

// PrimaryPaths lists the fields RenderPrimary always writes.
func PrimaryPaths() []Path {
	return []Path{LicenseKeyPath, APIKeySaltPath, JWTSecretPath, AdminEmailPath, AdminPasswordPath}
}

type assignment struct {
	path  Path
	value string
}

// RenderPrimary returns a copy of base with credentials and secrets substituted.
// Nothing outside the substituted fields changes.
func RenderPrimary(base *Document, creds model.Credentials, secrets model.Secrets, includeExtensionLicense bool) (*Document, error) {
	doc, err := base.Clone()
	if err != nil {
		return nil, err
	}
	sets := []assignment{
		{LicenseKeyPath, creds.LicenseKey},
		{APIKeySaltPath, secrets.APIKeySalt},
		{JWTSecretPath, secrets.JWTSecret},
		{AdminEmailPath, creds.Email},
		{AdminPasswordPath, secrets.AdminPassword},
	}
	if includeExtensionLicense {
		sets = append(sets, assignment{ExtensionLicenseKeyPath, creds.LicenseKey})
	}
	for _, s := range sets {
		if err := doc.SetString(s.path, s.value); err != nil {
			return nil, fmt.Errorf("set %s: %w", s.path, err)
		}
	}
	return doc, nil
}

// RenderExtension derives the extension document from an already rendered
// primary document, so both share the same secrets. Applying it twice gives
// the same result as applying it once.
func RenderExtension(primary *Document, licenseKey string) (*Document, error) {
	doc, err := primary.Clone()
	if err != nil {
		return nil, err
	}
	if err := doc.SetBool(ExtensionEnabledPath, true); err != nil {
		return nil, fmt.Errorf("set %s: %w", ExtensionEnabledPath, err)
	}
	if err := doc.SetString(ExtensionBlockLicenseKeyPath, licenseKey); err != nil {
		return nil, fmt.Errorf("set %s: %w", ExtensionBlockLicenseKeyPath, err)
	}
	return doc, nil
}
