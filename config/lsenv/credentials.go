package lsenv

import (
	"fmt"

	"github.com/joho/godotenv"

	"github.com/kompox/lsinstall/domain/model"
)

// LoadCredentials reads the admin email and license key from a dotenv file.
// The process environment is not consulted.
func LoadCredentials(path string) (model.Credentials, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		return model.Credentials{}, fmt.Errorf("%w: reading credentials file %q: %v", model.ErrPrecondition, path, err)
	}
	creds := model.Credentials{
		Email:      env[EmailKey],
		LicenseKey: env[LicenseKeyKey],
	}
	if err := creds.Validate(); err != nil {
		return model.Credentials{}, fmt.Errorf("credentials file %q: %w", path, err)
	}
	return creds, nil
}
