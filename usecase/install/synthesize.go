package install

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/kompox/lsinstall/domain/model"
	"github.com/kompox/lsinstall/internal/logging"
	"github.com/kompox/lsinstall/internal/secretgen"
	"github.com/kompox/lsinstall/internal/valuesdoc"
)

const derivedFileMode = 0o600

// synthesize renders the derived values documents from the base template.
// Secrets are generated on the first call and reused for the rest of the run,
// so later calls are no-ops.
func (u *UseCase) synthesize(ctx context.Context, r *run) error {
	if r.synthesized {
		return nil
	}
	logger := logging.FromContext(ctx)

	data, err := os.ReadFile(u.Config.BaseTemplate)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: base template %q not found", model.ErrPrecondition, u.Config.BaseTemplate)
	}
	if err != nil {
		return fmt.Errorf("%w: reading base template %q: %v", model.ErrPrecondition, u.Config.BaseTemplate, err)
	}
	base, err := valuesdoc.Load(data)
	if err != nil {
		return fmt.Errorf("%w: base template %q: %v", model.ErrPrecondition, u.Config.BaseTemplate, err)
	}

	if r.secrets == nil {
		s, err := secretgen.Generate(u.Rand)
		if err != nil {
			return err
		}
		r.secrets = &s
	}

	req := r.rc.Request
	primary, err := valuesdoc.RenderPrimary(base, r.rc.Credentials, *r.secrets, req.InstallExtension)
	if err != nil {
		return fmt.Errorf("rendering primary values: %w", err)
	}
	if err := writeDocument(u.Config.PrimaryValuesPath(), primary); err != nil {
		return err
	}
	logger.Info(ctx, "wrote values document", "path", u.Config.PrimaryValuesPath())

	if req.InstallExtension {
		ext, err := valuesdoc.RenderExtension(primary, r.rc.Credentials.LicenseKey)
		if err != nil {
			return fmt.Errorf("rendering extension values: %w", err)
		}
		if err := writeDocument(u.Config.ExtensionValuesPath(), ext); err != nil {
			return err
		}
		logger.Info(ctx, "wrote values document", "path", u.Config.ExtensionValuesPath())
	}

	r.synthesized = true
	return nil
}

func writeDocument(path string, doc *valuesdoc.Document) error {
	out, err := doc.Bytes()
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, out, derivedFileMode); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(path, derivedFileMode); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	return nil
}
