package install

import (
	"context"
	"errors"
	"fmt"

	"github.com/kompox/lsinstall/domain/model"
	"github.com/kompox/lsinstall/internal/logging"
)

// UpOutput is what the operator needs after a successful up.
type UpOutput struct {
	Namespace string
	// Endpoint is the ingress URL or a manual lookup hint.
	Endpoint string
	Email    string
	// Password is set only when the primary release was installed by this run.
	Password string
	// ValuesFiles lists the derived documents written by this run.
	ValuesFiles []string
}

// Up ensures the namespace and repository, then installs the requested
// releases. An endpoint is resolved only when the primary release was
// installed by this run.
func (u *UseCase) Up(ctx context.Context, rc model.RunContext) (*UpOutput, error) {
	if rc.Request.Action != model.ActionUp {
		return nil, fmt.Errorf("%w: Up called with action %q", model.ErrPrecondition, rc.Request.Action)
	}
	logger := logging.FromContext(ctx).With("namespace", rc.Namespace)
	ctx = logging.WithLogger(ctx, logger)

	if err := u.Namespaces.EnsureNamespace(ctx, rc.Namespace); err != nil {
		return nil, fmt.Errorf("%w: ensuring namespace: %v", model.ErrApply, err)
	}
	if err := u.Releases.AddRepo(ctx, u.Config.Repo); err != nil {
		return nil, fmt.Errorf("%w: registering repository %s: %v", model.ErrApply, u.Config.Repo.Name, err)
	}

	r := newRun(rc)
	if rc.Request.InstallPrimary {
		if err := u.installPrimary(ctx, r); err != nil {
			return nil, err
		}
	}
	if rc.Request.InstallExtension {
		if err := u.installExtension(ctx, r); err != nil {
			return nil, err
		}
	}

	out := &UpOutput{
		Namespace: rc.Namespace,
		Email:     rc.Credentials.Email,
	}
	if r.synthesized {
		out.ValuesFiles = append(out.ValuesFiles, u.Config.PrimaryValuesPath())
		if rc.Request.InstallExtension {
			out.ValuesFiles = append(out.ValuesFiles, u.Config.ExtensionValuesPath())
		}
	}
	if r.primaryInstalled {
		out.Password = r.secrets.AdminPassword
		endpoint, err := u.ResolveEndpoint(ctx, rc.Namespace)
		switch {
		case err == nil:
			out.Endpoint = endpoint
		case errors.Is(err, model.ErrDiscoveryTimeout):
			logger.Warn(ctx, "endpoint not discovered", "error", err)
			out.Endpoint = ManualEndpointHint(rc.Namespace)
		default:
			return nil, err
		}
	}

	logger.Info(ctx, "up completed", "primary", r.primaryInstalled, "extension", rc.Request.InstallExtension)
	return out, nil
}
