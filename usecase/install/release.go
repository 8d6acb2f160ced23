package install

import (
	"context"
	"fmt"

	"github.com/kompox/lsinstall/domain/model"
	"github.com/kompox/lsinstall/internal/logging"
)

func (u *UseCase) installOptions(r *run, valuesFile string) model.ReleaseInstallOptions {
	return model.ReleaseInstallOptions{
		Version:     r.rc.Request.Version,
		ValuesFile:  valuesFile,
		ValuesFiles: r.rc.Request.ValuesFiles,
		Timeout:     u.Config.InstallTimeout,
	}
}

// installPrimary synthesizes the documents and upgrade-installs the primary
// release.
func (u *UseCase) installPrimary(ctx context.Context, r *run) error {
	if err := u.synthesize(ctx, r); err != nil {
		return err
	}
	rel := u.Config.Primary
	logging.FromContext(ctx).Info(ctx, "installing release", "release", rel.Name, "chart", rel.Chart, "namespace", r.rc.Namespace)
	if err := u.Releases.UpgradeInstall(ctx, r.rc.Namespace, rel, u.installOptions(r, u.Config.PrimaryValuesPath())); err != nil {
		return fmt.Errorf("%w: release %s: %v", model.ErrApply, rel.Name, err)
	}
	r.primaryInstalled = true
	return nil
}

// installExtension upgrade-installs the extension release. The primary
// release is installed first when it is absent and this run has not already
// installed it.
func (u *UseCase) installExtension(ctx context.Context, r *run) error {
	logger := logging.FromContext(ctx)
	if !r.primaryInstalled {
		exists, err := u.Releases.ReleaseExists(ctx, r.rc.Namespace, u.Config.Primary.Name)
		if err != nil {
			return fmt.Errorf("%w: checking release %s: %v", model.ErrApply, u.Config.Primary.Name, err)
		}
		if !exists {
			logger.Info(ctx, "primary release absent, installing it first", "release", u.Config.Primary.Name)
			if err := u.installPrimary(ctx, r); err != nil {
				return err
			}
		}
	}
	if err := u.synthesize(ctx, r); err != nil {
		return err
	}
	rel := u.Config.Extension
	logger.Info(ctx, "installing release", "release", rel.Name, "chart", rel.Chart, "namespace", r.rc.Namespace)
	if err := u.Releases.UpgradeInstall(ctx, r.rc.Namespace, rel, u.installOptions(r, u.Config.ExtensionValuesPath())); err != nil {
		return fmt.Errorf("%w: release %s: %v", model.ErrApply, rel.Name, err)
	}
	return nil
}
