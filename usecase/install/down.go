package install

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/kompox/lsinstall/domain/model"
	"github.com/kompox/lsinstall/internal/logging"
)

// DownOutput reports what teardown did.
type DownOutput struct {
	Namespace string
	// NamespaceFound is false when there was nothing to tear down.
	NamespaceFound bool
	// Warnings holds the non-fatal failures of individual steps.
	Warnings []string
}

// Down runs UninstallAll for a down request.
func (u *UseCase) Down(ctx context.Context, rc model.RunContext) (*DownOutput, error) {
	if rc.Request.Action != model.ActionDown {
		return nil, fmt.Errorf("%w: Down called with action %q", model.ErrPrecondition, rc.Request.Action)
	}
	return u.UninstallAll(ctx, rc.Namespace)
}

// UninstallAll uninstalls both releases and removes their storage, the
// namespace and the derived documents. Only a failed namespace lookup is
// fatal; every later step is attempted even when an earlier one fails.
// An absent namespace ends the call right after the lookup.
func (u *UseCase) UninstallAll(ctx context.Context, namespace string) (*DownOutput, error) {
	logger := logging.FromContext(ctx).With("namespace", namespace)
	ctx = logging.WithLogger(ctx, logger)
	out := &DownOutput{Namespace: namespace}

	exists, err := u.Namespaces.NamespaceExists(ctx, namespace)
	if err != nil {
		return nil, fmt.Errorf("checking namespace: %w", err)
	}
	if !exists {
		logger.Info(ctx, "namespace not found, nothing to uninstall")
		return out, nil
	}
	out.NamespaceFound = true

	warn := func(msg string, err error) {
		logger.Warn(ctx, msg, "error", err)
		out.Warnings = append(out.Warnings, fmt.Sprintf("%s: %v", msg, err))
	}

	for _, rel := range []model.ReleaseSpec{u.Config.Extension, u.Config.Primary} {
		logger.Info(ctx, "uninstalling release", "release", rel.Name)
		if err := u.Releases.Uninstall(ctx, namespace, rel.Name); err != nil {
			warn("uninstall "+rel.Name, err)
		}
	}

	logger.Info(ctx, "deleting persistent volume claims", "count", len(u.Config.PVCNames))
	for _, err := range u.Namespaces.DeletePVCs(ctx, namespace, u.Config.PVCNames) {
		warn("delete pvc", err)
	}

	logger.Info(ctx, "deleting namespace")
	if err := u.Namespaces.DeleteNamespace(ctx, namespace); err != nil {
		warn("delete namespace", err)
	}

	for _, path := range []string{u.Config.PrimaryValuesPath(), u.Config.ExtensionValuesPath()} {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			warn("remove "+path, err)
		}
	}

	logger.Info(ctx, "down completed", "warnings", len(out.Warnings))
	return out, nil
}
