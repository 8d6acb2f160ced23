package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kompox/lsinstall/adapters/helm"
	"github.com/kompox/lsinstall/adapters/kube"
	"github.com/kompox/lsinstall/config/lsenv"
	"github.com/kompox/lsinstall/domain/model"
	"github.com/kompox/lsinstall/internal/logging"
	"github.com/kompox/lsinstall/internal/naming"
	"github.com/kompox/lsinstall/usecase/install"
)

// resolveNamespace is replaced in tests.
var resolveNamespace = naming.NamespaceFromHost

// loadInstallerConfig reads the installer config named by --config or
// $LSINSTALL_CONFIG.
func loadInstallerConfig(cmd *cobra.Command) (*lsenv.Config, error) {
	path := lsenv.ConfigPath(flagString(cmd, "config"), flagChanged(cmd, "config"))
	cfg, err := lsenv.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrPrecondition, err)
	}
	return cfg, nil
}

// buildInstallUseCase creates the install use case with cluster and Helm ports.
func buildInstallUseCase(cmd *cobra.Command, debug bool) (*install.UseCase, error) {
	cfg, err := loadInstallerConfig(cmd)
	if err != nil {
		return nil, err
	}
	kubeconfig := flagString(cmd, "kubeconfig")
	kubeContext := flagString(cmd, "context")

	kcli, err := kube.NewClientFromDefaultRules(kubeconfig, kubeContext, &kube.Options{UserAgent: "lsinstall"})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrPrecondition, err)
	}
	return &install.UseCase{
		Namespaces: kcli,
		Releases:   helm.NewManager(kubeconfig, kubeContext, debug),
		Endpoints:  kcli,
		Config:     cfg,
	}, nil
}

// prepareRun performs the steps shared by up and down before any cluster
// mutation: prerequisites, credentials, then the namespace.
func prepareRun(ctx context.Context, cmd *cobra.Command, uc *install.UseCase, req model.InstallRequest) (model.RunContext, error) {
	logger := logging.FromContext(ctx)

	if err := uc.CheckPrerequisites(ctx, req.Action); err != nil {
		return model.RunContext{}, err
	}
	creds, err := lsenv.LoadCredentials(flagString(cmd, "env-file"))
	if err != nil {
		return model.RunContext{}, err
	}
	ns, err := resolveNamespace()
	if err != nil {
		return model.RunContext{}, fmt.Errorf("%w: %v", model.ErrPrecondition, err)
	}
	logger.Debug(ctx, "run prepared", "namespace", ns, "action", string(req.Action))
	return model.RunContext{Request: req, Namespace: ns, Credentials: creds}, nil
}
