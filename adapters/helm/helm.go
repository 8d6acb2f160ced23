// Package helm drives chart repositories and releases through the Helm v3 SDK.
package helm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kompox/lsinstall/domain/model"
	"github.com/kompox/lsinstall/internal/logging"
	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/getter"
	"helm.sh/helm/v3/pkg/repo"
	helmdriver "helm.sh/helm/v3/pkg/storage/driver"
	"k8s.io/cli-runtime/pkg/genericclioptions"
)

// DefaultTimeout bounds the wait for release resources to become ready.
const DefaultTimeout = 30 * time.Minute

// Manager implements model.ReleasePort.
type Manager struct {
	Settings *cli.EnvSettings
	// Debug routes Helm's own log output to the context logger at debug level.
	Debug bool

	kubeconfig  string
	kubeContext string

	// newConfig and loadChart are swapped out by tests.
	newConfig func(ctx context.Context, namespace string) (*action.Configuration, error)
	loadChart func(ref, version string) (*chart.Chart, error)
}

var _ model.ReleasePort = (*Manager)(nil)

// NewManager returns a Manager talking to the cluster selected by kubeconfig
// and kubeContext (both optional).
func NewManager(kubeconfig, kubeContext string, debug bool) *Manager {
	settings := cli.New()
	if kubeconfig != "" {
		settings.KubeConfig = kubeconfig
	}
	if kubeContext != "" {
		settings.KubeContext = kubeContext
	}
	settings.Debug = debug
	m := &Manager{Settings: settings, Debug: debug, kubeconfig: kubeconfig, kubeContext: kubeContext}
	m.newConfig = m.actionConfig
	m.loadChart = m.locateChart
	return m
}

func (m *Manager) actionConfig(ctx context.Context, namespace string) (*action.Configuration, error) {
	flags := genericclioptions.NewConfigFlags(true)
	flags.Namespace = &namespace
	if m.kubeconfig != "" {
		flags.KubeConfig = &m.kubeconfig
	}
	if m.kubeContext != "" {
		flags.Context = &m.kubeContext
	}

	cfg := new(action.Configuration)
	if err := cfg.Init(flags, namespace, "secret", m.logFunc(ctx)); err != nil {
		return nil, fmt.Errorf("init helm configuration: %w", err)
	}
	return cfg, nil
}

func (m *Manager) logFunc(ctx context.Context) action.DebugLog {
	if !m.Debug {
		return func(format string, v ...any) {}
	}
	logger := logging.FromContext(ctx).With("component", "helm")
	return func(format string, v ...any) { logger.Debugf(ctx, format, v...) }
}

func (m *Manager) locateChart(ref, version string) (*chart.Chart, error) {
	cpo := action.ChartPathOptions{Version: version}
	chartPath, err := cpo.LocateChart(ref, m.Settings)
	if err != nil {
		return nil, fmt.Errorf("locate chart %s: %w", ref, err)
	}
	ch, err := loader.Load(chartPath)
	if err != nil {
		return nil, fmt.Errorf("load chart %s: %w", ref, err)
	}
	return ch, nil
}

// AddRepo registers the repository and refreshes its index, the SDK
// equivalent of "helm repo add" followed by "helm repo update".
func (m *Manager) AddRepo(ctx context.Context, r model.Repository) error {
	if r.Name == "" || r.URL == "" {
		return fmt.Errorf("repository name and url are required")
	}
	logger := logging.FromContext(ctx)

	entry := &repo.Entry{Name: r.Name, URL: r.URL}
	cr, err := repo.NewChartRepository(entry, getter.All(m.Settings))
	if err != nil {
		return fmt.Errorf("helm repo %s: %w", r.Name, err)
	}
	cr.CachePath = m.Settings.RepositoryCache
	if _, err := cr.DownloadIndexFile(); err != nil {
		return fmt.Errorf("helm repo %s: download index from %s: %w", r.Name, r.URL, err)
	}

	repoFile := m.Settings.RepositoryConfig
	f, err := repo.LoadFile(repoFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", repoFile, err)
		}
		f = repo.NewFile()
	}
	f.Update(entry)
	if err := os.MkdirAll(filepath.Dir(repoFile), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(repoFile), err)
	}
	if err := f.WriteFile(repoFile, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", repoFile, err)
	}
	logger.Debug(ctx, "helm repository ready", "repo", r.Name, "url", r.URL)
	return nil
}

// ReleaseExists reports whether a release with the given name is recorded in namespace.
func (m *Manager) ReleaseExists(ctx context.Context, namespace, name string) (bool, error) {
	cfg, err := m.newConfig(ctx, namespace)
	if err != nil {
		return false, err
	}
	if _, err := action.NewGet(cfg).Run(name); err != nil {
		if errors.Is(err, helmdriver.ErrReleaseNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("helm get %s: %w", name, err)
	}
	return true, nil
}

// UpgradeInstall upgrades rel, or installs it when no deployed release exists,
// and waits for its resources to become ready.
func (m *Manager) UpgradeInstall(ctx context.Context, namespace string, rel model.ReleaseSpec, opts model.ReleaseInstallOptions) error {
	cfg, err := m.newConfig(ctx, namespace)
	if err != nil {
		return err
	}
	ch, err := m.loadChart(rel.Chart, opts.Version)
	if err != nil {
		return err
	}
	values, err := LoadValues(opts.ValuesFile, opts.ValuesFiles...)
	if err != nil {
		return err
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	// Try upgrade first; if the release doesn't exist, fallback to install (CLI-compatible behavior)
	up := action.NewUpgrade(cfg)
	up.Namespace = namespace
	up.Version = opts.Version
	up.Wait = true
	up.Timeout = timeout
	if _, err := up.RunWithContext(ctx, rel.Name, ch, values); err != nil {
		if !errors.Is(err, helmdriver.ErrNoDeployedReleases) {
			return fmt.Errorf("helm upgrade %s: %w", rel.Name, err)
		}
		in := action.NewInstall(cfg)
		in.Namespace = namespace
		in.ReleaseName = rel.Name
		in.Version = opts.Version
		in.Wait = true
		in.Timeout = timeout
		if _, err := in.RunWithContext(ctx, ch, values); err != nil {
			return fmt.Errorf("helm install %s: %w", rel.Name, err)
		}
	}
	return nil
}

// Uninstall removes the release. A missing release yields model.ErrReleaseNotFound.
func (m *Manager) Uninstall(ctx context.Context, namespace, name string) error {
	cfg, err := m.newConfig(ctx, namespace)
	if err != nil {
		return err
	}
	un := action.NewUninstall(cfg)
	if _, err := un.Run(name); err != nil {
		if errors.Is(err, helmdriver.ErrReleaseNotFound) {
			return fmt.Errorf("%w: %s", model.ErrReleaseNotFound, name)
		}
		return fmt.Errorf("helm uninstall %s: %w", name, err)
	}
	return nil
}
