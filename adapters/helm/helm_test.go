package helm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/kompox/lsinstall/domain/model"
	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chartutil"
	kubefake "helm.sh/helm/v3/pkg/kube/fake"
	"helm.sh/helm/v3/pkg/repo"
	"helm.sh/helm/v3/pkg/storage"
	helmdriver "helm.sh/helm/v3/pkg/storage/driver"
)

const testNamespace = "my-host"

// newTestManager returns a Manager backed by in-memory release storage and a
// kube client that accepts everything.
func newTestManager(t *testing.T) (*Manager, *action.Configuration) {
	t.Helper()
	mem := helmdriver.NewMemory()
	mem.SetNamespace(testNamespace)
	cfg := &action.Configuration{
		Releases:     storage.Init(mem),
		KubeClient:   &kubefake.PrintingKubeClient{Out: io.Discard},
		Capabilities: chartutil.DefaultCapabilities,
		Log:          func(format string, v ...interface{}) {},
	}
	m := NewManager("", "", false)
	m.newConfig = func(context.Context, string) (*action.Configuration, error) { return cfg, nil }
	m.loadChart = func(ref, version string) (*chart.Chart, error) { return testChart(), nil }
	return m, cfg
}

func testChart() *chart.Chart {
	return &chart.Chart{
		Metadata: &chart.Metadata{APIVersion: chart.APIVersionV2, Name: "langsmith", Version: "0.1.0"},
		Templates: []*chart.File{{
			Name: "templates/configmap.yaml",
			Data: []byte("apiVersion: v1\nkind: ConfigMap\nmetadata:\n  name: {{ .Release.Name }}\ndata:\n  email: {{ .Values.config.initialOrgAdminEmail | quote }}\n"),
		}},
	}
}

func writeValues(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "values.yaml")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestUpgradeInstallLifecycle(t *testing.T) {
	ctx := context.Background()
	m, cfg := newTestManager(t)
	rel := model.ReleaseSpec{Name: "langsmith", Chart: "langchain/langsmith"}
	opts := model.ReleaseInstallOptions{ValuesFile: writeValues(t, "config:\n  initialOrgAdminEmail: a@b.com\n")}

	exists, err := m.ReleaseExists(ctx, testNamespace, rel.Name)
	if err != nil || exists {
		t.Fatalf("ReleaseExists before install = %v, %v", exists, err)
	}

	if err := m.UpgradeInstall(ctx, testNamespace, rel, opts); err != nil {
		t.Fatalf("first UpgradeInstall (install path): %v", err)
	}
	if exists, err := m.ReleaseExists(ctx, testNamespace, rel.Name); err != nil || !exists {
		t.Fatalf("ReleaseExists after install = %v, %v", exists, err)
	}

	if err := m.UpgradeInstall(ctx, testNamespace, rel, opts); err != nil {
		t.Fatalf("second UpgradeInstall (upgrade path): %v", err)
	}
	last, err := cfg.Releases.Last(rel.Name)
	if err != nil {
		t.Fatal(err)
	}
	if last.Version != 2 {
		t.Errorf("release revision = %d, want 2", last.Version)
	}
	if got := last.Config["config"].(map[string]interface{})["initialOrgAdminEmail"]; got != "a@b.com" {
		t.Errorf("release values email = %v", got)
	}

	if err := m.Uninstall(ctx, testNamespace, rel.Name); err != nil {
		t.Fatalf("Uninstall: %v", err)
	}
	if err := m.Uninstall(ctx, testNamespace, rel.Name); !errors.Is(err, model.ErrReleaseNotFound) {
		t.Fatalf("second Uninstall error = %v, want ErrReleaseNotFound", err)
	}
}

func TestUpgradeInstallMissingValues(t *testing.T) {
	m, _ := newTestManager(t)
	err := m.UpgradeInstall(context.Background(), testNamespace, model.ReleaseSpec{Name: "langsmith"}, model.ReleaseInstallOptions{ValuesFile: filepath.Join(t.TempDir(), "absent.yaml")})
	if err == nil {
		t.Fatal("expected error for missing values file")
	}
}

func TestAddRepo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/index.yaml" {
			http.NotFound(w, r)
			return
		}
		_, _ = io.WriteString(w, "apiVersion: v1\nentries: {}\n")
	}))
	defer srv.Close()

	dir := t.TempDir()
	m := NewManager("", "", false)
	m.Settings.RepositoryConfig = filepath.Join(dir, "config", "repositories.yaml")
	m.Settings.RepositoryCache = filepath.Join(dir, "cache")

	r := model.Repository{Name: "langchain", URL: srv.URL}
	for i := 0; i < 2; i++ {
		if err := m.AddRepo(context.Background(), r); err != nil {
			t.Fatalf("AddRepo #%d: %v", i+1, err)
		}
	}
	f, err := repo.LoadFile(m.Settings.RepositoryConfig)
	if err != nil {
		t.Fatal(err)
	}
	if len(f.Repositories) != 1 || f.Get("langchain") == nil || f.Get("langchain").URL != srv.URL {
		t.Errorf("repositories file = %+v", f.Repositories)
	}
	if _, err := os.Stat(filepath.Join(m.Settings.RepositoryCache, "langchain-index.yaml")); err != nil {
		t.Errorf("index not cached: %v", err)
	}
}

func TestAddRepoRequiresFields(t *testing.T) {
	m := NewManager("", "", false)
	if err := m.AddRepo(context.Background(), model.Repository{Name: "x"}); err == nil {
		t.Fatal("expected error for missing url")
	}
}
