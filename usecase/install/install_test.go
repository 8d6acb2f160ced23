package install

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/kompox/lsinstall/config/lsenv"
	"github.com/kompox/lsinstall/domain/model"
	"github.com/kompox/lsinstall/internal/valuesdoc"
)

const testNamespace = "build-host"

const baseTemplate = `# LangSmith values
config:
  langsmithLicenseKey: ""
  apiKeySalt: ""
  jwtSecret: ""
  initialOrgAdminEmail: ""
  initialOrgAdminPassword: ""
ingress:
  enabled: true
`

var testCreds = model.Credentials{Email: "admin@example.com", LicenseKey: "lic-123"}

// fakeCluster records NamespacePort and EndpointPort calls.
type fakeCluster struct {
	calls *[]string

	pingErr     error
	exists      bool
	existsErr   error
	ensureErr   error
	deleteErr   error
	pvcErrs     []error
	addrs       []string // returned in order, the last one repeats
	addrErr     error
	addrCalls   int
	deletedPVCs []string
}

func (f *fakeCluster) Ping(ctx context.Context) error {
	*f.calls = append(*f.calls, "Ping")
	return f.pingErr
}

func (f *fakeCluster) NamespaceExists(ctx context.Context, name string) (bool, error) {
	*f.calls = append(*f.calls, "NamespaceExists "+name)
	return f.exists, f.existsErr
}

func (f *fakeCluster) EnsureNamespace(ctx context.Context, name string) error {
	*f.calls = append(*f.calls, "EnsureNamespace "+name)
	return f.ensureErr
}

func (f *fakeCluster) DeleteNamespace(ctx context.Context, name string) error {
	*f.calls = append(*f.calls, "DeleteNamespace "+name)
	return f.deleteErr
}

func (f *fakeCluster) DeletePVCs(ctx context.Context, namespace string, names []string) []error {
	*f.calls = append(*f.calls, "DeletePVCs "+namespace)
	f.deletedPVCs = append(f.deletedPVCs, names...)
	return f.pvcErrs
}

func (f *fakeCluster) IngressAddress(ctx context.Context, namespace, name string) (string, error) {
	*f.calls = append(*f.calls, "IngressAddress "+name)
	f.addrCalls++
	if f.addrErr != nil {
		return "", f.addrErr
	}
	if len(f.addrs) == 0 {
		return "", nil
	}
	a := f.addrs[0]
	if len(f.addrs) > 1 {
		f.addrs = f.addrs[1:]
	}
	return a, nil
}

// fakeReleases records ReleasePort calls.
type fakeReleases struct {
	calls *[]string

	present      map[string]bool
	installErr   map[string]error
	uninstallErr map[string]error
	opts         map[string]model.ReleaseInstallOptions
	// values holds the values document content seen at install time.
	values map[string]string
}

func (f *fakeReleases) AddRepo(ctx context.Context, repo model.Repository) error {
	*f.calls = append(*f.calls, "AddRepo "+repo.Name)
	return nil
}

func (f *fakeReleases) ReleaseExists(ctx context.Context, namespace, name string) (bool, error) {
	*f.calls = append(*f.calls, "ReleaseExists "+name)
	return f.present[name], nil
}

func (f *fakeReleases) UpgradeInstall(ctx context.Context, namespace string, rel model.ReleaseSpec, opts model.ReleaseInstallOptions) error {
	*f.calls = append(*f.calls, "UpgradeInstall "+rel.Name)
	if err := f.installErr[rel.Name]; err != nil {
		return err
	}
	if f.opts == nil {
		f.opts = map[string]model.ReleaseInstallOptions{}
		f.values = map[string]string{}
	}
	f.opts[rel.Name] = opts
	data, err := os.ReadFile(opts.ValuesFile)
	if err != nil {
		return err
	}
	f.values[rel.Name] = string(data)
	return nil
}

func (f *fakeReleases) Uninstall(ctx context.Context, namespace, name string) error {
	*f.calls = append(*f.calls, "Uninstall "+name)
	return f.uninstallErr[name]
}

type fixture struct {
	uc       *UseCase
	cluster  *fakeCluster
	releases *fakeReleases
	calls    []string
	dir      string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	base := filepath.Join(dir, "langsmith_config.yaml")
	if err := os.WriteFile(base, []byte(baseTemplate), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := lsenv.Default()
	cfg.BaseTemplate = base
	cfg.EndpointPoll = lsenv.EndpointPoll{Attempts: 3, Interval: time.Millisecond}

	f := &fixture{dir: dir}
	f.cluster = &fakeCluster{calls: &f.calls}
	f.releases = &fakeReleases{calls: &f.calls}
	f.uc = &UseCase{
		Namespaces: f.cluster,
		Releases:   f.releases,
		Endpoints:  f.cluster,
		Config:     cfg,
	}
	return f
}

func upContext(t *testing.T, opts ...model.InstallRequestOption) model.RunContext {
	t.Helper()
	req, err := model.NewInstallRequest(model.ActionUp, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return model.RunContext{Request: *req, Namespace: testNamespace, Credentials: testCreds}
}

func downContext(t *testing.T) model.RunContext {
	t.Helper()
	req, err := model.NewInstallRequest(model.ActionDown)
	if err != nil {
		t.Fatal(err)
	}
	return model.RunContext{Request: *req, Namespace: testNamespace, Credentials: testCreds}
}

func loadDoc(t *testing.T, content string) *valuesdoc.Document {
	t.Helper()
	doc, err := valuesdoc.Load([]byte(content))
	if err != nil {
		t.Fatalf("loading values document: %v", err)
	}
	return doc
}

func TestUpPrimaryOnly(t *testing.T) {
	f := newFixture(t)
	f.cluster.addrs = []string{"", "lb.example.com"}

	out, err := f.uc.Up(context.Background(), upContext(t, model.WithPrimary(true), model.WithVersion("0.10.1")))
	if err != nil {
		t.Fatalf("Up() error: %v", err)
	}

	want := []string{
		"EnsureNamespace " + testNamespace,
		"AddRepo langchain",
		"UpgradeInstall langsmith",
		"IngressAddress langsmith-ingress",
		"IngressAddress langsmith-ingress",
	}
	if diff := cmp.Diff(want, f.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}

	if out.Endpoint != "http://lb.example.com" {
		t.Errorf("Endpoint = %q", out.Endpoint)
	}
	if out.Email != testCreds.Email || out.Password == "" || out.Namespace != testNamespace {
		t.Errorf("unexpected output: %+v", out)
	}
	if diff := cmp.Diff([]string{f.uc.Config.PrimaryValuesPath()}, out.ValuesFiles); diff != "" {
		t.Errorf("ValuesFiles mismatch (-want +got):\n%s", diff)
	}

	opts := f.releases.opts["langsmith"]
	if opts.Version != "0.10.1" || opts.Timeout != 30*time.Minute || opts.ValuesFile != f.uc.Config.PrimaryValuesPath() {
		t.Errorf("unexpected install options: %+v", opts)
	}

	doc := loadDoc(t, f.releases.values["langsmith"])
	for _, p := range valuesdoc.PrimaryPaths() {
		if v, ok := doc.GetString(p); !ok || v == "" {
			t.Errorf("%s not populated", p)
		}
	}
	if pw, _ := doc.GetString(valuesdoc.AdminPasswordPath); pw != out.Password {
		t.Errorf("document password %q differs from reported %q", pw, out.Password)
	}
	if doc.Has(valuesdoc.ExtensionLicenseKeyPath) {
		t.Error("extension license key must not be added without the extension")
	}

	info, err := os.Stat(f.uc.Config.PrimaryValuesPath())
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("primary values mode = %v, want 0600", info.Mode().Perm())
	}
	if _, err := os.Stat(f.uc.Config.ExtensionValuesPath()); !os.IsNotExist(err) {
		t.Errorf("extension values should not be written, stat error = %v", err)
	}
}

func TestUpExtensionInstallsAbsentPrimaryOnce(t *testing.T) {
	f := newFixture(t)
	f.cluster.addrs = []string{"10.0.0.7"}

	out, err := f.uc.Up(context.Background(), upContext(t, model.WithExtension(true)))
	if err != nil {
		t.Fatalf("Up() error: %v", err)
	}

	want := []string{
		"EnsureNamespace " + testNamespace,
		"AddRepo langchain",
		"ReleaseExists langsmith",
		"UpgradeInstall langsmith",
		"UpgradeInstall langgraph-dataplane",
		"IngressAddress langsmith-ingress",
	}
	if diff := cmp.Diff(want, f.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	if out.Endpoint != "http://10.0.0.7" || out.Password == "" {
		t.Errorf("unexpected output: %+v", out)
	}

	primary := loadDoc(t, f.releases.values["langsmith"])
	if v, _ := primary.GetString(valuesdoc.ExtensionLicenseKeyPath); v != testCreds.LicenseKey {
		t.Errorf("primary %s = %q", valuesdoc.ExtensionLicenseKeyPath, v)
	}

	ext := loadDoc(t, f.releases.values["langgraph-dataplane"])
	var got struct {
		Config struct {
			APIKeySalt        string `yaml:"apiKeySalt"`
			LanggraphPlatform struct {
				Enabled    bool   `yaml:"enabled"`
				LicenseKey string `yaml:"langgraphPlatformLicenseKey"`
			} `yaml:"langgraphPlatform"`
		} `yaml:"config"`
	}
	if err := ext.Decode(&got); err != nil {
		t.Fatal(err)
	}
	if !got.Config.LanggraphPlatform.Enabled || got.Config.LanggraphPlatform.LicenseKey != testCreds.LicenseKey {
		t.Errorf("extension block = %+v", got.Config.LanggraphPlatform)
	}
	if salt, _ := primary.GetString(valuesdoc.APIKeySaltPath); salt != got.Config.APIKeySalt {
		t.Error("extension document must share the primary document's secrets")
	}
}

func TestUpExtensionWithPrimaryPresent(t *testing.T) {
	f := newFixture(t)
	f.releases.present = map[string]bool{"langsmith": true}

	out, err := f.uc.Up(context.Background(), upContext(t, model.WithExtension(true)))
	if err != nil {
		t.Fatalf("Up() error: %v", err)
	}

	want := []string{
		"EnsureNamespace " + testNamespace,
		"AddRepo langchain",
		"ReleaseExists langsmith",
		"UpgradeInstall langgraph-dataplane",
	}
	if diff := cmp.Diff(want, f.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	if out.Password != "" || out.Endpoint != "" {
		t.Errorf("password and endpoint are reported only after a primary install: %+v", out)
	}
	if len(out.ValuesFiles) != 2 {
		t.Errorf("ValuesFiles = %v", out.ValuesFiles)
	}
}

func TestUpBothInstallsPrimaryOnce(t *testing.T) {
	f := newFixture(t)
	f.cluster.addrs = []string{"lb"}

	if _, err := f.uc.Up(context.Background(), upContext(t, model.WithPrimary(true), model.WithExtension(true))); err != nil {
		t.Fatalf("Up() error: %v", err)
	}
	n := 0
	for _, c := range f.calls {
		if c == "UpgradeInstall langsmith" {
			n++
		}
		if strings.HasPrefix(c, "ReleaseExists") {
			t.Errorf("unexpected existence check after installing the primary: %v", f.calls)
		}
	}
	if n != 1 {
		t.Errorf("primary installed %d times, want 1", n)
	}
}

func TestUpEndpointTimeoutReportsHint(t *testing.T) {
	f := newFixture(t)
	f.cluster.addrErr = errors.New("forbidden")

	out, err := f.uc.Up(context.Background(), upContext(t, model.WithPrimary(true)))
	if err != nil {
		t.Fatalf("Up() error: %v", err)
	}
	if out.Endpoint != ManualEndpointHint(testNamespace) {
		t.Errorf("Endpoint = %q", out.Endpoint)
	}
	if !strings.Contains(out.Endpoint, "kubectl get ingress -n "+testNamespace) {
		t.Errorf("hint does not name the manual command: %q", out.Endpoint)
	}
	if f.cluster.addrCalls != 3 {
		t.Errorf("ingress polled %d times, want 3", f.cluster.addrCalls)
	}
}

func TestUpInstallFailureIsFatal(t *testing.T) {
	f := newFixture(t)
	f.releases.installErr = map[string]error{"langsmith": errors.New("timed out waiting for the condition")}

	_, err := f.uc.Up(context.Background(), upContext(t, model.WithPrimary(true), model.WithExtension(true)))
	if !errors.Is(err, model.ErrApply) {
		t.Fatalf("Up() error = %v, want ErrApply", err)
	}
	for _, c := range f.calls {
		if c == "UpgradeInstall langgraph-dataplane" || strings.HasPrefix(c, "IngressAddress") {
			t.Errorf("unexpected call after failed install: %s", c)
		}
	}
}

func TestUpMissingTemplate(t *testing.T) {
	f := newFixture(t)
	f.uc.Config.BaseTemplate = filepath.Join(f.dir, "absent.yaml")

	_, err := f.uc.Up(context.Background(), upContext(t, model.WithPrimary(true)))
	if !errors.Is(err, model.ErrPrecondition) {
		t.Fatalf("Up() error = %v, want ErrPrecondition", err)
	}
	for _, c := range f.calls {
		if strings.HasPrefix(c, "UpgradeInstall") {
			t.Errorf("unexpected install: %v", f.calls)
		}
	}
}

func TestUpRegeneratesDocumentsEachRun(t *testing.T) {
	f := newFixture(t)
	rc := upContext(t, model.WithPrimary(true))

	first, err := f.uc.Up(context.Background(), rc)
	if err != nil {
		t.Fatal(err)
	}
	firstDoc := f.releases.values["langsmith"]
	second, err := f.uc.Up(context.Background(), rc)
	if err != nil {
		t.Fatal(err)
	}
	if first.Password == second.Password || firstDoc == f.releases.values["langsmith"] {
		t.Error("each run must generate fresh secrets")
	}
	if strings.Count(f.releases.values["langsmith"], "apiKeySalt") != 1 {
		t.Errorf("regenerated document duplicated keys:\n%s", f.releases.values["langsmith"])
	}
}

func TestUpRejectsDownRequest(t *testing.T) {
	f := newFixture(t)
	if _, err := f.uc.Up(context.Background(), downContext(t)); !errors.Is(err, model.ErrPrecondition) {
		t.Fatalf("Up() error = %v, want ErrPrecondition", err)
	}
	if len(f.calls) != 0 {
		t.Errorf("unexpected calls: %v", f.calls)
	}
}
