package kube_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/kompox/lsinstall/adapters/kube"
	"k8s.io/client-go/tools/clientcmd"
	clientcmdapi "k8s.io/client-go/tools/clientcmd/api"
)

func testKubeconfig(t *testing.T) []byte {
	t.Helper()
	cfg := clientcmdapi.Config{
		Clusters: map[string]*clientcmdapi.Cluster{
			"dev":  {Server: "https://dev.example.com:6443"},
			"prod": {Server: "https://prod.example.com:6443"},
		},
		Contexts: map[string]*clientcmdapi.Context{
			"dev":  {Cluster: "dev", AuthInfo: "user"},
			"prod": {Cluster: "prod", AuthInfo: "user"},
		},
		AuthInfos: map[string]*clientcmdapi.AuthInfo{
			"user": {Token: "test-token"},
		},
		CurrentContext: "dev",
	}
	data, err := clientcmd.Write(cfg)
	if err != nil {
		t.Fatalf("marshal kubeconfig: %v", err)
	}
	return data
}

func TestNewClientFromKubeconfig(t *testing.T) {
	c, err := kube.NewClientFromKubeconfig(context.Background(), testKubeconfig(t), &kube.Options{UserAgent: "lsinstall-test"})
	if err != nil {
		t.Fatalf("NewClientFromKubeconfig() error = %v", err)
	}
	if c.RESTConfig == nil || c.Clientset == nil {
		t.Fatal("expected RESTConfig and Clientset to be set")
	}
	if c.RESTConfig.Host != "https://dev.example.com:6443" {
		t.Errorf("Host = %q", c.RESTConfig.Host)
	}
	if c.RESTConfig.QPS != 20 || c.RESTConfig.Burst != 50 {
		t.Errorf("defaults not applied: QPS=%v Burst=%v", c.RESTConfig.QPS, c.RESTConfig.Burst)
	}

	if _, err := kube.NewClientFromKubeconfig(context.Background(), nil, nil); err == nil {
		t.Error("expected error for empty kubeconfig")
	}
}

func TestNewClientFromDefaultRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, testKubeconfig(t), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		context  string
		wantHost string
		wantErr  bool
	}{
		{name: "current context", wantHost: "https://dev.example.com:6443"},
		{name: "explicit context", context: "prod", wantHost: "https://prod.example.com:6443"},
		{name: "unknown context", context: "staging", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := kube.NewClientFromDefaultRules(path, tt.context, nil)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewClientFromDefaultRules() error = %v", err)
			}
			if c.RESTConfig.Host != tt.wantHost {
				t.Errorf("Host = %q, want %q", c.RESTConfig.Host, tt.wantHost)
			}
		})
	}
}
