package model

import "context"

// NamespacePort is the cluster-side surface needed for namespace lifecycle
// and teardown.
type NamespacePort interface {
	// Ping checks that the cluster API is reachable.
	Ping(ctx context.Context) error
	NamespaceExists(ctx context.Context, name string) (bool, error)
	EnsureNamespace(ctx context.Context, name string) error
	DeleteNamespace(ctx context.Context, name string) error
	// DeletePVCs deletes the named claims. Missing claims are not errors; the
	// returned slice holds one error per claim that failed otherwise.
	DeletePVCs(ctx context.Context, namespace string, names []string) []error
}

// ReleasePort drives the package manager.
type ReleasePort interface {
	AddRepo(ctx context.Context, repo Repository) error
	ReleaseExists(ctx context.Context, namespace, name string) (bool, error)
	UpgradeInstall(ctx context.Context, namespace string, rel ReleaseSpec, opts ReleaseInstallOptions) error
	// Uninstall returns ErrReleaseNotFound (wrapped) when the release is absent.
	Uninstall(ctx context.Context, namespace, name string) error
}

// EndpointPort reads externally routable addresses published by the cluster.
type EndpointPort interface {
	// IngressAddress returns the hostname or IP of the named ingress, or "" when
	// none has been assigned yet.
	IngressAddress(ctx context.Context, namespace, name string) (string, error)
}
