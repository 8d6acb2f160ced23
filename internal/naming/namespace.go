// Package naming derives cluster object names for an install.
package naming

import (
	"fmt"
	"os"
	"strings"
)

// ResolveNamespace maps a hostname to the namespace used for every cluster
// operation of a run: lowercase, with dots replaced by dashes. The same host
// always yields the same namespace, which is what makes re-runs idempotent.
func ResolveNamespace(hostname string) string {
	return strings.ReplaceAll(strings.ToLower(hostname), ".", "-")
}

// NamespaceFromHost resolves and validates the namespace for the local machine.
func NamespaceFromHost() (string, error) {
	host, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("read hostname: %w", err)
	}
	ns := ResolveNamespace(host)
	if err := ValidateNamespace(ns); err != nil {
		return "", fmt.Errorf("hostname %q: %w", host, err)
	}
	return ns, nil
}
