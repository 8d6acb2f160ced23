package kube

import (
	"context"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// DeletePVCs deletes each named PersistentVolumeClaim in namespace.
// Claims that do not exist are skipped. Every other failure is collected and
// the remaining claims are still attempted.
func (c *Client) DeletePVCs(ctx context.Context, namespace string, names []string) []error {
	if c == nil || c.Clientset == nil {
		return []error{fmt.Errorf("kube client is not initialized")}
	}
	var errs []error
	for _, name := range names {
		err := c.Clientset.CoreV1().PersistentVolumeClaims(namespace).Delete(ctx, name, metav1.DeleteOptions{})
		if err == nil || apierrors.IsNotFound(err) {
			continue
		}
		errs = append(errs, fmt.Errorf("delete pvc %s/%s: %w", namespace, name, err))
	}
	return errs
}
