package kube

import (
	"context"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// IngressAddress returns the externally routable address of an Ingress.
// Hostnames (cloud load balancers that publish DNS names) win over IPs.
// An Ingress that does not exist yet or has no status returns "" without error.
func (c *Client) IngressAddress(ctx context.Context, namespace, name string) (string, error) {
	if c == nil || c.Clientset == nil {
		return "", fmt.Errorf("kube client is not initialized")
	}

	ing, err := c.Clientset.NetworkingV1().Ingresses(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return "", nil
		}
		return "", fmt.Errorf("get ingress %s/%s: %w", namespace, name, err)
	}

	for _, lb := range ing.Status.LoadBalancer.Ingress {
		if lb.Hostname != "" {
			return lb.Hostname, nil
		}
	}
	for _, lb := range ing.Status.LoadBalancer.Ingress {
		if lb.IP != "" {
			return lb.IP, nil
		}
	}
	return "", nil
}
