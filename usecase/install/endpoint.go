package install

import (
	"context"
	"errors"
	"fmt"

	"github.com/kompox/lsinstall/domain/model"
	"github.com/kompox/lsinstall/internal/logging"
	"github.com/kompox/lsinstall/internal/retry"
)

// ManualEndpointHint is reported in place of an endpoint when polling ran out.
func ManualEndpointHint(namespace string) string {
	return fmt.Sprintf("<not yet assigned; run 'kubectl get ingress -n %s'>", namespace)
}

// ResolveEndpoint polls the configured ingress until it publishes an address.
// It returns the endpoint URL, or ErrDiscoveryTimeout (wrapped) when the
// attempts ran out. Lookup errors count as a failed attempt.
func (u *UseCase) ResolveEndpoint(ctx context.Context, namespace string) (string, error) {
	logger := logging.FromContext(ctx).With("ingress", u.Config.IngressName, "namespace", namespace)

	var addr string
	attempt := 0
	err := retry.Poll(ctx, retry.Options{
		Attempts: u.Config.EndpointPoll.Attempts,
		Interval: u.Config.EndpointPoll.Interval,
	}, func(ctx context.Context) (bool, error) {
		attempt++
		a, err := u.Endpoints.IngressAddress(ctx, namespace, u.Config.IngressName)
		if err != nil {
			logger.Debug(ctx, "ingress lookup failed", "attempt", attempt, "error", err)
			return false, nil
		}
		if a == "" {
			logger.Debugf(ctx, "waiting for ingress address (%d/%d)", attempt, u.Config.EndpointPoll.Attempts)
			return false, nil
		}
		addr = a
		return true, nil
	})
	switch {
	case err == nil:
		return "http://" + addr, nil
	case errors.Is(err, retry.ErrExhausted):
		return "", fmt.Errorf("%w: ingress %s/%s after %d attempts", model.ErrDiscoveryTimeout, namespace, u.Config.IngressName, attempt)
	default:
		return "", err
	}
}
