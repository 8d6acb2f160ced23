package install

import (
	"context"
	"fmt"
	"os"

	"github.com/kompox/lsinstall/domain/model"
)

// CheckPrerequisites verifies the cluster is reachable and, for up, that the
// base template is readable. Nothing is mutated.
func (u *UseCase) CheckPrerequisites(ctx context.Context, action model.Action) error {
	if err := u.Namespaces.Ping(ctx); err != nil {
		return fmt.Errorf("%w: cluster unreachable: %v", model.ErrPrecondition, err)
	}
	if action == model.ActionUp {
		if _, err := os.Stat(u.Config.BaseTemplate); err != nil {
			return fmt.Errorf("%w: base template: %v", model.ErrPrecondition, err)
		}
	}
	return nil
}
