// Package install orchestrates the primary and extension releases in the
// namespace resolved for this host.
package install

import (
	"io"

	"github.com/kompox/lsinstall/config/lsenv"
	"github.com/kompox/lsinstall/domain/model"
)

// UseCase wires the ports and configuration needed by up and down.
type UseCase struct {
	Namespaces model.NamespacePort
	Releases   model.ReleasePort
	Endpoints  model.EndpointPort
	Config     *lsenv.Config
	// Rand is the randomness source for secret generation. Nil means crypto/rand.
	Rand io.Reader
}

// run holds what one invocation accumulates. It is created by Up and never
// shared between invocations.
type run struct {
	rc model.RunContext

	secrets     *model.Secrets
	synthesized bool

	primaryInstalled bool
}

func newRun(rc model.RunContext) *run {
	return &run{rc: rc}
}
