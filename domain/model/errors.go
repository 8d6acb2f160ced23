package model

import "errors"

var (
	// ErrPrecondition marks failures detected before any cluster mutation:
	// missing tools or files, unreadable credentials, invalid arguments.
	ErrPrecondition = errors.New("precondition failed")
	// ErrSecretGeneration marks a failure of the system randomness source.
	ErrSecretGeneration = errors.New("secret generation failed")
	// ErrApply marks a failed or timed out release install/upgrade.
	ErrApply = errors.New("apply failed")
	// ErrReleaseNotFound is returned by release ports when the named release does not exist.
	ErrReleaseNotFound = errors.New("release not found")
	// ErrDiscoveryTimeout is reported when no ingress address appeared within the poll budget.
	ErrDiscoveryTimeout = errors.New("endpoint discovery timed out")
)
