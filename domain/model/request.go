package model

import (
	"fmt"

	semver "github.com/Masterminds/semver/v3"
)

// Action selects the install or teardown path.
type Action string

const (
	ActionUp   Action = "up"
	ActionDown Action = "down"
)

// InstallRequest is the parsed command line for a single run. It is not
// modified after NewInstallRequest returns.
type InstallRequest struct {
	Action           Action
	InstallPrimary   bool
	InstallExtension bool
	// Version pins the chart version (exact or constraint). Empty means latest.
	Version string
	Debug   bool
	// ValuesFiles are extra Helm values files merged over the generated documents.
	ValuesFiles []string
}

// InstallRequestOption customizes NewInstallRequest.
type InstallRequestOption func(*InstallRequest)

func WithPrimary(v bool) InstallRequestOption {
	return func(r *InstallRequest) { r.InstallPrimary = v }
}
func WithExtension(v bool) InstallRequestOption {
	return func(r *InstallRequest) { r.InstallExtension = v }
}
func WithVersion(v string) InstallRequestOption { return func(r *InstallRequest) { r.Version = v } }
func WithDebug(v bool) InstallRequestOption     { return func(r *InstallRequest) { r.Debug = v } }
func WithValuesFiles(files ...string) InstallRequestOption {
	return func(r *InstallRequest) { r.ValuesFiles = append(r.ValuesFiles, files...) }
}

// NewInstallRequest validates and builds an InstallRequest.
// For ActionDown both install flags are forced on.
func NewInstallRequest(action Action, opts ...InstallRequestOption) (*InstallRequest, error) {
	r := &InstallRequest{Action: action}
	for _, o := range opts {
		o(r)
	}
	switch action {
	case ActionUp:
		if !r.InstallPrimary && !r.InstallExtension {
			return nil, fmt.Errorf("%w: up requires -l and/or -ld", ErrPrecondition)
		}
	case ActionDown:
		r.InstallPrimary = true
		r.InstallExtension = true
	default:
		return nil, fmt.Errorf("%w: unknown action %q", ErrPrecondition, action)
	}
	if r.Version != "" {
		if err := ValidateChartVersion(r.Version); err != nil {
			return nil, err
		}
	}
	r.ValuesFiles = append([]string(nil), r.ValuesFiles...)
	return r, nil
}

// ValidateChartVersion accepts an exact semver version or a version constraint,
// the same forms Helm accepts for --version.
func ValidateChartVersion(v string) error {
	if _, err := semver.NewVersion(v); err == nil {
		return nil
	}
	if _, err := semver.NewConstraint(v); err != nil {
		return fmt.Errorf("%w: invalid chart version %q: %v", ErrPrecondition, v, err)
	}
	return nil
}
