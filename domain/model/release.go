package model

import "time"

// ReleaseSpec names a Helm release and the chart reference it is installed from.
type ReleaseSpec struct {
	Name  string `yaml:"name"`
	Chart string `yaml:"chart"`
}

// Repository is a Helm chart repository.
type Repository struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// ReleaseInstallOptions are passed to ReleasePort.UpgradeInstall.
type ReleaseInstallOptions struct {
	Version     string
	ValuesFile  string
	ValuesFiles []string
	Timeout     time.Duration
}

// RunContext carries everything resolved before the install/uninstall branch.
// Components receive it by value; nothing in it changes during the run.
type RunContext struct {
	Request     InstallRequest
	Namespace   string
	Credentials Credentials
}
