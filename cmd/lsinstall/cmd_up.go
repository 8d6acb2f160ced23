package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kompox/lsinstall/domain/model"
	"github.com/kompox/lsinstall/usecase/install"
)

func newCmdUp() *cobra.Command {
	var (
		primary   bool
		extension bool
		chartVer  string
		debug     bool
		values    []string
	)
	cmd := &cobra.Command{
		Use:   "up",
		Short: "Install or upgrade LangSmith and/or LangGraph Platform",
		Example: `  lsinstall up -l
  lsinstall up -ld
  lsinstall up -l -ld -v 0.10.1 -f overrides.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			req, err := model.NewInstallRequest(model.ActionUp,
				model.WithPrimary(primary),
				model.WithExtension(extension),
				model.WithVersion(chartVer),
				model.WithDebug(debug),
				model.WithValuesFiles(values...),
			)
			if err != nil {
				return err
			}
			uc, err := buildInstallUseCase(cmd, req.Debug)
			if err != nil {
				return err
			}
			rc, err := prepareRun(cmd.Context(), cmd, uc, *req)
			if err != nil {
				return err
			}

			ctx, cleanup := withCmdRunLogger(cmd.Context(), "up", rc.Namespace)
			defer func() { cleanup(err) }()

			out, err := uc.Up(ctx, rc)
			if err != nil {
				return err
			}
			printUpOutput(cmd.OutOrStdout(), out)
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVarP(&primary, "langsmith", "l", false, "Install the LangSmith release")
	f.BoolVar(&extension, extensionFlag, false, "Install the LangGraph Platform release (alias -ld); installs LangSmith first when absent")
	f.StringVarP(&chartVer, "version", "v", "", "Chart version or constraint (default: latest)")
	f.BoolVar(&debug, "debug", false, "Enable debug logging, including Helm and client-go output")
	f.StringArrayVarP(&values, "values", "f", nil, "Extra Helm values file merged over the generated one (repeatable)")
	return cmd
}

func printUpOutput(w io.Writer, out *install.UpOutput) {
	fmt.Fprintf(w, "Namespace: %s\n", out.Namespace)
	if out.Endpoint != "" {
		fmt.Fprintf(w, "Endpoint:  %s\n", out.Endpoint)
	}
	fmt.Fprintf(w, "Email:     %s\n", out.Email)
	if out.Password != "" {
		fmt.Fprintf(w, "Password:  %s\n", out.Password)
	}
	for _, p := range out.ValuesFiles {
		fmt.Fprintf(w, "Values:    %s\n", p)
	}
}
