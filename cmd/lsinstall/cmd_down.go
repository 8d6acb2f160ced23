package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kompox/lsinstall/domain/model"
	"github.com/kompox/lsinstall/usecase/install"
)

func newCmdDown() *cobra.Command {
	var debug bool
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Uninstall both releases and delete their storage and namespace",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			req, err := model.NewInstallRequest(model.ActionDown, model.WithDebug(debug))
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

			ctx, cleanup := withCmdRunLogger(cmd.Context(), "down", rc.Namespace)
			defer func() { cleanup(err) }()

			out, err := uc.Down(ctx, rc)
			if err != nil {
				return err
			}
			printDownOutput(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging, including Helm and client-go output")
	return cmd
}

func printDownOutput(w io.Writer, out *install.DownOutput) {
	if !out.NamespaceFound {
		fmt.Fprintf(w, "Namespace %s not found, nothing to uninstall\n", out.Namespace)
		return
	}
	fmt.Fprintf(w, "Namespace %s removed", out.Namespace)
	if n := len(out.Warnings); n > 0 {
		fmt.Fprintf(w, " with %d warning(s):\n", n)
		for _, warning := range out.Warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
		return
	}
	fmt.Fprintln(w)
}
