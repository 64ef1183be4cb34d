package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	matterform "github.com/goliatone/go-matterform"
	"github.com/goliatone/go-matterform/pkg/renderers/tui"
)

func fillCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Fill the form with terminal prompts",
		Long: `Walk through the form interactively and save the matter once the terms
are accepted. The submitted values are printed to stdout.

Examples:
  matterform fill
  matterform fill --format=pretty`,
		RunE: func(cmd *cobra.Command, args []string) error {
			outputFormat, ok := tui.ParseOutputFormat(format)
			if !ok {
				return fmt.Errorf("unknown format %q", format)
			}

			ctx := cmd.Context()
			rt, err := matterform.NewRuntime(ctx, *a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			ctrl, err := rt.NewController(ctx)
			if err != nil {
				return err
			}
			defer ctrl.Close()
			// A failed region lookup is reported by the prompt flow.
			_ = ctrl.Load(ctx)

			renderer, err := tui.New(
				tui.WithOutput(os.Stderr),
				tui.WithOutputFormat(outputFormat),
				tui.WithTermsText(a.cfg.TermsText),
				tui.WithTheme(tui.Theme{InfoPrefix: "› ", ErrorPrefix: "✗ "}),
			)
			if err != nil {
				return err
			}

			out, err := renderer.Run(ctx, ctrl)
			if errors.Is(err, tui.ErrTermsRejected) || errors.Is(err, tui.ErrAborted) {
				fmt.Fprintln(os.Stderr, "No matter created.")
				return nil
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format (json, form, pretty)")
	return cmd
}
