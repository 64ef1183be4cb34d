package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	matterform "github.com/goliatone/go-matterform"
	"github.com/goliatone/go-matterform/pkg/render"
	jsonrenderer "github.com/goliatone/go-matterform/pkg/renderers/json"
	"github.com/goliatone/go-matterform/pkg/renderers/tui"
	"github.com/goliatone/go-matterform/pkg/renderers/vanilla"
)

func renderCmd(a *app) *cobra.Command {
	var (
		rendererName string
		region       string
		name         string
		output       string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the form after an optional region and name",
		Long: `Load the form, apply the given region and name, wait for the lookups and
render the resulting state.

Examples:
  matterform render --region=EU --name=Jane
  matterform render --renderer=json --region=NA -o state.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			rt, err := matterform.NewRuntime(ctx, *a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer rt.Close()

			registry, err := rendererRegistry()
			if err != nil {
				return err
			}
			renderer, err := registry.Resolve(rendererName)
			if err != nil {
				return err
			}

			ctrl, err := rt.NewController(ctx)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			if err := ctrl.Load(ctx); err != nil {
				return err
			}
			if region != "" {
				if err := ctrl.ChangeRegion(ctx, region); err != nil {
					return err
				}
				if err := ctrl.Wait(ctx); err != nil {
					return err
				}
			}
			if name != "" {
				if err := ctrl.SelectName(ctx, name); err != nil {
					return err
				}
				if err := ctrl.Wait(ctx); err != nil {
					return err
				}
			}

			out, err := renderer.Render(ctx, ctrl.Snapshot(), render.RenderOptions{
				Action:    "/matter",
				TermsText: a.cfg.TermsText,
				Theme:     rt.Theme,
			})
			if err != nil {
				return err
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(append(out, '\n'))
				return err
			}
			if err := os.WriteFile(output, out, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Form written to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&rendererName, "renderer", "r", "vanilla", "renderer to use (vanilla, json, tui)")
	cmd.Flags().StringVar(&region, "region", "", "instance region to select")
	cmd.Flags().StringVar(&name, "name", "", "name to select (requires --region)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	return cmd
}

func rendererRegistry() (*render.Registry, error) {
	html, err := vanilla.New()
	if err != nil {
		return nil, err
	}
	summary, err := tui.New(tui.WithOutput(os.Stderr))
	if err != nil {
		return nil, err
	}
	return render.NewRegistry(html, jsonrenderer.New(), summary)
}
