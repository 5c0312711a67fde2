// ABOUTME: Offline CLI tools for decoding, rendering and resolving references
// ABOUTME: Read stdin or config and print results without starting the server

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"diagnostic-report-api/core/assets"
	"diagnostic-report-api/core/domain"
	"diagnostic-report-api/core/message"
	"diagnostic-report-api/core/render"
	"diagnostic-report-api/infrastructure/logger/structured"
)

func decodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode",
		Short: "Decode a raw chat message read from stdin and print it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}
			msg := message.Decode(string(raw))
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(msg)
		},
	}
}

func renderCmd() *cobra.Command {
	var payloadJSON bool
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render report text read from stdin to HTML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}

			payload := domain.TextPayload{Content: string(raw)}
			if payloadJSON {
				payload = domain.TextPayload{}
				if err := json.Unmarshal(raw, &payload); err != nil {
					return fmt.Errorf("stdin is not a text payload: %w", err)
				}
			}
			payload.Normalize()

			out := render.Render(payload, render.DefaultOptions())
			_, err = io.WriteString(cmd.OutOrStdout(), out.HTML()+"\n")
			return err
		},
	}
	cmd.Flags().BoolVar(&payloadJSON, "json", false, "stdin is a JSON text payload with web_sources and youtube_videos")
	return cmd
}

func resolveCmd() *cobra.Command {
	var pathHinted bool
	cmd := &cobra.Command{
		Use:   "resolve <name>",
		Short: "Print where an image reference resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			dc, err := cfg.DeploymentContext()
			if err != nil {
				return err
			}

			logger := structured.NewWithWriter(os.Stderr, logrus.WarnLevel, false)
			resolver := assets.NewResolver(logger)

			var asset *domain.ResolvedAsset
			if pathHinted {
				asset, err = resolver.ResolvePath(cmd.Context(), args[0], dc)
			} else {
				asset, err = resolver.ResolveName(cmd.Context(), args[0], dc)
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", asset.AbsolutePath, asset.ContentType)
			return err
		},
	}
	cmd.Flags().BoolVar(&pathHinted, "path", false, "treat the argument as a path hint")
	return cmd
}
