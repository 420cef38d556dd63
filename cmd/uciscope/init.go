package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nao1215/uciscope/internal/config"
)

//go:embed templates/uciscope.yaml
var configTemplate embed.FS

// templatePath is the path of the configuration template inside configTemplate.
const templatePath = "templates/uciscope.yaml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new uciscope configuration file",
		Long: `Initialize creates a new .uciscope configuration file in the current directory.

The generated file lists the default seeds and allowed domains, and documents
every fetch setting and admission threshold as a comment.

Examples:
  # Create .uciscope in current directory
  uciscope init

  # Create config file at a specific path
  uciscope init -o ~/.config/uciscope/config.yaml

  # Force overwrite existing file
  uciscope init -f`,
		Args: cobra.NoArgs,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultConfigFile,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile(templatePath)
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to change:")
	fmt.Fprintln(out, "  - the seeds and allowed domains")
	fmt.Fprintln(out, "  - extra blocked hosts and URL prefixes")
	fmt.Fprintln(out, "  - the duplicate and trap thresholds")
	return nil
}
