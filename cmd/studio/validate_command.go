package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/heimdex/heimdex-studio/internal/logging"
	"github.com/heimdex/heimdex-studio/internal/project"
	"github.com/heimdex/heimdex-studio/internal/validate"
)

const validateUsage = "Usage: studio validate <project.json | project-dir | project-name> [--json]"

func newValidateCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "validate <project.json | project-dir | project-name>",
		Short: "Check a project document for structure and integrity errors",
		Long: "Validate reads a project document, reports structure errors, integrity errors and\n" +
			"warnings, and exits 0 only when there are no errors. A bare name resolves to\n" +
			"<projects-dir>/<name>/project.json.",
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stdout := cmd.OutOrStdout()
			stderr := cmd.ErrOrStderr()

			if len(args) != 1 {
				fmt.Fprintln(stderr, validateUsage)
				return &exitError{reason: "usage"}
			}

			projectsDir, err := ctx.projectsDir()
			if err != nil {
				return err
			}
			path := resolveDocumentPath(args[0], projectsDir)
			logger := logging.WithComponent(ctx.cliLogger(stderr), "validate")
			logger.Debug("validating project document", "path", logging.SanitizePath(path))

			raw, _, err := project.ReadRaw(path)
			switch {
			case errors.Is(err, project.ErrNotFound):
				return reportFailure(stdout, stderr, jsonOutput, fmt.Sprintf("file not found: %s", path))
			case errors.Is(err, project.ErrInvalidJSON):
				return reportFailure(stdout, stderr, jsonOutput, fmt.Sprintf("%s: %v", path, err))
			case err != nil:
				return err
			}

			result := validate.Validate(raw, filepath.Dir(path))
			if jsonOutput {
				err = validate.WriteJSON(stdout, result)
			} else {
				err = validate.WriteReport(stdout, result)
			}
			if err != nil {
				return err
			}
			if !result.Valid() {
				return &exitError{reason: "invalid"}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")

	return cmd
}

// resolveDocumentPath accepts a document path, a project directory, or a
// bare project name.
func resolveDocumentPath(arg, projectsDir string) string {
	if info, err := os.Stat(arg); err == nil {
		if info.IsDir() {
			return project.DocumentPath(arg)
		}
		return arg
	}
	if isBareName(arg) {
		return project.DocumentPath(filepath.Join(projectsDir, arg))
	}
	return arg
}

func isBareName(arg string) bool {
	if arg == "" || arg == "." || arg == ".." {
		return false
	}
	return !strings.ContainsAny(arg, `/\`) && filepath.Ext(arg) != ".json"
}

func reportFailure(stdout, stderr io.Writer, jsonOutput bool, message string) error {
	if jsonOutput {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]any{"valid": false, "error": message}); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(stderr, "Error: %s\n", message)
	}
	return &exitError{reason: message}
}
