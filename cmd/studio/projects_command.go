package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/heimdex/heimdex-studio/internal/catalog"
	"github.com/heimdex/heimdex-studio/internal/project"
	"github.com/heimdex/heimdex-studio/internal/validate"
)

func newProjectsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Manage registered projects",
	}

	cmd.AddCommand(newProjectsListCommand(ctx))
	cmd.AddCommand(newProjectsCreateCommand(ctx))
	cmd.AddCommand(newProjectsAddCommand(ctx))
	cmd.AddCommand(newProjectsRemoveCommand(ctx))

	return cmd
}

func newProjectsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered projects with their validation status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, closeFn, err := ctx.openCatalog(ctx.cliLogger(cmd.ErrOrStderr()), nil)
			if err != nil {
				return err
			}
			defer closeFn()

			projects, err := svc.ListProjects(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(projects) == 0 {
				fmt.Fprintln(out, "No projects registered")
				return nil
			}

			rows := make([][]string, 0, len(projects))
			for _, p := range projects {
				status, media, clips := describeProject(p)
				lastOpened := "never"
				if p.LastOpenedAt != nil {
					lastOpened = p.LastOpenedAt.Local().Format("2006-01-02 15:04")
				}
				rows = append(rows, []string{p.Name, p.ID[:8], status, media, clips, lastOpened, p.Dir})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Name", "ID", "Status", "Media", "Clips", "Last Opened", "Directory"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
}

// describeProject summarizes the document on disk without opening a
// session.
func describeProject(p *catalog.Project) (status, media, clips string) {
	raw, data, err := project.ReadRaw(project.DocumentPath(p.Dir))
	switch {
	case errors.Is(err, project.ErrNotFound):
		return "missing", "-", "-"
	case err != nil:
		return "unreadable", "-", "-"
	}

	result := validate.Validate(raw, p.Dir)
	status = "valid"
	if !result.Valid() {
		return fmt.Sprintf("invalid (%d)", result.ErrorCount()), "-", "-"
	}
	if len(result.Warnings) > 0 {
		status = fmt.Sprintf("valid (%d warnings)", len(result.Warnings))
	}
	doc, err := project.Decode(data)
	if err != nil {
		return status, "-", "-"
	}
	return status, strconv.Itoa(len(doc.MediaFiles)), strconv.Itoa(len(doc.TimelineClips))
}

func newProjectsCreateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create an empty project in the projects directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, closeFn, err := ctx.openCatalog(ctx.cliLogger(cmd.ErrOrStderr()), nil)
			if err != nil {
				return err
			}
			defer closeFn()

			p, err := svc.CreateProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created project %s (%s) at %s\n", p.Name, p.ID, p.Dir)
			return nil
		},
	}
}

func newProjectsAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <dir>",
		Short: "Register an existing project directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, closeFn, err := ctx.openCatalog(ctx.cliLogger(cmd.ErrOrStderr()), nil)
			if err != nil {
				return err
			}
			defer closeFn()

			p, err := svc.RegisterProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered project %s (%s)\n", p.Name, p.ID)
			return nil
		},
	}
}

func newProjectsRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id | name>",
		Short: "Forget a project; files on disk are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, closeFn, err := ctx.openCatalog(ctx.cliLogger(cmd.ErrOrStderr()), nil)
			if err != nil {
				return err
			}
			defer closeFn()

			p, err := svc.GetProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := svc.UnregisterProject(cmd.Context(), p.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed project %s\n", p.Name)
			return nil
		},
	}
}
