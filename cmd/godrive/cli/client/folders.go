package client

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mwantia/godrive/internal/agent"
	"github.com/mwantia/godrive/internal/drive"
	"github.com/spf13/cobra"
)

func NewFolderCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "folder",
		Aliases: []string{"folders", "dir"},
		Short:   "Manage folders",
		Long:    "List, create, move and delete folders of an owner.",
	}

	cmd.AddCommand(newFolderListCommand())
	cmd.AddCommand(newFolderTreeCommand())
	cmd.AddCommand(newFolderShowCommand())
	cmd.AddCommand(newFolderCreateCommand())
	cmd.AddCommand(newFolderMoveCommand())
	cmd.AddCommand(newFolderRenameCommand())
	cmd.AddCommand(newFolderRemoveCommand())

	return cmd
}

func newFolderListCommand() *cobra.Command {
	var filter drive.FolderFilter

	cmd := &cobra.Command{
		Use:   "ls [parent]",
		Short: "List folders",
		Long:  "List folders of the owner. Pass a parent id or 'root' to list direct children only.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				filter.ParentID = args[0]
			}

			return runWithAgent(cmd, func(ctx context.Context, owner string, a *agent.GoDriveAgent) error {
				page, err := a.Folders().List(ctx, owner, filter)
				if err != nil {
					return err
				}

				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "ID\tNAME\tPARENT\tCREATED")
				for _, f := range page.Items {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", f.ID, f.Name, parentLabel(f.ParentID), humanize.Time(f.CreatedAt))
				}
				tw.Flush()

				fmt.Fprintf(cmd.OutOrStdout(), "\npage %d/%d, %d folder(s)\n",
					page.Pagination.Page, page.Pagination.TotalPages, page.Pagination.Total)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&filter.Name, "name", "", "filter by name substring")
	cmd.Flags().IntVar(&filter.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "page size")

	return cmd
}

func newFolderTreeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tree",
		Short: "Print the folder tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithAgent(cmd, func(ctx context.Context, owner string, a *agent.GoDriveAgent) error {
				nodes, err := a.Folders().Tree(ctx, owner)
				if err != nil {
					return err
				}

				var walk func(nodes []*drive.FolderNode, depth int)
				walk = func(nodes []*drive.FolderNode, depth int) {
					for _, n := range nodes {
						fmt.Fprintf(cmd.OutOrStdout(), "%s%s/ (%s)\n", strings.Repeat("  ", depth), n.Name, n.ID)
						walk(n.Children, depth+1)
					}
				}
				walk(nodes, 0)
				return nil
			})
		},
	}
}

func newFolderShowCommand() *cobra.Command {
	var filter drive.FileFilter

	cmd := &cobra.Command{
		Use:   "show [folder]",
		Short: "Show the contents of a folder",
		Long:  "Show direct child folders and files of a folder, or of the root when no folder is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := drive.RootFolder
			if len(args) > 0 {
				folder = args[0]
			}

			return runWithAgent(cmd, func(ctx context.Context, owner string, a *agent.GoDriveAgent) error {
				contents, err := a.Folders().Contents(ctx, owner, folder, filter)
				if err != nil {
					return err
				}

				if contents.Folder != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n\n", contents.Folder.Name, contents.Folder.ID)
				}

				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "TYPE\tID\tNAME\tSIZE")
				for _, f := range contents.Folders {
					fmt.Fprintf(tw, "dir\t%s\t%s/\t-\n", f.ID, f.Name)
				}
				for _, f := range contents.Files.Items {
					fmt.Fprintf(tw, "file\t%s\t%s\t%s\n", f.ID, f.OriginalName, humanize.Bytes(uint64(f.Size)))
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().IntVar(&filter.Page, "page", 1, "file page number")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "file page size")

	return cmd
}

func newFolderCreateCommand() *cobra.Command {
	var parent string

	cmd := &cobra.Command{
		Use:   "mkdir <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithAgent(cmd, func(ctx context.Context, owner string, a *agent.GoDriveAgent) error {
				folder, err := a.Folders().Create(ctx, owner, drive.CreateFolderInput{
					Name:     args[0],
					ParentID: parent,
				})
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Created folder '%s' (%s)\n", folder.Name, folder.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&parent, "parent", "p", "", "parent folder id (default is root)")

	return cmd
}

func newFolderMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mv <folder> <parent>",
		Short: "Move a folder below another folder or 'root'",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithAgent(cmd, func(ctx context.Context, owner string, a *agent.GoDriveAgent) error {
				folder, err := a.Folders().Update(ctx, owner, args[0], drive.UpdateFolderInput{ParentID: &args[1]})
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Moved folder '%s' to %s\n", folder.Name, parentLabel(folder.ParentID))
				return nil
			})
		},
	}
}

func newFolderRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <folder> <name>",
		Short: "Rename a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithAgent(cmd, func(ctx context.Context, owner string, a *agent.GoDriveAgent) error {
				folder, err := a.Folders().Update(ctx, owner, args[0], drive.UpdateFolderInput{Name: &args[1]})
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Renamed folder %s to '%s'\n", folder.ID, folder.Name)
				return nil
			})
		},
	}
}

func newFolderRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <folder>",
		Short: "Delete an empty folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithAgent(cmd, func(ctx context.Context, owner string, a *agent.GoDriveAgent) error {
				err := a.Folders().Delete(ctx, owner, args[0])

				var nonEmpty *drive.NonEmptyError
				if errors.As(err, &nonEmpty) {
					return fmt.Errorf("folder still contains %d folder(s) and %d file(s)", nonEmpty.Folders, nonEmpty.Files)
				}
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Deleted folder %s\n", args[0])
				return nil
			})
		},
	}
}
