package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mwantia/godrive/internal/agent"
	"github.com/mwantia/godrive/internal/drive"
	"github.com/spf13/cobra"
)

func NewFileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "file",
		Aliases: []string{"files"},
		Short:   "Manage files",
		Long:    "Upload, download, list, move, copy and delete files of an owner.",
	}

	cmd.AddCommand(newFileListCommand())
	cmd.AddCommand(newFileUploadCommand())
	cmd.AddCommand(newFileDownloadCommand())
	cmd.AddCommand(newFileMoveCommand())
	cmd.AddCommand(newFileCopyCommand())
	cmd.AddCommand(newFileRenameCommand())
	cmd.AddCommand(newFileRemoveCommand())
	cmd.AddCommand(newFileStatsCommand())
	cmd.AddCommand(newFileSweepCommand())

	return cmd
}

func newFileListCommand() *cobra.Command {
	var filter drive.FileFilter

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithAgent(cmd, func(ctx context.Context, owner string, a *agent.GoDriveAgent) error {
				page, err := a.Files().List(ctx, owner, filter)
				if err != nil {
					return err
				}

				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSIZE\tFOLDER\tCREATED")
				for _, f := range page.Items {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", f.ID, f.OriginalName, f.MimeType,
						humanize.Bytes(uint64(f.Size)), parentLabel(f.FolderID), humanize.Time(f.CreatedAt))
				}
				tw.Flush()

				fmt.Fprintf(cmd.OutOrStdout(), "\npage %d/%d, %d file(s)\n",
					page.Pagination.Page, page.Pagination.TotalPages, page.Pagination.Total)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&filter.FolderID, "folder", "f", "", "folder id or 'root'")
	cmd.Flags().StringVarP(&filter.Search, "search", "s", "", "search in file names")
	cmd.Flags().StringVar(&filter.Category, "category", "", "category ("+strings.Join(drive.Categories(), ", ")+")")
	cmd.Flags().StringVar(&filter.MimeType, "mime", "", "mime type or family, e.g. 'image' or 'image/png'")
	cmd.Flags().StringVar(&filter.Sort, "sort", "", "sort by name, size, mime_type, created_at or updated_at")
	cmd.Flags().StringVar(&filter.Order, "order", "", "asc or desc (default desc)")
	cmd.Flags().IntVar(&filter.Page, "page", 1, "page number")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "page size")

	return cmd
}

func newFileUploadCommand() *cobra.Command {
	var folder string
	var mimeType string

	cmd := &cobra.Command{
		Use:   "upload <path>...",
		Short: "Upload one or more local files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inputs := make([]drive.UploadInput, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read '%s': %w", path, err)
				}
				inputs = append(inputs, drive.UploadInput{
					Data:         data,
					OriginalName: filepath.Base(path),
					MimeType:     mimeType,
					FolderID:     folder,
				})
			}

			return runWithAgent(cmd, func(ctx context.Context, owner string, a *agent.GoDriveAgent) error {
				if len(inputs) == 1 {
					file, err := a.Files().Upload(ctx, owner, inputs[0])
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Uploaded '%s' (%s, %s)\n", file.OriginalName, file.ID, humanize.Bytes(uint64(file.Size)))
					return nil
				}

				result, err := a.Files().UploadMultiple(ctx, owner, folder, inputs)
				if err != nil {
					return err
				}
				for _, file := range result.Uploaded {
					fmt.Fprintf(cmd.OutOrStdout(), "Uploaded '%s' (%s, %s)\n", file.OriginalName, file.ID, humanize.Bytes(uint64(file.Size)))
				}
				for _, e := range result.Errors {
					fmt.Fprintf(cmd.ErrOrStderr(), "Failed '%s': %s\n", e.Name, e.Error)
				}
				if result.Failed > 0 {
					return fmt.Errorf("%d of %d upload(s) failed", result.Failed, result.Total)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&folder, "folder", "f", "", "target folder id (default is root)")
	cmd.Flags().StringVar(&mimeType, "mime", "", "mime type (detected from content when empty)")

	return cmd
}

func newFileDownloadCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "download <file>",
		Short: "Download a file",
		Long:  "Download a file into the current directory, a given output path or '-' for stdout.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithAgent(cmd, func(ctx context.Context, owner string, a *agent.GoDriveAgent) error {
				download, err := a.Files().Download(ctx, owner, args[0])
				if err != nil {
					return err
				}
				defer download.Stream.Close()

				if output == "-" {
					_, err := io.Copy(cmd.OutOrStdout(), download.Stream)
					return err
				}

				target := output
				if target == "" {
					target = download.Filename
				}

				f, err := os.Create(target)
				if err != nil {
					return fmt.Errorf("failed to create '%s': %w", target, err)
				}
				defer f.Close()

				n, err := io.Copy(f, download.Stream)
				if err != nil {
					return fmt.Errorf("failed to write '%s': %w", target, err)
				}

				fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s to '%s'\n", humanize.Bytes(uint64(n)), target)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output path, '-' writes to stdout")

	return cmd
}

func newFileMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "mv <file> <folder>",
		Short: "Move a file into a folder or 'root'",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithAgent(cmd, func(ctx context.Context, owner string, a *agent.GoDriveAgent) error {
				file, err := a.Files().Move(ctx, owner, args[0], args[1])
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Moved '%s' to %s\n", file.OriginalName, parentLabel(file.FolderID))
				return nil
			})
		},
	}
}

func newFileCopyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cp <file> [folder]",
		Short: "Copy a file into a folder (default is root)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := drive.RootFolder
			if len(args) > 1 {
				target = args[1]
			}

			return runWithAgent(cmd, func(ctx context.Context, owner string, a *agent.GoDriveAgent) error {
				file, err := a.Files().Copy(ctx, owner, args[0], target)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Copied to '%s' (%s)\n", file.OriginalName, file.ID)
				return nil
			})
		},
	}
}

func newFileRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <file> <name>",
		Short: "Rename a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithAgent(cmd, func(ctx context.Context, owner string, a *agent.GoDriveAgent) error {
				file, err := a.Files().Rename(ctx, owner, args[0], args[1])
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to '%s'\n", file.ID, file.OriginalName)
				return nil
			})
		},
	}
}

func newFileRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <file>...",
		Short: "Delete one or more files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithAgent(cmd, func(ctx context.Context, owner string, a *agent.GoDriveAgent) error {
				if len(args) == 1 {
					if err := a.Files().Delete(ctx, owner, args[0]); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
					return nil
				}

				result, err := a.Files().BatchDelete(ctx, owner, args)
				if err != nil {
					return err
				}
				for _, id := range result.Deleted {
					fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
				}
				for _, e := range result.Errors {
					fmt.Fprintf(cmd.ErrOrStderr(), "Failed %s: %s\n", e.ID, e.Error)
				}
				if result.Failed > 0 {
					return fmt.Errorf("%d of %d delete(s) failed", result.Failed, result.Total)
				}
				return nil
			})
		},
	}
}

func newFileStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show storage usage per category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithAgent(cmd, func(ctx context.Context, owner string, a *agent.GoDriveAgent) error {
				stats, err := a.Files().StorageStats(ctx, owner)
				if err != nil {
					return err
				}

				categories := make([]string, 0, len(stats.CategoryStats))
				for category := range stats.CategoryStats {
					categories = append(categories, category)
				}
				sort.Strings(categories)

				tw := newTable(cmd.OutOrStdout())
				fmt.Fprintln(tw, "CATEGORY\tFILES\tSIZE")
				for _, category := range categories {
					stat := stats.CategoryStats[category]
					fmt.Fprintf(tw, "%s\t%s\t%s\n", category, humanize.Comma(stat.Count), humanize.Bytes(uint64(stat.Size)))
				}
				fmt.Fprintf(tw, "total\t%s\t%s\n", humanize.Comma(stats.TotalFiles), humanize.Bytes(uint64(stats.TotalSize)))
				return tw.Flush()
			})
		},
	}
}

func newFileSweepCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Delete objects left behind by failed uploads or copies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithAgent(cmd, func(ctx context.Context, owner string, a *agent.GoDriveAgent) error {
				removed, err := a.Sweeper().Sweep(ctx)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Removed %d orphaned object(s)\n", removed)
				return nil
			})
		},
	}
}
