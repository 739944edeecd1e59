package commands

import (
	"fmt"
	"os"
	"time"

	"openkanban/internal/board"
	"openkanban/internal/broadcast"
	"openkanban/internal/session"
	"openkanban/internal/transfer"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export <slug>",
	Short: "Download a board as JSON",
	Long: `Download a board with its columns and tasks as a JSON document.

Without --output the file is named openkanban-<slug>-<timestamp>.json.
Use --output=- to write to stdout.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <slug> <file>",
	Short: "Replace a board with an exported JSON document",
	Long: `Replace every column and task of a board with the content of an export
document. The board is created when it does not exist yet, and everyone
viewing it is told to reload.`,
	Args: cobra.ExactArgs(2),
	RunE: runImport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (- for stdout)")
	rootCmd.AddCommand(exportCmd, importCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	slug, err := boardSlug(args[0])
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	store := board.NewStore(slug, newGateway())
	if err := store.Load(ctx); err != nil {
		return out.Error("board unavailable", err.Error(), []string{"Check that the API is reachable at " + apiURL})
	}
	if _, ok := store.Board(); !ok {
		return out.Error("board not found", fmt.Sprintf("No board is saved under %q.", slug), nil)
	}

	now := time.Now()
	doc := transfer.Export(slug, store.Snapshot().WireColumns(), now)

	if exportOutput == "-" {
		return transfer.Encode(cmd.OutOrStdout(), doc)
	}
	path := exportOutput
	if path == "" {
		path = transfer.FileName(slug, now)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()
	if err := transfer.Encode(f, doc); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	out.Success("Exported %s to %s", slug, path)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	slug, err := boardSlug(args[0])
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	data, err := os.ReadFile(args[1])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[1], err)
	}
	doc, err := transfer.Decode(data)
	if err != nil {
		return out.Error("invalid export file", err.Error(), []string{"Use a file written by openkanban export"})
	}

	gw := newGateway()
	rdb := newRedis(ctx)
	defer rdb.Close()

	channel := broadcast.New(rdb, slug, uuid.NewString(), out)
	sess := session.New(gw, board.NewStore(slug, gw, board.WithNotifier(out)), channel, nil)
	defer sess.Close(ctx)

	if err := sess.Import(ctx, doc); err != nil {
		return out.Error("import failed", err.Error(), nil)
	}
	snap := sess.Store().Snapshot()
	out.Success("Imported %d columns and %d tasks into %s", len(snap.Columns), snap.TaskCount(), slug)
	return nil
}
