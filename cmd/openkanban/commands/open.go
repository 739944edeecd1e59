package commands

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"openkanban/internal/board"
	"openkanban/internal/broadcast"
	"openkanban/internal/presence"
	"openkanban/internal/session"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var presenceTTL time.Duration

var openCmd = &cobra.Command{
	Use:   "open <slug>",
	Short: "Open a board interactively",
	Long: `Open a board and edit it from the terminal. The board is redrawn whenever
it changes, including changes made by other viewers.

Type help at the prompt for the list of commands.`,
	Example: `  openkanban open team-board
  openkanban open "Team Board" --api https://kanban.example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runOpen,
}

func init() {
	openCmd.Flags().DurationVar(&presenceTTL, "presence-ttl", presence.DefaultTTL, "How long a silent viewer stays counted")
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	slug, err := boardSlug(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gw := newGateway()
	rdb := newRedis(ctx)
	defer rdb.Close()

	store := board.NewStore(slug, gw, board.WithNotifier(out))
	tracker := presence.New(rdb, slug, presence.WithTTL(presenceTTL))
	sess := session.New(gw, store, broadcast.New(rdb, slug, uuid.NewString(), out), tracker)

	redraw := func(snap board.Snapshot) {
		out.Board(slug, snap, sess.Viewers())
	}
	store.OnChange(redraw)
	tracker.OnChange(func(int) {
		redraw(store.Snapshot())
	})

	if err := sess.Start(ctx); err != nil {
		return out.Error("board unavailable", err.Error(), []string{
			"Check that the API is reachable at " + apiURL,
			"Pass another address with --api",
		})
	}
	defer sess.Close(cmd.Context())

	redraw(store.Snapshot())
	r := &repl{store: store, out: out, now: time.Now, viewers: sess.Viewers}
	return r.run(ctx, cmd.InOrStdin())
}
