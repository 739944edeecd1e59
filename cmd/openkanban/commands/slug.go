package commands

import (
	"strings"

	"openkanban/internal/slug"

	"github.com/spf13/cobra"
)

var slugCmd = &cobra.Command{
	Use:   "slug <text>",
	Short: "Print the board slug a name maps to",
	Example: `  openkanban slug "Team Board"
  # team-board`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s := slug.Normalize(strings.Join(args, " "))
		if s == "" {
			return out.Error("invalid board name", "Nothing of the name survives normalization.", []string{"Use letters or digits"})
		}
		cmd.Println(s)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(slugCmd)
}

// boardSlug normalizes the slug argument of a command.
func boardSlug(arg string) (string, error) {
	s := slug.Normalize(arg)
	if s == "" {
		return "", out.Error("invalid board name", "Nothing of "+arg+" survives normalization.", []string{"Use letters or digits"})
	}
	return s, nil
}
