package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mcoot/battleship/internal/api/response"
)

func newMatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match commands",
	}

	cmd.AddCommand(newMatchCreateCmd())
	cmd.AddCommand(newMatchListCmd())
	cmd.AddCommand(newMatchShowCmd())
	cmd.AddCommand(newMatchJoinCmd())
	cmd.AddCommand(newMatchFireCmd())
	cmd.AddCommand(newMatchForfeitCmd())
	cmd.AddCommand(newMatchBotCmd())

	return cmd
}

func newMatchCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Open a new match and wait for an opponent",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Match

			if err := client.Post("/api/v1/matches", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newMatchListCmd() *cobra.Command {
	var mine bool
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List open matches you can join",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/api/v1/matches"
			if mine {
				path = "/api/v1/players/me/matches"
			}
			if limit > 0 {
				path += "?limit=" + strconv.Itoa(limit)
			}

			var result response.MatchList
			if err := client.Get(path, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&mine, "mine", false, "List your own matches instead")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of matches")

	return cmd
}

func newMatchShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show your view of a match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.MatchView

			if err := client.Get(fmt.Sprintf("/api/v1/matches/%s", args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newMatchJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join <id>",
		Short: "Join a waiting match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.MatchView

			if err := client.Post(fmt.Sprintf("/api/v1/matches/%s/join", args[0]), nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newMatchFireCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fire <id> <row,col>",
		Short: "Fire at a cell of the opponent's grid",
		Long: `Fire at a cell of the opponent's grid.

The target is given as "row,col" with both in 0-9, or as a letter and
number such as "C7" (row C, column 7).`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, col, err := parseTarget(args[1])
			if err != nil {
				return err
			}

			var result response.FireResult
			req := map[string]int{"row": row, "col": col}
			if err := client.Post(fmt.Sprintf("/api/v1/matches/%s/fire", args[0]), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newMatchForfeitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "forfeit <id>",
		Short: "Give up a match in progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Match

			if err := client.Post(fmt.Sprintf("/api/v1/matches/%s/forfeit", args[0]), nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newMatchBotCmd() *cobra.Command {
	var strategy string

	cmd := &cobra.Command{
		Use:   "bot <id>",
		Short: "Invite a CPU opponent into your waiting match",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.MatchView

			req := map[string]string{"strategy": strategy}
			if err := client.Post(fmt.Sprintf("/api/v1/matches/%s/bot", args[0]), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&strategy, "strategy", "random", "Bot strategy: random, hunter")

	return cmd
}

// parseTarget accepts "row,col" or a letter-number pair like "C7"
func parseTarget(s string) (int, int, error) {
	s = strings.TrimSpace(s)
	if rowStr, colStr, ok := strings.Cut(s, ","); ok {
		row, rowErr := strconv.Atoi(strings.TrimSpace(rowStr))
		col, colErr := strconv.Atoi(strings.TrimSpace(colStr))
		if rowErr != nil || colErr != nil {
			return 0, 0, fmt.Errorf("invalid target %q: expected row,col", s)
		}
		return row, col, nil
	}

	if len(s) >= 2 {
		letter := strings.ToUpper(s[:1])[0]
		col, err := strconv.Atoi(s[1:])
		if err == nil && letter >= 'A' && letter <= 'Z' {
			return int(letter - 'A'), col, nil
		}
	}
	return 0, 0, fmt.Errorf("invalid target %q: expected row,col or a letter and number like C7", s)
}
