package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"othello/game"
	"othello/stats"
)

type playOptions struct {
	Games   int
	Workers int
	Black   string
	White   string
	Depth   int
}

type playSummary struct {
	BlackWins int
	WhiteWins int
	Ties      int
}

func (s playSummary) Total() int {
	return s.BlackWins + s.WhiteWins + s.Ties
}

func newPlayCommand(a *app) *cobra.Command {
	opts := playOptions{Games: 10, Workers: 1, Black: "minimax", White: "random"}
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play computer against computer and record the results",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("depth") {
				opts.Depth = a.cfg.Agent.Depth
			}
			store, err := a.openStats()
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					a.logger.Error("failed to close statistics store", "error", err)
				}
			}()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			summary, err := a.playGames(ctx, opts, store)
			if err != nil {
				return err
			}
			return printSummary(cmd.OutOrStdout(), opts, summary, store)
		},
	}
	cmd.Flags().IntVarP(&opts.Games, "games", "n", opts.Games, "number of games to play")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", opts.Workers, "games played in parallel")
	cmd.Flags().StringVar(&opts.Black, "black", opts.Black, "black player: random or minimax")
	cmd.Flags().StringVar(&opts.White, "white", opts.White, "white player: random or minimax")
	cmd.Flags().IntVar(&opts.Depth, "depth", 0, "minimax search depth, defaults to agent.depth")
	return cmd
}

// playGames runs opts.Games matches across opts.Workers goroutines, each
// with its own agent, and records every finished game in store.
func (a *app) playGames(ctx context.Context, opts playOptions, store *stats.Store) (playSummary, error) {
	var summary playSummary
	if opts.Games < 1 || opts.Workers < 1 {
		return summary, fmt.Errorf("games and workers must be positive")
	}
	if opts.Depth < 1 {
		return summary, fmt.Errorf("depth must be positive")
	}
	black, ok := game.ParseAlgorithm(opts.Black)
	if !ok {
		return summary, fmt.Errorf("unknown black player %q", opts.Black)
	}
	white, ok := game.ParseAlgorithm(opts.White)
	if !ok {
		return summary, fmt.Errorf("unknown white player %q", opts.White)
	}
	algorithms := map[game.Player]game.Algorithm{game.Black: black, game.White: white}
	labels := map[game.Player]string{
		game.Black: stats.PlayerLabel(black.String(), opts.Depth),
		game.White: stats.PlayerLabel(white.String(), opts.Depth),
	}

	jobs := make(chan int)
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < opts.Games; i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < opts.Workers; w++ {
		agent := a.newAgent(int64(w))
		logger := a.logger.With("worker", w)
		g.Go(func() error {
			for i := range jobs {
				if err := gctx.Err(); err != nil {
					return err
				}
				outcome, moves, err := playOne(agent, algorithms, opts.Depth)
				if err != nil {
					return fmt.Errorf("game %d: %w", i, err)
				}
				logger.Debug("game finished", "game", i, "outcome", outcome.String(), "moves", moves)

				for _, p := range []game.Player{game.Black, game.White} {
					label := stats.Label(labels[p], labels[p.Opponent()])
					if _, err := store.Add(label, p, outcome); err != nil {
						return fmt.Errorf("record game %d: %w", i, err)
					}
				}

				mu.Lock()
				switch {
				case outcome.Tie:
					summary.Ties++
				case outcome.Winner == game.Black:
					summary.BlackWins++
				default:
					summary.WhiteWins++
				}
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return summary, err
	}
	a.logger.Info("finished playing", "games", summary.Total(),
		"black_wins", summary.BlackWins, "white_wins", summary.WhiteWins, "ties", summary.Ties)
	return summary, nil
}

func playOne(agent *game.Agent, algorithms map[game.Player]game.Algorithm, depth int) (game.Outcome, int, error) {
	match := game.NewMatch()
	moves := 0
	for !match.Over() {
		res := agent.Compute(game.MoveRequest{
			Board:     match.Board(),
			Player:    match.Turn(),
			Algorithm: algorithms[match.Turn()],
			Depth:     depth,
		})
		if err := match.Play(res.Move); err != nil {
			return game.Outcome{}, moves, err
		}
		moves++
	}
	outcome, _ := match.Outcome()
	return outcome, moves, nil
}

func printSummary(w io.Writer, opts playOptions, summary playSummary, store *stats.Store) error {
	fmt.Fprintf(w, "%d games: black (%s) %d, white (%s) %d, ties %d\n",
		summary.Total(), opts.Black, summary.BlackWins, opts.White, summary.WhiteWins, summary.Ties)
	return printStats(w, store)
}
