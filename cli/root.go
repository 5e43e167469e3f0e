// Package cli wires the othello commands together.
package cli

import (
	"io/fs"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"othello/config"
	"othello/game"
	"othello/stats"
)

type app struct {
	configPath string
	web        fs.FS

	cfg    config.Config
	logger *slog.Logger
}

// NewRootCommand builds the command tree. web holds the static UI served by
// the serve command; it may be nil.
func NewRootCommand(web fs.FS) *cobra.Command {
	a := &app{web: web}

	root := &cobra.Command{
		Use:           "othello",
		Short:         "Play Othello against random and minimax agents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = cfg.Log.NewLogger()
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a YAML config file")

	root.AddCommand(
		newServeCommand(a),
		newPlayCommand(a),
		newStatsCommand(a),
	)
	return root
}

// Execute runs the command tree against os.Args.
func Execute(web fs.FS) error {
	return NewRootCommand(web).Execute()
}

func (a *app) openStats() (*stats.Store, error) {
	return stats.Open(stats.Config{
		Path:     a.cfg.Stats.Path,
		InMemory: a.cfg.Stats.InMemory,
		Logger:   a.logger.With("component", "badger"),
	})
}

func (a *app) newAgent(offset int64) *game.Agent {
	seed := a.cfg.Agent.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return game.NewAgent(game.AgentOptions{
		Seed:        seed + offset,
		PacingDelay: a.cfg.Agent.PacingDelay,
		Logger:      a.logger.With("component", "agent"),
	})
}
