package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"EchoFM/config"
	"EchoFM/core/achieve"
	"EchoFM/storage"
)

var achievementsRedis bool

var achievementsCmd = &cobra.Command{
	Use:   "achievements",
	Short: "Show achievement progress and level for the stored state.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()

		var store storage.Store
		if achievementsRedis {
			client, err := storage.ConnectRedis(cfg)
			if err != nil {
				return err
			}
			store = storage.NewRedisStore(client, cfg.HistoryLimit)
		} else {
			store = storage.NewMemoryStore(cfg.HistoryLimit)
		}
		defer store.Close()

		engine := achieve.NewEngine(store)
		engine.LoadState(cmd.Context())

		stats := engine.UserStats()
		fmt.Printf("level %d  %d/%d XP  (%d lifetime)\n",
			stats.Level, stats.XP, stats.XP+stats.XPToNextLevel, stats.TotalXP)

		for _, ua := range engine.Achievements() {
			mark := " "
			if ua.Unlocked {
				mark = "x"
			}
			fmt.Printf("  [%s] %-16s %s (%.0f/%.0f)\n",
				mark, ua.ID, ua.Name, ua.Progress, ua.Requirement.Target)
		}
		return nil
	},
}

func init() {
	achievementsCmd.Flags().BoolVar(&achievementsRedis, "redis", false, "read gamification state from Redis")
	rootCmd.AddCommand(achievementsCmd)
}
