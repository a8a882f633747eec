package cmd

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"EchoFM/config"
	"EchoFM/core/mood"
	"EchoFM/core/recommend"
	"EchoFM/model"
	"EchoFM/storage"
)

var (
	recommendCatalog string
	recommendSeed    int64
	recommendMood    string
	recommendLimit   int
	recommendRedis   bool
)

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Print similarity and mood recommendations for a catalog.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		tracks, err := loadCatalog(recommendCatalog)
		if err != nil {
			return err
		}

		if recommendSeed != 0 {
			var seed *model.Track
			for _, t := range tracks {
				if t.ID == recommendSeed {
					seed = t
					break
				}
			}
			if seed == nil {
				return fmt.Errorf("seed track %d not in catalog", recommendSeed)
			}
			fmt.Printf("similar to %s - %s:\n", seed.Artist, seed.Title)
			for _, s := range recommend.ForTrack(seed, tracks, recommendLimit) {
				fmt.Printf("  %.2f  %s - %s\n", s.Score, s.Track.Artist, s.Track.Title)
			}
			return nil
		}

		if recommendMood != "" {
			m := model.Mood(recommendMood)
			playlist := mood.Playlist(tracks, m, recommendLimit, rand.New(rand.NewSource(1)))
			fmt.Printf("%s playlist:\n", m)
			for _, t := range playlist {
				fmt.Printf("  %.2f  %s - %s\n", mood.Confidence(t, m), t.Artist, t.Title)
			}
			return nil
		}

		// Personalized recommendations need a history source.
		var store storage.Store
		if recommendRedis {
			client, err := storage.ConnectRedis(cfg)
			if err != nil {
				return err
			}
			store = storage.NewRedisStore(client, cfg.HistoryLimit)
		} else {
			store = storage.NewMemoryStore(cfg.HistoryLimit)
		}
		defer store.Close()

		engine := recommend.NewEngine(store)
		fmt.Println("personalized:")
		for _, s := range engine.Personalized(cmd.Context(), tracks, recommendLimit) {
			fmt.Printf("  %.2f  %s - %s\n", s.Score, s.Track.Artist, s.Track.Title)
		}
		return nil
	},
}

func init() {
	recommendCmd.Flags().StringVar(&recommendCatalog, "catalog", "", "catalog JSON file (defaults to the demo catalog)")
	recommendCmd.Flags().Int64Var(&recommendSeed, "seed", 0, "seed track ID for similarity ranking")
	recommendCmd.Flags().StringVar(&recommendMood, "mood", "", "mood to build a playlist for")
	recommendCmd.Flags().IntVar(&recommendLimit, "limit", 10, "max results")
	recommendCmd.Flags().BoolVar(&recommendRedis, "redis", false, "read listen history from Redis")
	rootCmd.AddCommand(recommendCmd)
}
