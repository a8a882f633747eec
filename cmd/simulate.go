package cmd

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"

	"EchoFM/config"
	"EchoFM/core/achieve"
	"EchoFM/core/audio"
	"EchoFM/core/session"
	"EchoFM/model"
	"EchoFM/storage"
)

var simulateSettings string

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play the demo catalog through the full engine offline.",
	Long: `Generates sine-wave audio for a small demo catalog, plays it through
the signal graph with analyzer and achievements attached, and prints playhead
and spectrum snapshots. Useful for exercising the engine without media files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		return runSimulation(cmd.Context(), cfg)
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateSettings, "settings", "", "audio settings JSON file to apply and watch")
	rootCmd.AddCommand(simulateCmd)
}

func runSimulation(ctx context.Context, cfg *config.Config) error {
	tracks := demoCatalog()

	fetcher := storage.NewMemFetcher()
	frequencies := []float64{220, 440, 330, 550, 275}
	for i, t := range tracks {
		fetcher.Put(t.AudioURL, sineWAV(frequencies[i%len(frequencies)], t.Duration, cfg.SampleRate))
	}

	store := storage.NewMemoryStore(cfg.HistoryLimit)
	defer store.Close()

	achievements := achieve.NewEngine(store)
	achievements.LoadState(ctx)

	transport := audio.NewTransport(audio.TransportConfig{
		SampleRate:  cfg.SampleRate,
		LoadTimeout: cfg.LoadTimeout,
		Fetcher:     fetcher,
	})
	analyzer := audio.NewFrequencyAnalyzer(cfg.FFTSize, cfg.SampleRate)
	if err := analyzer.Connect(transport); err != nil {
		return err
	}

	sess := session.NewSession(session.Config{
		Transport:    transport,
		Store:        store,
		Achievements: achievements,
		PollInterval: 250 * time.Millisecond,
	})
	defer sess.Close()

	if simulateSettings != "" {
		watcher, err := storage.WatchSettings(simulateSettings, func(s *model.AudioSettings) {
			if aerr := sess.ApplySettings(ctx, s); aerr != nil {
				fmt.Printf("settings rejected: %v\n", aerr)
			}
		})
		if err != nil {
			return err
		}
		defer watcher.Close()
	}

	if err := sess.PlayTrack(ctx, tracks[0], tracks); err != nil {
		return err
	}
	sess.SetRepeatMode(model.RepeatOff)

	updates := sess.Subscribe()
	block := make([][]float64, 2)
	for i := range block {
		block[i] = make([]float64, 1024)
	}

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case snap := <-updates:
			if snap.Track != nil {
				fmt.Printf("[%s] %s - %s  %.1fs/%.1fs\n",
					stateWord(snap.Playing), snap.Track.Artist, snap.Track.Title,
					snap.Position, snap.Duration)
			}
			if snap.Index == len(snap.Playlist)-1 && !snap.Playing && snap.Position == 0 {
				printSummary(achievements)
				return nil
			}
		case <-ticker.C:
			transport.Render(block)
			fmt.Printf("  bass=%.2f mids=%.2f treble=%.2f\n",
				analyzer.Bass(), analyzer.Mids(), analyzer.Treble())
		}
	}
}

func stateWord(playing bool) string {
	if playing {
		return "playing"
	}
	return "paused"
}

func printSummary(achievements *achieve.Engine) {
	stats := achievements.UserStats()
	fmt.Printf("\nlevel %d, %d XP (%d to next)\n", stats.Level, stats.XP, stats.XPToNextLevel)
	for _, ua := range achievements.Achievements() {
		if ua.Unlocked {
			fmt.Printf("  unlocked: %s\n", ua.Achievement.Name)
		}
	}
}

// sineWAV renders a stereo 16-bit PCM WAV of the given tone.
func sineWAV(freq, seconds float64, sampleRate int) []byte {
	frames := int(seconds * float64(sampleRate))
	var pcm bytes.Buffer
	for i := 0; i < frames; i++ {
		v := math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
		sample := int16(v * 0.6 * math.MaxInt16)
		binary.Write(&pcm, binary.LittleEndian, sample) // left
		binary.Write(&pcm, binary.LittleEndian, sample) // right
	}

	const (
		channels      = 2
		bitsPerSample = 16
	)
	blockAlign := channels * bitsPerSample / 8
	dataLen := pcm.Len()

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataLen))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bitsPerSample))
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(dataLen))
	buf.Write(pcm.Bytes())
	return buf.Bytes()
}
