// Package session orchestrates playback: it sequences transport commands,
// maintains the playlist/shuffle/repeat state, records listen history, and
// feeds the achievement engine. UI layers talk to a Session through its
// command methods and observe it through state snapshots; nothing here is
// coupled to any particular UI.
package session

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"EchoFM/core/achieve"
	"EchoFM/core/audio"
	"EchoFM/core/mood"
	"EchoFM/logger"
	"EchoFM/model"
	"EchoFM/storage"
)

const playbackStateKey = "current"

// Snapshot is an observable copy of the session state.
type Snapshot struct {
	Track      *model.Track
	Playlist   []*model.Track
	Index      int
	Playing    bool
	Position   float64
	Duration   float64
	RepeatMode model.RepeatMode
	Shuffle    bool
	Volume     float64
}

// Config wires a Session. Transport is required; everything else has a
// usable default.
type Config struct {
	Transport    *audio.Transport
	Store        storage.Store
	Achievements *achieve.Engine
	Bridge       MediaBridge
	PollInterval time.Duration
	Rand         *rand.Rand
}

// Session is the playback state container. All mutation goes through its
// command methods; observers receive snapshots.
type Session struct {
	mu sync.Mutex

	transport    *audio.Transport
	store        storage.Store
	achievements *achieve.Engine
	bridge       MediaBridge
	rng          *rand.Rand

	track    *model.Track
	playlist []*model.Track
	original []*model.Track
	index    int
	repeat   model.RepeatMode
	shuffle  bool

	sessionID string
	subs      []chan Snapshot

	pollInterval time.Duration
	done         chan struct{}
	wg           sync.WaitGroup
	closed       bool
}

// NewSession creates a session and starts its playhead poller.
func NewSession(cfg Config) *Session {
	if cfg.Bridge == nil {
		cfg.Bridge = NopBridge{}
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	s := &Session{
		transport:    cfg.Transport,
		store:        cfg.Store,
		achievements: cfg.Achievements,
		bridge:       cfg.Bridge,
		rng:          cfg.Rand,
		repeat:       model.RepeatOff,
		sessionID:    uuid.NewString(),
		pollInterval: cfg.PollInterval,
		done:         make(chan struct{}),
	}
	s.wg.Add(1)
	go s.poll()
	return s
}

// PlayTrack starts the given track. A non-nil playlist replaces both the
// working playlist and the restore-order copy; the index is recomputed by
// locating the track in the new playlist. A track missing from its own
// playlist falls back to index 0, with a warning logged.
func (s *Session) PlayTrack(ctx context.Context, track *model.Track, playlist []*model.Track) error {
	s.mu.Lock()
	if playlist != nil {
		s.playlist = append([]*model.Track(nil), playlist...)
		s.original = append([]*model.Track(nil), playlist...)
	}
	s.track = track
	if len(s.playlist) > 0 {
		idx := indexOf(s.playlist, track.ID)
		if idx < 0 {
			logger.Warn("track not found in playlist, defaulting to index 0",
				logger.Int64("trackId", track.ID))
			idx = 0
		}
		s.index = idx
	} else {
		s.index = 0
	}
	s.mu.Unlock()

	if err := s.transport.Load(ctx, track.AudioURL); err != nil {
		return err
	}
	if err := s.transport.Play(); err != nil {
		return err
	}

	s.recordTrackStart(track)
	s.registerBridge(track)
	s.persistPlayback()
	s.notify()
	return nil
}

// PlayNext advances per the repeat mode: repeat-one replays the current
// index; at the end of the playlist repeat-all wraps to 0 while repeat-off
// is a no-op; otherwise the index advances by one.
func (s *Session) PlayNext(ctx context.Context) error {
	s.mu.Lock()
	if len(s.playlist) == 0 {
		s.mu.Unlock()
		return nil
	}
	next := s.index
	switch {
	case s.repeat == model.RepeatOne:
		// Replay in place.
	case s.index >= len(s.playlist)-1:
		if s.repeat != model.RepeatAll {
			s.mu.Unlock()
			return nil
		}
		next = 0
	default:
		next = s.index + 1
	}
	s.index = next
	track := s.playlist[next]
	s.track = track
	s.mu.Unlock()

	return s.startCurrent(ctx, track)
}

// PlayPrevious always wraps: index 0 goes to the last playlist position.
func (s *Session) PlayPrevious(ctx context.Context) error {
	s.mu.Lock()
	if len(s.playlist) == 0 {
		s.mu.Unlock()
		return nil
	}
	s.index = (s.index - 1 + len(s.playlist)) % len(s.playlist)
	track := s.playlist[s.index]
	s.track = track
	s.mu.Unlock()

	return s.startCurrent(ctx, track)
}

func (s *Session) startCurrent(ctx context.Context, track *model.Track) error {
	if err := s.transport.Load(ctx, track.AudioURL); err != nil {
		return err
	}
	if err := s.transport.Play(); err != nil {
		return err
	}
	s.recordTrackStart(track)
	s.registerBridge(track)
	s.persistPlayback()
	s.notify()
	return nil
}

// TogglePlayPause pauses a playing transport and resumes a paused one.
func (s *Session) TogglePlayPause() error {
	var err error
	switch s.transport.State() {
	case audio.StatePlaying:
		err = s.transport.Pause()
	case audio.StatePaused, audio.StateReady:
		err = s.transport.Play()
	default:
		return audio.ErrNotReady
	}
	if err == nil {
		s.persistPlayback()
		s.notify()
	}
	return err
}

// ToggleShuffle flips shuffle mode. Enabling snapshots the current order and
// shuffles a working copy; disabling restores the snapshot verbatim. Either
// way the index is relocated to the current track so playback never restarts.
func (s *Session) ToggleShuffle() bool {
	s.mu.Lock()
	s.shuffle = !s.shuffle
	if s.shuffle {
		s.original = append([]*model.Track(nil), s.playlist...)
		s.playlist = mood.Shuffle(s.playlist, s.rng)
	} else {
		s.playlist = append([]*model.Track(nil), s.original...)
	}
	if s.track != nil {
		if idx := indexOf(s.playlist, s.track.ID); idx >= 0 {
			s.index = idx
		}
	}
	enabled := s.shuffle
	s.mu.Unlock()

	s.persistPlayback()
	s.notify()
	return enabled
}

// SetRepeatMode sets how the session behaves at track boundaries.
func (s *Session) SetRepeatMode(mode model.RepeatMode) {
	s.mu.Lock()
	s.repeat = mode
	s.mu.Unlock()
	s.persistPlayback()
	s.notify()
}

// Seek forwards to the transport and pushes the new position to observers.
func (s *Session) Seek(seconds float64) error {
	if err := s.transport.Seek(seconds); err != nil {
		return err
	}
	s.notify()
	return nil
}

// SetVolume forwards to the transport.
func (s *Session) SetVolume(v float64) {
	s.transport.SetVolume(v)
	s.persistPlayback()
	s.notify()
}

// ApplySettings forwards audio settings to the transport and persists them.
func (s *Session) ApplySettings(ctx context.Context, settings *model.AudioSettings) error {
	if err := s.transport.ApplySettings(settings); err != nil {
		return err
	}
	if s.store != nil {
		payload, err := json.Marshal(settings)
		if err == nil {
			if err := s.store.Set(ctx, storage.StoreAudioSettings, "current", payload); err != nil {
				logger.Warn("failed to persist audio settings", logger.ErrorField(err))
			}
		}
	}
	return nil
}

// AddFavorite marks the track as a favorite and feeds the achievement
// favorites metric.
func (s *Session) AddFavorite(ctx context.Context, track *model.Track) error {
	if s.store != nil {
		if err := s.store.AddFavorite(ctx, track.ID); err != nil {
			return err
		}
	}
	if s.achievements != nil {
		s.achievements.TrackAction(ctx, model.ActionFavoriteAdded, track)
	}
	return nil
}

// RemoveFavorite drops the track from favorites.
func (s *Session) RemoveFavorite(ctx context.Context, track *model.Track) error {
	if s.store != nil {
		if err := s.store.RemoveFavorite(ctx, track.ID); err != nil {
			return err
		}
	}
	if s.achievements != nil {
		s.achievements.TrackAction(ctx, model.ActionFavoriteRemoved, track)
	}
	return nil
}

// Favorites lists the favorited track IDs.
func (s *Session) Favorites(ctx context.Context) ([]int64, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.Favorites(ctx)
}

// RestorePlayback loads the persisted playback snapshot, reapplies repeat
// mode, shuffle flag, and volume, and returns the snapshot so the caller can
// resolve the track and resume at its position. Nil when nothing usable is
// stored.
func (s *Session) RestorePlayback(ctx context.Context) *model.PlaybackSnapshot {
	if s.store == nil {
		return nil
	}
	raw, err := s.store.Get(ctx, storage.StorePlaybackState, playbackStateKey)
	if err != nil {
		return nil
	}
	var snap model.PlaybackSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		logger.Warn("corrupted playback snapshot, ignoring", logger.ErrorField(err))
		return nil
	}

	s.mu.Lock()
	if snap.RepeatMode != "" {
		s.repeat = snap.RepeatMode
	}
	s.shuffle = snap.Shuffle
	s.mu.Unlock()
	s.transport.SetVolume(snap.Volume)
	return &snap
}

// RestoreSettings loads persisted audio settings and applies them, falling
// back to defaults when nothing usable is stored.
func (s *Session) RestoreSettings(ctx context.Context) *model.AudioSettings {
	settings := model.DefaultAudioSettings()
	if s.store != nil {
		if raw, err := s.store.Get(ctx, storage.StoreAudioSettings, "current"); err == nil {
			var stored model.AudioSettings
			if jerr := json.Unmarshal(raw, &stored); jerr == nil && stored.Validate() == nil {
				settings = &stored
			} else {
				logger.Warn("stored audio settings unusable, using defaults")
			}
		}
	}
	if err := s.transport.ApplySettings(settings); err != nil {
		logger.Warn("failed to apply restored settings", logger.ErrorField(err))
	}
	return settings
}

// State returns a snapshot of the current session state.
func (s *Session) State() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	playlist := append([]*model.Track(nil), s.playlist...)
	return Snapshot{
		Track:      s.track,
		Playlist:   playlist,
		Index:      s.index,
		Playing:    s.transport.State() == audio.StatePlaying,
		Position:   s.transport.CurrentTime(),
		Duration:   s.transport.Duration(),
		RepeatMode: s.repeat,
		Shuffle:    s.shuffle,
		Volume:     s.transport.Volume(),
	}
}

// Subscribe registers an observer channel. Slow observers miss snapshots
// rather than blocking playback.
func (s *Session) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 8)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

func (s *Session) notify() {
	s.mu.Lock()
	snap := s.snapshotLocked()
	subs := append([]chan Snapshot(nil), s.subs...)
	s.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

// poll drives the playhead: it pushes position updates to observers and the
// media bridge, keeps history progress fresh, and is the sole detector of
// natural end-of-track (auto-advance has up to one interval of latency).
func (s *Session) poll() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Session) tick() {
	state := s.transport.State()
	if state != audio.StatePlaying {
		return
	}

	s.mu.Lock()
	track := s.track
	s.mu.Unlock()

	position := s.transport.CurrentTime()
	duration := s.transport.Duration()
	s.bridge.UpdatePlayback(true, position, duration)

	if track != nil && s.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.pollInterval)
		if err := s.store.UpdateHistoryProgress(ctx, track.ID, position, false); err != nil {
			logger.Warn("failed to update history progress", logger.ErrorField(err))
		}
		cancel()
	}

	if s.transport.Ended() {
		s.onTrackEnded(track)
		return
	}
	s.notify()
}

func (s *Session) onTrackEnded(track *model.Track) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if track != nil {
		if s.store != nil {
			if err := s.store.UpdateHistoryProgress(ctx, track.ID, track.Duration, true); err != nil {
				logger.Warn("failed to mark history entry completed", logger.ErrorField(err))
			}
		}
		if s.achievements != nil {
			s.achievements.TrackAction(ctx, model.ActionTrackCompleted, track)
		}
	}

	// Stop first so a no-op advance (repeat off, end of playlist) leaves the
	// transport idle instead of re-reporting the ended track every tick.
	s.transport.Stop()
	if err := s.PlayNext(ctx); err != nil {
		logger.Warn("auto-advance failed", logger.ErrorField(err))
	}
	s.notify()
}

// recordTrackStart appends the listen event asynchronously; failures are
// logged, never surfaced to the caller.
func (s *Session) recordTrackStart(track *model.Track) {
	if s.achievements != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		s.achievements.TrackAction(ctx, model.ActionTrackPlayed, track)
		cancel()
	}
	if s.store == nil {
		return
	}
	entry := model.HistoryEntry{
		TrackID:   track.ID,
		SessionID: s.sessionID,
		PlayedAt:  time.Now(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.store.AppendHistory(ctx, entry); err != nil {
			logger.Warn("failed to record listen history",
				logger.Int64("trackId", track.ID), logger.ErrorField(err))
		}
	}()
}

func (s *Session) registerBridge(track *model.Track) {
	meta := MediaMetadata{
		Title:   track.Title,
		Artist:  track.Artist,
		Artwork: []string{track.CoverURL},
	}
	handlers := MediaHandlers{
		OnPlay:  func() { _ = s.TogglePlayPause() },
		OnPause: func() { _ = s.TogglePlayPause() },
		OnSeekBackward: func() {
			_ = s.Seek(s.transport.CurrentTime() - 10)
		},
		OnSeekForward: func() {
			_ = s.Seek(s.transport.CurrentTime() + 10)
		},
		OnPreviousTrack: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_ = s.PlayPrevious(ctx)
		},
		OnNextTrack: func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_ = s.PlayNext(ctx)
		},
		OnSeekTo: func(seconds float64) { _ = s.Seek(seconds) },
	}
	if err := s.bridge.Register(meta, handlers); err != nil {
		logger.Warn("media bridge registration failed", logger.ErrorField(err))
	}
}

func (s *Session) persistPlayback() {
	if s.store == nil {
		return
	}
	s.mu.Lock()
	var trackID int64
	if s.track != nil {
		trackID = s.track.ID
	}
	snap := model.PlaybackSnapshot{
		TrackID:    trackID,
		Position:   s.transport.CurrentTime(),
		RepeatMode: s.repeat,
		Shuffle:    s.shuffle,
		Volume:     s.transport.Volume(),
	}
	s.mu.Unlock()

	payload, err := json.Marshal(snap)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.store.Set(ctx, storage.StorePlaybackState, playbackStateKey, payload); err != nil {
		logger.Warn("failed to persist playback state", logger.ErrorField(err))
	}
}

// Close stops the poller, clears the media bridge, and destroys the
// transport. Idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()

	s.wg.Wait()
	s.bridge.Clear()
	s.transport.Destroy()
}

func indexOf(tracks []*model.Track, id int64) int {
	for i, t := range tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
