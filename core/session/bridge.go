package session

// MediaMetadata describes the current track for OS-level transport controls
// (lock screen, media keys).
type MediaMetadata struct {
	Title   string
	Artist  string
	Album   string
	Artwork []string
}

// MediaHandlers are the callbacks the OS bridge invokes for user gestures on
// the system controls. Nil handlers mean the gesture is unsupported.
type MediaHandlers struct {
	OnPlay          func()
	OnPause         func()
	OnSeekBackward  func()
	OnSeekForward   func()
	OnPreviousTrack func()
	OnNextTrack     func()
	OnSeekTo        func(seconds float64)
}

// MediaBridge adapts the session to a platform's media-control surface. A
// platform without one uses NopBridge; bridge failures must never affect
// playback.
type MediaBridge interface {
	// Register installs metadata and handlers for the current track.
	Register(meta MediaMetadata, handlers MediaHandlers) error
	// UpdatePlayback pushes play state and position to the OS controls.
	UpdatePlayback(playing bool, position, duration float64)
	// Clear removes all registrations. Called on teardown.
	Clear()
}

// NopBridge is the default MediaBridge doing nothing.
type NopBridge struct{}

func (NopBridge) Register(MediaMetadata, MediaHandlers) error { return nil }

func (NopBridge) UpdatePlayback(bool, float64, float64) {}

func (NopBridge) Clear() {}
