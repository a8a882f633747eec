package storage

import (
	"encoding/json"
	"os"

	"github.com/fsnotify/fsnotify"

	"EchoFM/logger"
	"EchoFM/model"
)

// SettingsWatcher watches an audio-settings JSON file and pushes every valid
// change to an apply callback, so out-of-band edits reach the active signal
// graph without a restart. Invalid or unreadable content is logged and
// skipped; the previous settings stay in effect.
type SettingsWatcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// WatchSettings starts watching path and calls apply for each valid change.
// The file is also applied once immediately if it exists.
func WatchSettings(path string, apply func(*model.AudioSettings)) (*SettingsWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, err
	}

	w := &SettingsWatcher{
		watcher: watcher,
		done:    make(chan struct{}),
	}

	if settings := loadSettingsFile(path); settings != nil {
		apply(settings)
	}

	go w.loop(path, apply)
	return w, nil
}

func (w *SettingsWatcher) loop(path string, apply func(*model.AudioSettings)) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if settings := loadSettingsFile(path); settings != nil {
				logger.Info("audio settings file changed, reapplying",
					logger.String("path", path))
				apply(settings)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("settings watcher error", logger.ErrorField(err))
		case <-w.done:
			return
		}
	}
}

func loadSettingsFile(path string) *model.AudioSettings {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("failed to read settings file",
			logger.String("path", path), logger.ErrorField(err))
		return nil
	}
	var settings model.AudioSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		logger.Warn("failed to parse settings file",
			logger.String("path", path), logger.ErrorField(err))
		return nil
	}
	if err := settings.Validate(); err != nil {
		logger.Warn("settings file failed validation",
			logger.String("path", path), logger.ErrorField(err))
		return nil
	}
	return &settings
}

// Close stops the watcher. Idempotent.
func (w *SettingsWatcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
		close(w.done)
	}
	return w.watcher.Close()
}
