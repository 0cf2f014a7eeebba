package prefs

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the preferences whenever the file is written by another
// process. It watches the parent directory so editors that replace the
// file by rename are seen too. Watch returns once the watcher is running;
// it stops when ctx is done or the store is closed.
func (s *Store) Watch(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.watching {
		s.mu.Unlock()
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("creating preferences watcher: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := fsw.Add(dir); err != nil {
		s.mu.Unlock()
		fsw.Close()
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	s.watching = true
	s.wg.Add(1)
	s.mu.Unlock()

	go s.watchLoop(ctx, fsw)
	return nil
}

func (s *Store) watchLoop(ctx context.Context, fsw *fsnotify.Watcher) {
	defer s.wg.Done()
	defer fsw.Close()
	defer func() {
		s.mu.Lock()
		s.watching = false
		s.mu.Unlock()
	}()

	target := filepath.Clean(s.path)
	log := s.logger.With().Str("path", target).Logger()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if err := s.Reload(); err != nil {
				log.Warn().Err(err).Msg("preferences reload failed")
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("preferences watcher error")
		}
	}
}
