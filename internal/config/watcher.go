package config

import (
	"context"
	"log"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the config file on change and hands the result to onChange.
// fsnotify drives the fast path; a 60s polling ticker runs as well so a
// missed inotify event cannot leave a stale config forever.
func Watch(ctx context.Context, path string, onChange func(*Config)) {
	reload := func() {
		cfg, err := Load(path)
		if err != nil {
			log.Printf("[WARN] Config: reload failed, keeping previous: %v", err)
			return
		}
		onChange(cfg)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("[WARN] Config: fsnotify unavailable (%v), polling only", err)
		watcher = nil
	} else if err := watcher.Add(path); err != nil {
		log.Printf("[WARN] Config: cannot watch %s (%v), polling only", path, err)
		watcher.Close()
		watcher = nil
	}

	if watcher != nil {
		go func() {
			defer watcher.Close()
			for {
				select {
				case <-ctx.Done():
					return
				case event, ok := <-watcher.Events:
					if !ok {
						return
					}
					if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
						// Editors often write in two steps; let the file settle.
						time.Sleep(100 * time.Millisecond)
						reload()
					}
				case err, ok := <-watcher.Errors:
					if !ok {
						return
					}
					log.Printf("[WARN] Config: watcher error: %v", err)
				}
			}
		}()
	}

	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				reload()
			}
		}
	}()
}
