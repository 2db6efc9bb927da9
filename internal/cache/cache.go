// Package cache prunes expired filesystem cache artifacts.
package cache

import (
	"os"
	"time"

	"github.com/spf13/afero"

	"github.com/quranku-cli/quranku/filesystem"
	"github.com/quranku-cli/quranku/where"
)

// TTL bounds how long unused cache artifacts stay on disk.
const TTL = 30 * 24 * time.Hour

// CollectGarbage removes cache entries whose modification time exceeded
// the TTL. Callers run it in the background at startup.
func CollectGarbage() {
	fs := filesystem.API()
	_ = afero.Walk(fs, where.Cache(), func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if time.Since(info.ModTime()) > TTL {
			_ = fs.Remove(path)
		}
		return nil
	})
}
