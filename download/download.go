// Package download saves chapter recitations as local MP3 files.
package download

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/quranku-cli/quranku/constant"
	"github.com/quranku-cli/quranku/filesystem"
	"github.com/quranku-cli/quranku/log"
	"github.com/quranku-cli/quranku/util"
)

// Progress reports bytes written so far against the expected total.
// Total is zero when the server does not announce a length.
type Progress func(written, total int64)

// Options tunes a single download.
type Options struct {
	// Dir is the destination directory. Empty means the working directory.
	Dir string
	// Name overrides the file name, sanitized. Empty derives it from the URL.
	Name string
	// OnProgress, when set, is called as the body streams to disk.
	OnProgress Progress
}

// progressWriter forwards writes and reports the running total.
type progressWriter struct {
	io.Writer
	total    int64
	written  int64
	progress Progress
}

func (w *progressWriter) Write(p []byte) (int, error) {
	n, err := w.Writer.Write(p)
	w.written += int64(n)
	if w.progress != nil {
		w.progress(w.written, w.total)
	}
	return n, err
}

// Audio streams the file at url to disk and returns the written path.
// A partially written file is removed on failure.
func Audio(url string, options Options) (string, error) {
	name := options.Name
	if name == "" {
		name = filepath.Base(url)
	}
	name = util.SanitizeFilename(name)

	dir := options.Dir
	if dir == "" {
		dir = "."
	}
	if err := filesystem.API().MkdirAll(dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("create destination: %w", err)
	}
	path := filepath.Join(dir, name)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", constant.UserAgent)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: status %d", url, resp.StatusCode)
	}

	file, err := filesystem.API().Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}

	writer := &progressWriter{
		Writer:   file,
		total:    resp.ContentLength,
		progress: options.OnProgress,
	}

	if _, err := io.Copy(writer, resp.Body); err != nil {
		_ = file.Close()
		_ = filesystem.API().Remove(path)
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	if err := file.Close(); err != nil {
		return "", err
	}

	log.Infof("downloaded %s (%d bytes)", path, writer.written)
	return path, nil
}
