package media

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// TempPath returns a fresh scratch file path with the given extension.
// The file is not created; callers hand the path to external tools that
// create it themselves. An empty dir means the system temp directory.
func TempPath(dir, ext string) string {
	if dir == "" {
		dir = os.TempDir()
	}
	var b [12]byte
	_, _ = rand.Read(b[:])
	name := "clipcast-" + hex.EncodeToString(b[:])
	if ext != "" {
		name += "." + strings.TrimPrefix(ext, ".")
	}
	return filepath.Join(dir, name)
}

// WriteAtomic writes data to path via a sibling temp file and rename, so a
// reader never observes a partial file.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".clip-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// Discard removes path if it exists. A missing file is not an error; any
// other failure is returned so callers can log it.
func Discard(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ResolveClip maps a requested clip name to a regular file under dir.
// Returns "" when the name would escape the directory or the file
// does not exist.
func ResolveClip(dir, name string) string {
	if dir == "" || name == "" || !filepath.IsLocal(name) {
		return ""
	}
	full := filepath.Join(dir, name)
	if info, err := os.Stat(full); err == nil && info.Mode().IsRegular() {
		return full
	}
	return ""
}

// Detect sniffs the container format of an audio payload. The audio magics
// are checked ahead of the stdlib table, which misses bare MPEG frames and
// AIFF and reports different names for ogg and wav.
func Detect(data []byte) string {
	switch {
	case len(data) >= 3 && string(data[:3]) == "ID3":
		return "audio/mpeg"
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return "audio/mpeg"
	case len(data) >= 4 && string(data[:4]) == "OggS":
		return "audio/ogg"
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return "audio/wav"
	case len(data) >= 12 && string(data[:4]) == "FORM" && (string(data[8:12]) == "AIFF" || string(data[8:12]) == "AIFC"):
		return "audio/aiff"
	}
	return http.DetectContentType(data)
}
