// Package upload stores profile photo bytes in a scratch directory that
// lives for the duration of the process.
package upload

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/iliyamo/mock-booking-api/internal/repository"
)

// DefaultChunkSize bounds the buffer used to stream an upload to disk.
const DefaultChunkSize = 32 * 1024

// Scratch is a directory of uploaded files named by random tokens.
type Scratch struct {
	dir   string
	chunk int
	owned bool // dir was created here and is removed by Close
}

// NewScratch creates dir (and parents) if needed.  A directory that already
// existed is left in place by Close.
func NewScratch(dir string, chunkSize int) (*Scratch, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	_, statErr := os.Stat(dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Scratch{dir: dir, chunk: chunkSize, owned: errors.Is(statErr, fs.ErrNotExist)}, nil
}

// NewTempScratch uses a fresh directory under the OS temp dir.
func NewTempScratch(chunkSize int) (*Scratch, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	dir, err := os.MkdirTemp("", "profile-photos-")
	if err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Scratch{dir: dir, chunk: chunkSize, owned: true}, nil
}

func (s *Scratch) Dir() string { return s.dir }

// Path returns the location of a stored reference.
func (s *Scratch) Path(ref string) string { return filepath.Join(s.dir, filepath.Base(ref)) }

// Ready reports whether the scratch directory still exists.
func (s *Scratch) Ready() error {
	info, err := os.Stat(s.dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("upload dir: %w", repository.ErrStorageUnavailable)
	}
	return nil
}

// Save streams r into a new file and returns its stored name.  Only the
// extension of filename is kept; the base name is a fresh UUID.  On any I/O
// error the partial file is removed and ErrUploadFailed is returned.
func (s *Scratch) Save(filename string, r io.Reader) (string, error) {
	if err := s.Ready(); err != nil {
		return "", err
	}
	ref := uuid.NewString() + filepath.Ext(filepath.Base(filename))
	path := filepath.Join(s.dir, ref)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("upload dir: %w", repository.ErrStorageUnavailable)
		}
		log.Printf("upload: create %s failed: %v", ref, err)
		return "", fmt.Errorf("photo %q: %w", filepath.Base(filename), repository.ErrUploadFailed)
	}

	buf := make([]byte, s.chunk)
	_, err = io.CopyBuffer(onlyWriter{f}, onlyReader{r}, buf)
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		log.Printf("upload: stream %s failed: %v", ref, err)
		s.Discard(ref)
		return "", fmt.Errorf("photo %q: %w", filepath.Base(filename), repository.ErrUploadFailed)
	}
	return ref, nil
}

// Discard removes a stored file.  Missing files are ignored.
func (s *Scratch) Discard(ref string) {
	if ref == "" {
		return
	}
	if err := os.Remove(s.Path(ref)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("upload: discard %s failed: %v", ref, err)
	}
}

// Close removes the scratch directory if NewScratch created it.  Failure is
// logged, never returned.
func (s *Scratch) Close() {
	if !s.owned {
		return
	}
	if err := os.RemoveAll(s.dir); err != nil {
		log.Printf("upload: remove scratch dir failed: %v", err)
	}
}

// onlyWriter and onlyReader hide ReadFrom/WriteTo so io.CopyBuffer really
// goes through the fixed-size buffer.
type onlyWriter struct{ w io.Writer }

func (o onlyWriter) Write(p []byte) (int, error) { return o.w.Write(p) }

type onlyReader struct{ r io.Reader }

func (o onlyReader) Read(p []byte) (int, error) { return o.r.Read(p) }
