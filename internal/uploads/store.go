package uploads

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// URLPrefix is where the server exposes the upload directory.
const URLPrefix = "/uploads/"

var (
	ErrTooLarge        = errors.New("file exceeds the upload limit")
	ErrUnsupportedType = errors.New("only image and video files are allowed")
)

// Kind is the coarse media class of a stored file.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Saved describes a file written by the store.
type Saved struct {
	URL  string
	Kind Kind
	MIME string
}

// Store writes uploaded media under a directory with generated names.
type Store struct {
	dir      string
	maxBytes int64
}

// NewStore creates the directory when missing.
func NewStore(dir string, maxBytes int64) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir, maxBytes: maxBytes}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Save sniffs the file content, rejects anything that is not an image or a
// video, and stores it under a random name keeping the detected extension.
func (s *Store) Save(fh *multipart.FileHeader, allowVideo bool) (*Saved, error) {
	if s.maxBytes > 0 && fh.Size > s.maxBytes {
		return nil, ErrTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return nil, fmt.Errorf("detect media type: %w", err)
	}
	var kind Kind
	switch {
	case strings.HasPrefix(mtype.String(), "image/"):
		kind = KindImage
	case allowVideo && strings.HasPrefix(mtype.String(), "video/"):
		kind = KindVideo
	default:
		return nil, ErrUnsupportedType
	}

	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}

	name := uuid.NewString() + mtype.Extension()
	dst, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	limit := s.maxBytes
	if limit <= 0 {
		limit = fh.Size
	}
	n, err := io.Copy(dst, io.LimitReader(src, limit+1))
	if err != nil {
		os.Remove(dst.Name())
		return nil, fmt.Errorf("write file: %w", err)
	}
	if s.maxBytes > 0 && n > s.maxBytes {
		os.Remove(dst.Name())
		return nil, ErrTooLarge
	}

	return &Saved{URL: URLPrefix + name, Kind: kind, MIME: mtype.String()}, nil
}

// Remove deletes a file previously returned by Save. Unknown or foreign paths
// are ignored.
func (s *Store) Remove(url string) error {
	if !strings.HasPrefix(url, URLPrefix) {
		return nil
	}
	name := filepath.Base(strings.TrimPrefix(url, URLPrefix))
	if name == "." || name == "/" {
		return nil
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
