package services

import (
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/anonto42/effisocial/backend/internal/uploads"
)

// MediaStore persists uploaded files. *uploads.Store satisfies it.
type MediaStore interface {
	Save(fh *multipart.FileHeader, allowVideo bool) (*uploads.Saved, error)
	Remove(url string) error
}

// saveMedia stores an optional upload and maps store failures onto
// validation errors.
func saveMedia(store MediaStore, fh *multipart.FileHeader, allowVideo bool) (*uploads.Saved, error) {
	if fh == nil {
		return nil, nil
	}
	if store == nil {
		return nil, Validation("file uploads are not enabled")
	}
	saved, err := store.Save(fh, allowVideo)
	switch {
	case err == nil:
		return saved, nil
	case errors.Is(err, uploads.ErrTooLarge), errors.Is(err, uploads.ErrUnsupportedType):
		return nil, Validation("%s", err.Error())
	default:
		return nil, fmt.Errorf("save upload: %w", err)
	}
}

func removeMedia(store MediaStore, url string) {
	if store == nil || url == "" {
		return
	}
	_ = store.Remove(url)
}
