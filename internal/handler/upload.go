package handler

import (
	"net/http"

	"github.com/screenpatron/screen-patron/internal/apperror"
	"github.com/screenpatron/screen-patron/internal/storage"
)

// savePhoto pulls the "photo" file out of a multipart request and writes it
// to the store, returning the stored public path. All failure modes are the
// client's fault, so everything maps to a validation error.
func savePhoto(r *http.Request, store *storage.LocalStore) (string, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxPhotoSize)
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		return "", apperror.ValidationFailed("photo", "expected a multipart upload of at most 10 MB")
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		return "", apperror.ValidationFailed("photo", "missing file field \"photo\"")
	}
	defer file.Close()

	path, err := store.Save(file, header.Filename)
	if err != nil {
		return "", apperror.ValidationFailed("photo",
			"unsupported image type; use jpg, jpeg, png, gif, or webp")
	}
	return path, nil
}
