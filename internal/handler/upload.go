package handler

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/pawws/pawws/internal/service"
	"github.com/pawws/pawws/internal/validation"
)

var errUploadTooLarge = errors.New("upload too large")

// parseMultipart bounds the body to maxSize and parses the form.
func parseMultipart(w http.ResponseWriter, r *http.Request, maxSize int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)
	err := r.ParseMultipartForm(maxSize)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errUploadTooLarge
		}
		return fmt.Errorf("%w: invalid multipart form", service.ErrInvalidInput)
	}
	return nil
}

// formFile returns the named upload and its sniffed content type. A missing
// file yields a nil file and no error so the service can report it.
func formFile(r *http.Request, field string, constraints ...validation.FileConstraints) (multipart.File, string, error) {
	file, header, err := r.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
	}

	contentType, err := validation.DetectFile(header, constraints...)
	if err != nil {
		file.Close()
		return nil, "", fmt.Errorf("%w: %v", service.ErrInvalidInput, err)
	}

	return file, contentType, nil
}

func writeUploadError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, errUploadTooLarge) {
		writeDetail(w, http.StatusRequestEntityTooLarge, "Upload too large")
		return
	}
	writeError(w, r, err)
}
