package validators

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	pkgerrors "github.com/gmlima14/irf/pkg/errors"
)

// Upload is one file received through a multipart form.
type Upload struct {
	Name string
	Data []byte
}

// ReadUpload reads the multipart file stored under field, rejecting bodies
// larger than maxBytes.
func ReadUpload(w http.ResponseWriter, r *http.Request, field string, maxBytes int64) (Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		if isTooLarge(err) {
			return Upload{}, pkgerrors.Wrap(pkgerrors.CodeTooLarge, err, fmt.Sprintf("upload exceeds %d MB", maxBytes>>20)).
				WithDetails(map[string]any{"max_bytes": maxBytes})
		}
		return Upload{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "request must be multipart/form-data").
			WithDetails(map[string]any{"field": field})
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		return Upload{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, fmt.Sprintf("multipart field %q is required", field)).
			WithDetails(map[string]any{"field": field})
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return Upload{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "upload could not be read")
	}
	if len(data) == 0 {
		return Upload{}, pkgerrors.New(pkgerrors.CodeValidation, "uploaded file is empty").
			WithDetails(map[string]any{"field": field})
	}
	return Upload{Name: header.Filename, Data: data}, nil
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
