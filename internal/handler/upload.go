package handler

import (
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/teammanager/server-go/internal/config"
	"github.com/teammanager/server-go/internal/errors"
)

// readUpload accepts either a multipart form with a single file field or a
// raw body, capped at the upload limit. The returned filename is empty for
// raw bodies.
func readUpload(r *http.Request) ([]byte, string, error) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err == nil && strings.HasPrefix(mediaType, "multipart/") {
		return readMultipartUpload(r)
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, config.MaxUploadBytes))
	if err != nil {
		return nil, "", errors.ValidationError("Datei konnte nicht gelesen werden.")
	}
	return data, "", nil
}

func readMultipartUpload(r *http.Request) ([]byte, string, error) {
	if err := r.ParseMultipartForm(config.MaxUploadBytes); err != nil {
		return nil, "", errors.ValidationError("Datei konnte nicht gelesen werden.")
	}

	for _, headers := range r.MultipartForm.File {
		if len(headers) == 0 {
			continue
		}
		header := headers[0]
		file, err := header.Open()
		if err != nil {
			return nil, "", errors.ValidationError("Datei konnte nicht gelesen werden.")
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, config.MaxUploadBytes))
		if err != nil {
			return nil, "", errors.ValidationError("Datei konnte nicht gelesen werden.")
		}
		return data, header.Filename, nil
	}
	return nil, "", errors.ValidationError("Keine Datei hochgeladen.")
}
