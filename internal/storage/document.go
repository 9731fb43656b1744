package storage

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// DefaultMaxBytes caps decoded uploads.
const DefaultMaxBytes = 5 << 20

var (
	ErrEmptyUpload       = errors.New("upload is empty")
	ErrUploadTooLarge    = errors.New("upload exceeds size limit")
	ErrUnsupportedUpload = errors.New("unsupported file type")
	ErrInvalidEncoding   = errors.New("upload is not valid base64")
)

var allowedTypes = map[string]string{
	"application/pdf": "pdf",
	"image/png":       "png",
	"image/jpeg":      "jpg",
	"image/webp":      "webp",
}

// Upload is a decoded and sniffed file.
type Upload struct {
	Data []byte
	MIME string
	Ext  string
}

// DecodeUpload accepts raw base64 or a data URL. The declared type of a
// data URL is ignored; the bytes are sniffed.
func DecodeUpload(payload string, maxBytes int64) (*Upload, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	payload = strings.TrimSpace(payload)
	if strings.HasPrefix(payload, "data:") {
		idx := strings.Index(payload, ",")
		if idx < 0 {
			return nil, ErrInvalidEncoding
		}
		payload = payload[idx+1:]
	}
	if payload == "" {
		return nil, ErrEmptyUpload
	}
	// Reject before decoding when the encoded form is already too large.
	if int64(base64.StdEncoding.DecodedLen(len(payload))) > maxBytes+3 {
		return nil, ErrUploadTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return nil, ErrInvalidEncoding
		}
	}
	if len(data) == 0 {
		return nil, ErrEmptyUpload
	}
	if int64(len(data)) > maxBytes {
		return nil, ErrUploadTooLarge
	}
	mime := http.DetectContentType(data)
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	ext, ok := allowedTypes[mime]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedUpload, mime)
	}
	return &Upload{Data: data, MIME: mime, Ext: ext}, nil
}

// ObjectKey builds "<kind>/<owner>/<uuid>.<ext>".
func ObjectKey(kind, owner, ext string) string {
	return fmt.Sprintf("%s/%s/%s.%s", kind, owner, uuid.NewString(), ext)
}
