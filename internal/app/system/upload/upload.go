// internal/app/system/upload/upload.go

// Package upload accepts base64 data-URL payloads (photos, PDFs) and stores
// them at a deterministic path keyed by the owning record's id, so
// re-uploading replaces the previous file instead of leaking orphans.
package upload

import (
	"bytes"
	"context"
	"encoding/base64"
	"strings"

	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/waffle/pantry/storage"
)

// MaxSize caps a decoded upload at 5 MB.
const MaxSize = 5 << 20

// extByMIME maps the accepted MIME types to file extensions. Anything else
// is rejected.
var extByMIME = map[string]string{
	"image/jpeg":      "jpg",
	"image/png":       "png",
	"image/webp":      "webp",
	"application/pdf": "pdf",
}

// DataURL is a decoded data: payload.
type DataURL struct {
	MIME string
	Data []byte
}

// ParseDataURL decodes a `data:<mime>;base64,<data>` envelope. Returns a
// ValidationError for anything that does not match the envelope, an
// unsupported MIME type, or an oversized payload.
func ParseDataURL(raw string) (DataURL, error) {
	rest, ok := strings.CutPrefix(raw, "data:")
	if !ok {
		return DataURL{}, apperr.Validationf("expected data:<mime>;base64,<data> payload")
	}
	meta, b64, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return DataURL{}, apperr.Validationf("expected data:<mime>;base64,<data> payload")
	}
	mime := strings.TrimSuffix(meta, ";base64")
	if _, supported := extByMIME[mime]; !supported {
		return DataURL{}, apperr.Validationf("unsupported content type %q", mime)
	}

	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return DataURL{}, apperr.Validationf("invalid base64 content")
	}
	if len(data) == 0 {
		return DataURL{}, apperr.Validationf("empty upload")
	}
	if len(data) > MaxSize {
		return DataURL{}, apperr.Validationf("upload exceeds %d bytes", MaxSize)
	}

	return DataURL{MIME: mime, Data: data}, nil
}

// Put stores the decoded payload under <prefix>/<recordID>.<ext> and returns
// the public URL.
func Put(ctx context.Context, store storage.Store, prefix, recordID string, d DataURL) (string, error) {
	path := prefix + "/" + recordID + "." + extByMIME[d.MIME]
	opts := &storage.PutOptions{ContentType: d.MIME}
	if err := store.Put(ctx, path, bytes.NewReader(d.Data), opts); err != nil {
		return "", apperr.Server(err)
	}
	return store.URL(path), nil
}
