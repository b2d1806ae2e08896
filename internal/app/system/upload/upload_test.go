package upload_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/dalemusser/memberhub/internal/app/system/apperr"
	"github.com/dalemusser/memberhub/internal/app/system/upload"
)

func dataURL(mime string, payload []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(payload)
}

func TestParseDataURL(t *testing.T) {
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	d, err := upload.ParseDataURL(dataURL("image/jpeg", payload))
	if err != nil {
		t.Fatalf("ParseDataURL failed: %v", err)
	}
	if d.MIME != "image/jpeg" {
		t.Errorf("mime = %q", d.MIME)
	}
	if string(d.Data) != string(payload) {
		t.Errorf("data = %x", d.Data)
	}
}

func TestParseDataURL_AcceptedTypes(t *testing.T) {
	for _, mime := range []string{"image/jpeg", "image/png", "image/webp", "application/pdf"} {
		if _, err := upload.ParseDataURL(dataURL(mime, []byte("x"))); err != nil {
			t.Errorf("%s rejected: %v", mime, err)
		}
	}
}

func TestParseDataURL_Rejections(t *testing.T) {
	cases := []struct {
		name, raw string
	}{
		{"no scheme", base64.StdEncoding.EncodeToString([]byte("x"))},
		{"no comma", "data:image/png;base64"},
		{"not base64 marker", "data:image/png," + base64.StdEncoding.EncodeToString([]byte("x"))},
		{"unsupported mime", dataURL("image/gif", []byte("x"))},
		{"svg rejected", dataURL("image/svg+xml", []byte("<svg/>"))},
		{"bad base64", "data:image/png;base64,!!!!"},
		{"empty payload", "data:image/png;base64,"},
	}
	for _, c := range cases {
		_, err := upload.ParseDataURL(c.raw)
		if !apperr.IsKind(err, apperr.KindValidation) {
			t.Errorf("%s: got %v, want validation error", c.name, err)
		}
	}
}

func TestParseDataURL_Oversized(t *testing.T) {
	big := strings.Repeat("A", upload.MaxSize+1)
	_, err := upload.ParseDataURL(dataURL("image/png", []byte(big)))
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("oversized payload: got %v, want validation error", err)
	}
}
