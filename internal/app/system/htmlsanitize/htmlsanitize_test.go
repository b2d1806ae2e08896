package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/memberhub/internal/app/system/htmlsanitize"
)

func TestSanitize_StripsScripts(t *testing.T) {
	in := `<p>Hello</p><script>alert("x")</script>`
	out := htmlsanitize.Sanitize(in)
	if strings.Contains(out, "script") || strings.Contains(out, "alert") {
		t.Errorf("script survived: %q", out)
	}
	if !strings.Contains(out, "<p>Hello</p>") {
		t.Errorf("safe formatting lost: %q", out)
	}
}

func TestSanitize_StripsEventHandlers(t *testing.T) {
	out := htmlsanitize.Sanitize(`<a href="https://example.com" onclick="steal()">link</a>`)
	if strings.Contains(out, "onclick") {
		t.Errorf("event handler survived: %q", out)
	}
	if !strings.Contains(out, "link") {
		t.Errorf("link text lost: %q", out)
	}
}

func TestStripTags(t *testing.T) {
	out := htmlsanitize.StripTags(`  <b>Ada</b> <i>Lovelace</i>  `)
	if out != "Ada Lovelace" {
		t.Errorf("StripTags = %q", out)
	}

	out = htmlsanitize.StripTags(`<img src=x onerror=alert(1)>note`)
	if out != "note" {
		t.Errorf("StripTags = %q", out)
	}
}

func TestStripTags_PlainTextUnchanged(t *testing.T) {
	if out := htmlsanitize.StripTags("I enjoy woodworking and hiking"); out != "I enjoy woodworking and hiking" {
		t.Errorf("StripTags = %q", out)
	}
}
