package markdown

import (
	"strings"
	"testing"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		contains string
		absent   string
	}{
		{"script removed", `<p>hi</p><script>alert(1)</script>`, "<p>hi</p>", "<script"},
		{"event handler removed", `<img src="/a.png" onerror="alert(1)">`, `src="/a.png"`, "onerror"},
		{"javascript link removed", `<a href="javascript:alert(1)">x</a>`, "x", "javascript:"},
		{"class kept", `<div class="card">x</div>`, `class="card"`, ""},
		{"template actions kept", `<p>{{.Name}}</p>`, "{{.Name}}", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize(tt.html)
			if !strings.Contains(got, tt.contains) {
				t.Errorf("Sanitize(%q) = %q, want it to contain %q", tt.html, got, tt.contains)
			}
			if tt.absent != "" && strings.Contains(got, tt.absent) {
				t.Errorf("Sanitize(%q) = %q, should not contain %q", tt.html, got, tt.absent)
			}
		})
	}
}

func TestSanitizeKeepsHighlightedCode(t *testing.T) {
	html, err := ToHTML("```go\nfunc main() {}\n```")
	if err != nil {
		t.Fatalf("ToHTML: %v", err)
	}
	got := Sanitize(html)
	if !strings.Contains(got, "<pre") || !strings.Contains(got, "style=") {
		t.Errorf("highlighting lost after sanitizing: %q", got)
	}
}
