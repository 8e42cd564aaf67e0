package blogservice

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/net/html"
)

func TestSanitizeBody(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "no script tag",
			input: "<p>Hello, World!</p>",
			want:  "<p>Hello, World!</p>",
		},
		{
			name:  "script tag",
			input: "<script>alert('Hello, World!');</script>",
			want:  "",
		},
		{
			name:  "multiline script",
			input: "<p>a</p><SCRIPT SRC=\"evil.js\">\nvar x = 1;\n</SCRIPT><p>b</p>",
			want:  "<p>a</p><p>b</p>",
		},
		{
			name:  "event handlers",
			input: `<img src="x.png" onerror="alert(1)"><a href="/" ONCLICK='go()'>link</a>`,
			want:  `<img src="x.png"><a href="/">link</a>`,
		},
		{
			name:  "unquoted handler",
			input: `<p onmouseover=steal()>hi</p>`,
			want:  `<p>hi</p>`,
		},
		{
			name:  "formatting survives",
			input: `<h2>Title</h2><ul><li><strong>bold</strong></li></ul><a href="https://example.com">site</a>`,
			want:  `<h2>Title</h2><ul><li><strong>bold</strong></li></ul><a href="https://example.com">site</a>`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, sanitizeBody(tc.input))
		})
	}
}

// activeContent lists the elements and attributes in markup that a browser
// could execute.
func activeContent(markup string) []string {
	var found []string

	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return found
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			switch tok.Data {
			case "script", "iframe", "svg", "object", "embed", "style":
				found = append(found, "<"+tok.Data+">")
			}
			for _, attr := range tok.Attr {
				key := strings.ToLower(attr.Key)
				val := strings.ToLower(strings.TrimSpace(attr.Val))
				switch {
				case strings.HasPrefix(key, "on"), key == "srcdoc", key == "style":
					found = append(found, tok.Data+"@"+key)
				case (key == "href" || key == "src") && (strings.HasPrefix(val, "javascript:") || strings.HasPrefix(val, "data:")):
					found = append(found, tok.Data+"@"+key+"="+val)
				}
			}
		}
	}
}

func TestSanitizeBody_StripsActiveContent(t *testing.T) {
	inputs := []string{
		`<img/src=x/onerror=alert(1)>`,
		`<svg/onload=alert(1)>`,
		`<a href="javascript:alert(1)">x</a>`,
		`<a href=" JaVaScRiPt:alert(1)">x</a>`,
		`<iframe srcdoc="<script>alert(1)</script>"></iframe>`,
		`<img src="data:text/html;base64,PHNjcmlwdD4=">`,
		`<p style="background:url(javascript:alert(1))">x</p>`,
		`<object data="evil.swf"></object><embed src="evil.swf">`,
		`<scr<script>ipt>alert(1)</script>`,
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			assert.Empty(t, activeContent(sanitizeBody(input)))
		})
	}

	// sanity check of the detector itself
	assert.NotEmpty(t, activeContent(`<svg/onload=alert(1)>`))
}
