// Package extract turns uploaded files and web pages into plain text. By
// contract every extractor returns an empty string when nothing readable is
// found instead of an error: the ingestion pipeline treats empty text as its
// own abort condition.
package extract

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"
)

var blankLines = regexp.MustCompile(`\n\s*\n+`)

// imageExtensions have no OCR collaborator; they yield no text rather than
// feed raw bytes into the chunker.
var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
	".tiff": true,
}

// FromFile extracts text from a stored upload, dispatching on extension.
// Unknown extensions are read as plain text when their content actually is
// text; binary content yields "".
func FromFile(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case ext == ".pdf":
		return FromPDF(content)
	case ext == ".html" || ext == ".htm":
		return FromHTML(bytes.NewReader(content))
	case imageExtensions[ext]:
		return ""
	default:
		if !utf8.Valid(content) || bytes.ContainsRune(content, 0) {
			return ""
		}
		return strings.TrimSpace(string(content))
	}
}

// FromPDF extracts the combined text of all pages.
func FromPDF(content []byte) string {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return ""
	}

	var buf bytes.Buffer
	numPages := r.NumPage()
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		buf.WriteString(text)
		if i < numPages {
			buf.WriteString("\n\n")
		}
	}
	return strings.TrimSpace(buf.String())
}

// noiseTags are elements whose text content is dropped during HTML
// extraction.
var noiseTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"header":   true,
	"footer":   true,
	"svg":      true,
	"nav":      true,
	"aside":    true,
}

// FromHTML extracts the visible text of an HTML document, one line per text
// node, with runs of blank lines collapsed.
func FromHTML(r io.Reader) string {
	doc, err := html.Parse(r)
	if err != nil {
		return ""
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && noiseTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				b.WriteString(t)
				b.WriteByte('\n')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(blankLines.ReplaceAllString(b.String(), "\n\n"))
}
