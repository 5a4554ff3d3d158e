// Package testutil builds fixtures shared by package tests: minimal PDFs,
// PNG rasters and a stub for the pdftoppm binary.
package testutil

import (
	"bytes"
	"fmt"
	"strings"
)

// PDF returns a syntactically valid PDF with the given number of empty pages.
// Object offsets in the xref table are exact, so strict parsers accept it.
func PDF(pages int) []byte {
	return build(make([]string, pages))
}

// TextPDF returns a one-page letter-size PDF that prints lines in 36pt
// Helvetica, one below the other from the top left. Real rasterizers render
// it, which makes it a known-text fixture for end-to-end OCR.
func TextPDF(lines ...string) []byte {
	var cs strings.Builder
	cs.WriteString("BT\n/F1 36 Tf\n44 TL\n72 700 Td\n")
	for _, line := range lines {
		fmt.Fprintf(&cs, "(%s) Tj T*\n", pdfEscape(line))
	}
	cs.WriteString("ET\n")
	return build([]string{cs.String()})
}

// build lays out a catalog, a page tree and one page per entry of contents.
// A non-empty entry becomes the page's content stream and gets a Helvetica
// font resource.
func build(contents []string) []byte {
	pages := len(contents)
	var objects []string
	objects = append(objects, "<< /Type /Catalog /Pages 2 0 R >>", "")

	kids := make([]string, pages)
	var extra []string
	next := pages + 3 // object number after catalog, tree and pages
	for i, content := range contents {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
		if content == "" {
			objects = append(objects, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
			continue
		}
		stream, font := next, next+1
		next += 2
		objects = append(objects, fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>",
			font, stream))
		extra = append(extra,
			fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(content), content),
			"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		)
	}
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages)
	objects = append(objects, extra...)

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, body := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, body)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func pdfEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`).Replace(s)
}

// CorruptPDF is a buffer that claims to be a PDF but has no usable structure.
func CorruptPDF() []byte {
	return []byte("%PDF-1.4\n\x00\x01garbage without xref or trailer\n")
}
