package constants

import (
	"fmt"
	"strings"
)

// PDFExt is the only input extension the pipeline accepts.
const PDFExt = "pdf"

// PageFileSuffix separates the document name from the page number in output files.
const PageFileSuffix = "-Page"

// IsPDFExt reports whether ext (with or without the dot) names a PDF.
func IsPDFExt(ext string) bool {
	return strings.EqualFold(strings.TrimPrefix(ext, "."), PDFExt)
}

// PageFileName returns "<doc>-Page<n>.txt".
func PageFileName(doc string, page int) string {
	return fmt.Sprintf("%s%s%d.txt", doc, PageFileSuffix, page)
}
