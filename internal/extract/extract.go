// Package extract pulls plain text out of uploaded documents for admission
// checking and snippet storage.
package extract

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// TextExtractor produces the plain text of a document. The service depends on
// this interface so tests can substitute canned text.
type TextExtractor interface {
	Text(r io.ReaderAt, size int64) (string, error)
}

// maxPageNodes bounds the page-tree walk. A malformed tree whose nodes
// reference themselves or each other would otherwise never terminate, so the
// tree is checked with this visit budget before any page is read.
const maxPageNodes = 4096

type pdfExtractor struct{}

// NewPDF returns a TextExtractor for PDF documents.
func NewPDF() TextExtractor {
	return pdfExtractor{}
}

func (pdfExtractor) Text(r io.ReaderAt, size int64) (string, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	budget := maxPageNodes
	if err := walkPageTree(reader.Trailer().Key("Root").Key("Pages"), &budget); err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	var b strings.Builder
	if _, err := io.Copy(&b, content); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return b.String(), nil
}

// walkPageTree visits the /Kids tree, spending one unit of budget per node.
// Exhausting the budget means the tree is cyclic or absurdly large; either
// way the document is not readable as a report.
func walkPageTree(node pdf.Value, budget *int) error {
	if *budget <= 0 {
		return errors.New("malformed page tree")
	}
	*budget--
	kids := node.Key("Kids")
	for i := 0; i < kids.Len(); i++ {
		if err := walkPageTree(kids.Index(i), budget); err != nil {
			return err
		}
	}
	return nil
}
