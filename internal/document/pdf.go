// Package document inspects uploaded plan files before they are handed to the parser.
package document

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"rsc.io/pdf"
)

// ErrNotPDF means the file could not be read as a PDF document.
var ErrNotPDF = errors.New("file is not a readable PDF")

// headerWindow is how far into the file readers look for the %PDF- marker.
const headerWindow = 1024

var pdfMagic = []byte("%PDF-")

// CheckPDFHeader reports ErrNotPDF unless the %PDF- marker appears near the
// start of the file. It says nothing about the version or the body.
func CheckPDFHeader(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	head := make([]byte, headerWindow)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return err
	}
	if !bytes.Contains(head[:n], pdfMagic) {
		return fmt.Errorf("%w: missing %%PDF- header", ErrNotPDF)
	}
	return nil
}

// PDFInfo describes an uploaded plan.
type PDFInfo struct {
	Pages int
	Title string
}

// InspectPDF opens path and counts its pages. A document without pages is
// rejected. The reader only understands PDF 1.x with a clean trailer, so
// callers treat a failure here as missing metadata rather than a bad file.
func InspectPDF(path string) (info PDFInfo, err error) {
	f, err := os.Open(path)
	if err != nil {
		return PDFInfo{}, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return PDFInfo{}, err
	}

	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			info, err = PDFInfo{}, fmt.Errorf("%w: %v", ErrNotPDF, r)
		}
	}()

	doc, err := pdf.NewReader(f, st.Size())
	if err != nil {
		return PDFInfo{}, fmt.Errorf("%w: %v", ErrNotPDF, err)
	}
	info.Pages = doc.NumPage()
	if info.Pages == 0 {
		return PDFInfo{}, fmt.Errorf("%w: no pages", ErrNotPDF)
	}
	info.Title = doc.Trailer().Key("Info").Key("Title").Text()
	return info, nil
}
