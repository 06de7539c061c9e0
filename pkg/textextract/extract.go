// Package textextract pulls plain text out of uploaded documents so it can
// prefill a field or the editor.
package textextract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

type ExtractedText struct {
	Content string
	Pages   int
	Type    string
}

type format struct {
	kind    string
	aliases []string
	read    func(io.ReaderAt, int64) (string, int, error)
}

var formats = []format{
	{kind: "pdf", aliases: []string{".pdf", "application/pdf"}, read: readPDF},
	{kind: "docx", aliases: []string{".docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"}, read: readDOCX},
	{kind: "txt", aliases: []string{".txt", "text/plain"}, read: readTXT},
}

func lookup(fileType string) (format, bool) {
	t := strings.ToLower(strings.TrimSpace(fileType))
	for _, f := range formats {
		if t == f.kind {
			return f, true
		}
		for _, a := range f.aliases {
			if t == a {
				return f, true
			}
		}
	}
	return format{}, false
}

// Extract reads data of the given type (extension or MIME type). Runs of
// whitespace in the result collapse to single spaces, except that
// paragraph breaks from PDFs and DOCX files survive as newlines.
func Extract(data io.ReaderAt, size int64, fileType string) (*ExtractedText, error) {
	f, ok := lookup(fileType)
	if !ok {
		return nil, fmt.Errorf("unsupported file type: %s", fileType)
	}
	content, pages, err := f.read(data, size)
	if err != nil {
		return nil, err
	}
	return &ExtractedText{Content: content, Pages: pages, Type: f.kind}, nil
}

// ExtractBytes picks the type from name's extension.
func ExtractBytes(name string, data []byte) (*ExtractedText, error) {
	return Extract(bytes.NewReader(data), int64(len(data)), filepath.Ext(name))
}

func SupportedTypes() []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		out = append(out, f.aliases[0])
	}
	return out
}

// Pages that fail to decode are skipped; the page count still reports the
// document's total.
func readPDF(data io.ReaderAt, size int64) (string, int, error) {
	r, err := pdf.NewReader(data, size)
	if err != nil {
		return "", 0, fmt.Errorf("open PDF: %w", err)
	}

	total := r.NumPage()
	var lines []string
	for i := 1; i <= total; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		if text = collapse(text); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n"), total, nil
}

func readDOCX(data io.ReaderAt, size int64) (string, int, error) {
	zr, err := zip.NewReader(data, size)
	if err != nil {
		return "", 0, fmt.Errorf("open DOCX: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", 0, fmt.Errorf("open document.xml: %w", err)
		}
		defer rc.Close()
		paras, err := paragraphs(rc)
		if err != nil {
			return "", 0, fmt.Errorf("parse document.xml: %w", err)
		}
		return strings.Join(paras, "\n"), 1, nil
	}
	return "", 0, errors.New("open DOCX: word/document.xml not found")
}

// paragraphs returns the text of every non-blank <w:p>, in order.
func paragraphs(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)
	var (
		out []string
		cur strings.Builder
	)
	flush := func() {
		if s := collapse(cur.String()); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.CharData:
			cur.Write(t)
		case xml.EndElement:
			if t.Name.Local == "p" {
				flush()
			}
		}
	}
	flush()
	return out, nil
}

func readTXT(data io.ReaderAt, size int64) (string, int, error) {
	b, err := io.ReadAll(io.NewSectionReader(data, 0, size))
	if err != nil {
		return "", 0, fmt.Errorf("read TXT: %w", err)
	}
	return string(bytes.TrimSpace(b)), 1, nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
