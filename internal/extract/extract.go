// Package extract turns uploaded policy documents into plain text for rating prompts.
package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"governance-backend/internal/shared/storage/object"
)

const (
	mimePDF      = "application/pdf"
	mimeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeText     = "text/plain"
	mimeMarkdown = "text/markdown"
	mimeZip      = "application/zip"
	mimeUnknown  = "application/octet-stream"

	docxBody = "word/document.xml"
)

// MaxDocumentBytes bounds how much of a stored document is read.
const MaxDocumentBytes = 20 << 20

type format struct {
	ext    string
	mime   string
	decode func([]byte) (string, error)
}

var formats = []format{
	{ext: ".pdf", mime: mimePDF, decode: decodePDF},
	{ext: ".docx", mime: mimeDOCX, decode: decodeDOCX},
	{ext: ".txt", mime: mimeText, decode: decodeUTF8},
	{ext: ".md", mime: mimeMarkdown, decode: decodeUTF8},
}

func formatByExt(fileName string) (format, bool) {
	ext := strings.ToLower(filepath.Ext(fileName))
	for _, f := range formats {
		if f.ext == ext {
			return f, true
		}
	}
	return format{}, false
}

func formatByMime(mime string) (format, bool) {
	for _, f := range formats {
		if f.mime == mime {
			return f, true
		}
	}
	return format{}, false
}

// Supported reports whether a file name has an extension this package can read.
func Supported(fileName string) bool {
	_, ok := formatByExt(fileName)
	return ok
}

// MimeFromName guesses a mime type from the file extension.
func MimeFromName(fileName string) string {
	if f, ok := formatByExt(fileName); ok {
		return f.mime
	}
	return mimeUnknown
}

// ExtractText reads a stored policy document and returns its text.
func ExtractText(ctx context.Context, store object.ObjectStore, key string, mimeType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	body, err := store.Open(ctx, key)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", key, err)
	}
	defer body.Close()

	raw, err := io.ReadAll(io.LimitReader(body, MaxDocumentBytes+1))
	if err != nil {
		return "", fmt.Errorf("extract %s: read: %w", key, err)
	}
	if len(raw) > MaxDocumentBytes {
		return "", fmt.Errorf("extract %s: document exceeds %d bytes", key, MaxDocumentBytes)
	}
	text, err := ExtractTextFromBytes(ctx, raw, mimeType, path.Base(key))
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", key, err)
	}
	return text, nil
}

// ExtractTextFromBytes decodes an in-memory document. The mime type wins over the
// file name unless it is empty or generic; zip payloads are sniffed for a docx body.
func ExtractTextFromBytes(ctx context.Context, data []byte, mimeType string, fileName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	mime := resolveMime(mimeType, fileName, data)
	f, ok := formatByMime(mime)
	if !ok {
		return "", fmt.Errorf("unsupported mime type: %s", mime)
	}
	return f.decode(data)
}

func resolveMime(mimeType, fileName string, data []byte) string {
	mime, _, _ := strings.Cut(mimeType, ";")
	mime = strings.ToLower(strings.TrimSpace(mime))
	switch mime {
	case "", mimeUnknown:
		return MimeFromName(fileName)
	case mimeZip:
		if zipHas(data, docxBody) {
			return mimeDOCX
		}
	}
	return mime
}

func zipHas(data []byte, name string) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	return zipEntry(zr, name) != nil
}

func zipEntry(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == name {
			return f
		}
	}
	return nil
}

func decodeUTF8(data []byte) (string, error) {
	if !utf8.Valid(data) {
		return "", errors.New("text document is not valid utf-8")
	}
	return strings.TrimSpace(string(data)), nil
}

func decodePDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("pdf: %w", err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("pdf: %w", err)
	}
	raw, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("pdf: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func decodeDOCX(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("docx: empty document")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("docx: %w", err)
	}
	entry := zipEntry(zr, docxBody)
	if entry == nil {
		return "", fmt.Errorf("docx: %s not found", docxBody)
	}
	rc, err := entry.Open()
	if err != nil {
		return "", fmt.Errorf("docx: %w", err)
	}
	defer rc.Close()
	return docxParagraphs(rc)
}

// docxParagraphs keeps character data and breaks lines at paragraph and break ends.
func docxParagraphs(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("docx: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			b.Write(t)
		case xml.EndElement:
			if (t.Name.Local == "p" || t.Name.Local == "br") && b.Len() > 0 {
				b.WriteByte('\n')
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}
