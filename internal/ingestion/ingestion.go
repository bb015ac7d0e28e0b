// Package ingestion turns uploaded files into document text. Only plain text
// is accepted; other formats are reported as unsupported.
package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"

	"github.com/turtacn/ClauseWise/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ClauseWise/pkg/errors"
	"github.com/turtacn/ClauseWise/pkg/types/legal"
)

// DefaultMaxBytes bounds an upload when no limit is configured.
const DefaultMaxBytes int64 = 10 << 20

var plainTextExtensions = map[string]bool{
	"":      true,
	".txt":  true,
	".text": true,
	".md":   true,
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Extractor reads plain-text documents.
type Extractor struct {
	maxBytes int64
	logger   logging.Logger
}

// New creates an Extractor. maxBytes <= 0 means DefaultMaxBytes.
func New(maxBytes int64, logger logging.Logger) *Extractor {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Extractor{maxBytes: maxBytes, logger: logger.Named("ingestion")}
}

// Supported reports whether filename has a plain-text extension.
func Supported(filename string) bool {
	return plainTextExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Extract reads r as the content of filename. Text that is not valid UTF-8
// is decoded as Windows-1252. The result is NFC-normalized with "\n" line
// endings; blank content is a failure.
func (e *Extractor) Extract(ctx context.Context, filename string, r io.Reader) legal.IngestionResult {
	if err := ctx.Err(); err != nil {
		return failure(err.Error())
	}
	if !Supported(filename) {
		return failure(fmt.Sprintf("unsupported file format %q: only plain text is accepted", filepath.Ext(filename)))
	}

	raw, err := io.ReadAll(io.LimitReader(r, e.maxBytes+1))
	if err != nil {
		return failure("read failed: " + err.Error())
	}
	if int64(len(raw)) > e.maxBytes {
		return failure(fmt.Sprintf("file exceeds %d bytes", e.maxBytes))
	}

	raw = bytes.TrimPrefix(raw, utf8BOM)
	var text string
	if utf8.Valid(raw) {
		text = string(raw)
	} else {
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(raw)
		if err != nil {
			return failure("decode failed: " + err.Error())
		}
		e.logger.Debug("decoded non-UTF-8 upload as windows-1252", logging.String("filename", filename))
		text = string(decoded)
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = norm.NFC.String(text)
	if strings.TrimSpace(text) == "" {
		return failure("no text content found")
	}
	return legal.IngestionResult{Success: true, Text: text}
}

// Extract uses a default Extractor.
func Extract(ctx context.Context, filename string, r io.Reader) legal.IngestionResult {
	return New(0, nil).Extract(ctx, filename, r)
}

// Err converts a failed result into an INGESTION_FAILED error, or nil.
func Err(res legal.IngestionResult) error {
	if res.Success {
		return nil
	}
	return errors.New(errors.ErrCodeIngestionFailed, res.Error)
}

func failure(msg string) legal.IngestionResult {
	return legal.IngestionResult{Success: false, Error: msg}
}

//Personal.AI order the ending
