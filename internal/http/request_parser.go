package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"gastos/internal/core"
	"gastos/internal/readers"
)

// multipartOverhead is the slack allowed on top of the file size for the
// multipart envelope and the other form fields.
const multipartOverhead = 64 << 10

const maxIdentifierLen = 120

var (
	ErrMissingFile          = errors.New("missing file")
	ErrEmptyFile            = errors.New("empty file")
	ErrFileTooLarge         = errors.New("file too large")
	ErrUnsupportedExtension = errors.New("unsupported file extension")
	ErrIdentifierTooLong    = errors.New("identifier too long")
)

// UploadParams is a parsed POST /upload form.
type UploadParams struct {
	Bank   readers.Bank
	Source readers.Source
}

// ParseUpload reads the multipart form of an upload. The bank value is only
// normalized here; an unknown bank is reported by the import itself.
func ParseUpload(w http.ResponseWriter, r *http.Request, maxBytes int64, allowed []string) (UploadParams, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return UploadParams{}, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, maxBytes)
		}
		if errors.Is(err, http.ErrNotMultipart) || errors.Is(err, http.ErrMissingBoundary) {
			return UploadParams{}, ErrMissingFile
		}
		return UploadParams{}, fmt.Errorf("parse upload form: %w", err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return UploadParams{}, ErrMissingFile
	}
	defer file.Close()

	name := filepath.Base(sanitizeInput(header.Filename))
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if !slices.Contains(allowed, ext) {
		return UploadParams{}, fmt.Errorf("%w %q: accepted %s", ErrUnsupportedExtension, ext, strings.Join(allowed, ", "))
	}
	if header.Size > maxBytes {
		return UploadParams{}, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, maxBytes)
	}

	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return UploadParams{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return UploadParams{}, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, maxBytes)
	}
	if len(data) == 0 {
		return UploadParams{}, ErrEmptyFile
	}

	return UploadParams{
		Bank:   readers.Bank(strings.ToLower(sanitizeInput(r.FormValue("bank")))),
		Source: readers.Source{Name: name, Data: data},
	}, nil
}

// ParseFilter builds the report filter from the q and view query values.
// Surrounding spaces in q are kept: " store" does not match "Bookstore".
func ParseFilter(query url.Values) core.Filter {
	return core.Filter{
		Search: stripControl(query.Get("q")),
		View:   core.ParseView(query.Get("view")),
	}
}

// ParseLimit reads a positive limit query value, capped at ceiling.
func ParseLimit(query url.Values, def, ceiling int) int {
	n, err := strconv.Atoi(strings.TrimSpace(query.Get("limit")))
	if err != nil || n < 1 {
		return def
	}
	return min(n, ceiling)
}

// ValidateIdentifier trims and bounds a user supplied identifier.
func ValidateIdentifier(s string) (string, error) {
	s = sanitizeInput(s)
	if utf8.RuneCountInString(s) > maxIdentifierLen {
		return "", fmt.Errorf("%w: at most %d characters", ErrIdentifierTooLong, maxIdentifierLen)
	}
	return s, nil
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, 1<<20))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if strings.HasPrefix(p.contentType, "application/json") || p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a sanitized string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput trims s and removes control characters.
func sanitizeInput(s string) string {
	return stripControl(strings.TrimSpace(s))
}

// stripControl removes control characters other than tab and newlines.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
