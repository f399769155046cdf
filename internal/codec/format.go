package codec

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

// Format names a spreadsheet encoding.
type Format string

const (
	XLSX Format = "xlsx"
	XLS  Format = "xls"
	CSV  Format = "csv"
	JSON Format = "json"
)

// MIME types accepted for upload.
const (
	MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MIMEXLS  = "application/vnd.ms-excel"
	MIMECSV  = "text/csv"
	MIMEJSON = "application/json"

	mimeOctetStream = "application/octet-stream"
)

var uploadFormats = []Format{XLSX, XLS, CSV}

var exportFormats = []Format{XLSX, XLS, CSV, JSON}

// UploadFormats returns the formats a user may upload.
func UploadFormats() []Format {
	return append([]Format(nil), uploadFormats...)
}

// ExportFormats returns every format Encode supports.
func ExportFormats() []Format {
	return append([]Format(nil), exportFormats...)
}

func (f Format) String() string {
	return string(f)
}

// Valid reports whether f is one of the four known formats.
func (f Format) Valid() bool {
	switch f {
	case XLSX, XLS, CSV, JSON:
		return true
	}
	return false
}

// Uploadable reports whether f may be uploaded.
func (f Format) Uploadable() bool {
	switch f {
	case XLSX, XLS, CSV:
		return true
	}
	return false
}

// ParseFormat parses a format name such as "xlsx" or ".CSV".
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")))
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
	return f, nil
}

// FormatFromFilename returns the format named by the file extension.
func FormatFromFilename(name string) (Format, bool) {
	ext := filepath.Ext(name)
	if ext == "" {
		return "", false
	}
	f, err := ParseFormat(ext)
	if err != nil {
		return "", false
	}
	return f, true
}

// FormatFromMIME returns the upload format for a MIME type. Parameters such
// as "; charset=utf-8" are ignored.
func FormatFromMIME(mimeType string) (Format, bool) {
	mt, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return "", false
	}
	switch mt {
	case MIMEXLSX:
		return XLSX, true
	case MIMEXLS:
		return XLS, true
	case MIMECSV:
		return CSV, true
	}
	return "", false
}

// Detect picks the upload format for a file.
//
// The MIME type must be one of the three accepted upload types. Browsers
// often send an empty type or application/octet-stream; in that case the
// file extension alone decides. When both are present the extension names
// the format, since Windows reports .csv files as application/vnd.ms-excel.
// Anything else is a *ValidationError.
func Detect(filename, mimeType string) (Format, error) {
	ext, extOK := FormatFromFilename(filename)
	if extOK && !ext.Uploadable() {
		return "", newValidationError("file", filename)
	}

	mimeType = strings.TrimSpace(mimeType)
	if mimeType == "" || strings.EqualFold(mimeType, mimeOctetStream) {
		if !extOK {
			return "", newValidationError("file", filename)
		}
		return ext, nil
	}

	byMIME, ok := FormatFromMIME(mimeType)
	if !ok {
		return "", newValidationError("mime", mimeType)
	}
	if extOK {
		return ext, nil
	}
	return byMIME, nil
}

// ExportFileName returns the fixed download name for f.
func ExportFileName(f Format) string {
	return "spreadsheet." + string(f)
}

// ContentType returns the MIME type served with an export of f.
func ContentType(f Format) string {
	switch f {
	case XLSX:
		return MIMEXLSX
	case XLS:
		return MIMEXLS
	case CSV:
		return MIMECSV + "; charset=utf-8"
	case JSON:
		return MIMEJSON
	}
	return mimeOctetStream
}
