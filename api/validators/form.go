package validators

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/velumart/velumart-backend/pkg/errors"
)

// ParseMultipart parses a multipart form bounded by maxMB of in-memory
// buffering. Larger parts spill to temp files.
func ParseMultipart(r *http.Request, maxMB int) error {
	if maxMB <= 0 {
		maxMB = 20
	}
	if err := r.ParseMultipartForm(int64(maxMB) << 20); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart form")
	}
	return nil
}

// FormString returns a trimmed form value, empty when absent.
func FormString(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}

// FormStringPtr returns the trimmed form value, or nil when the field was
// not submitted at all.
func FormStringPtr(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}
	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}
	v := strings.TrimSpace(values[0])
	return &v
}

// FormInt64Ptr parses an optional integer field.
func FormInt64Ptr(r *http.Request, key string) (*int64, error) {
	raw := FormStringPtr(r, key)
	if raw == nil || *raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseInt(*raw, 10, 64)
	if err != nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s must be an integer", key)
	}
	return &value, nil
}

// FormDecimal parses a required decimal field, defaulting to zero when the
// field is absent.
func FormDecimal(r *http.Request, key string) (decimal.Decimal, error) {
	raw := FormString(r, key)
	if raw == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, pkgerrors.Newf(pkgerrors.CodeValidation, "%s must be a decimal number", key)
	}
	return value, nil
}

// FormDecimalPtr parses an optional decimal field.
func FormDecimalPtr(r *http.Request, key string) (*decimal.Decimal, error) {
	raw := FormStringPtr(r, key)
	if raw == nil || *raw == "" {
		return nil, nil
	}
	value, err := decimal.NewFromString(*raw)
	if err != nil {
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "%s must be a decimal number", key)
	}
	return &value, nil
}

// FormFile returns the uploaded file for key, or nil when the part is
// missing.
func FormFile(r *http.Request, key string) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := r.FormFile(key)
	if err == http.ErrMissingFile {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid file upload")
	}
	return file, header, nil
}
