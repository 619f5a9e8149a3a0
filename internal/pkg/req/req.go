/*
Package req provides helpers for binding HTTP request bodies to structs.

JSON binding is strict: unknown fields and trailing content are rejected so
malformed client payloads fail early with a typed error.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"plaza/internal/pkg/errs"
)

// BindJSON decodes the JSON request body into dst.
func BindJSON(r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
