package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Request binding and input validation utilities

// ErrInvalidBody means the body is not a JSON document of the expected shape
var ErrInvalidBody = errors.New("invalid request body")

// FieldError is the first failed rule of a bound request
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

func (e *FieldError) Error() string { return e.Message }

const maxBodyBytes = 1 << 20

var (
	vOnce  sync.Once
	vInst  *validator.Validate
	vTrans ut.Translator
)

func requestValidator() (*validator.Validate, ut.Translator) {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			if tag == "" || tag == "-" {
				return fld.Name
			}
			return tag
		})
		_ = en_translations.RegisterDefaultTranslations(v, trans)

		_ = v.RegisterValidation("notblank", validators.NotBlank)
		_ = v.RegisterTranslation("notblank", trans,
			func(ut ut.Translator) error {
				return ut.Add("notblank", "{0} must not be blank", true)
			},
			func(ut ut.Translator, fe validator.FieldError) string {
				msg, _ := ut.T("notblank", fe.Field())
				return msg
			},
		)

		vInst, vTrans = v, trans
	})
	return vInst, vTrans
}

// DecodeJSON reads one JSON document from r into T and validates it.
// Decode failures wrap ErrInvalidBody and the decoder error; rule failures are *FieldError.
// Unknown fields are ignored.
func DecodeJSON[T any](r *http.Request) (T, error) {
	var dst T
	defer r.Body.Close()

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&dst); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %w", ErrInvalidBody, err)
	}
	if dec.More() {
		var zero T
		return zero, fmt.Errorf("%w: unexpected trailing data", ErrInvalidBody)
	}

	v, trans := requestValidator()
	if err := v.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return dst, &FieldError{Field: fe.Field(), Tag: fe.Tag(), Message: fe.Translate(trans)}
		}
		return dst, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	return dst, nil
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}

// ValidatePage validates the 1-based page number
func ValidatePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}
