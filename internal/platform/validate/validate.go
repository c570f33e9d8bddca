// Copyright (c) 2026 RuneBingo. All rights reserved.

// Package validate provides a chainable Validator that collects field-level
// errors before returning a single [apperr.AppError].
//
// # Architecture
//
// This package is used exclusively in the service layer, never in handlers or
// storage. Failures carry i18n keys; the respond package renders them.
package validate

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/RuneBingo/RuneBingo-sub000/internal/platform/apperr"
)

var (
	// slugRegex matches slug format: lowercase letters, digits, hyphens.
	slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	// uuidRegex matches a UUIDv4 or UUIDv7 string.
	uuidRegex = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	// usernameRegex matches RuneScape-style display names.
	usernameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9 _-]*[A-Za-z0-9]$`)
)

// ErrInvalidJSON is returned when the request body cannot be decoded.
var ErrInvalidJSON = apperr.ValidationError("validation.invalid_json")

// Validator collects field-level validation errors via a fluent, chainable API.
//
// # Concurrency
//
// Validator is not safe for concurrent use. A new instance must be created
// for every request/operation.
type Validator struct {
	errs []apperr.FieldError
}

// Required fails if the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	if strings.TrimSpace(value) == "" {
		v.add(field, "validation.required", nil)
	}
	return v
}

// MaxLen fails if the Unicode character count exceeds max.
func (v *Validator) MaxLen(field, value string, max int) *Validator {
	if utf8.RuneCountInString(value) > max {
		v.add(field, "validation.max_len", map[string]string{"max": strconv.Itoa(max)})
	}
	return v
}

// MinLen fails if the Unicode character count is below min.
func (v *Validator) MinLen(field, value string, min int) *Validator {
	if utf8.RuneCountInString(value) < min {
		v.add(field, "validation.min_len", map[string]string{"min": strconv.Itoa(min)})
	}
	return v
}

// Range fails if the value is outside the [min, max] range (inclusive).
func (v *Validator) Range(field string, value, min, max int) *Validator {
	if value < min || value > max {
		v.add(field, "validation.range", map[string]string{
			"min": strconv.Itoa(min),
			"max": strconv.Itoa(max),
		})
	}
	return v
}

// Min fails if the value is below min.
func (v *Validator) Min(field string, value, min int) *Validator {
	if value < min {
		v.add(field, "validation.min", map[string]string{"min": strconv.Itoa(min)})
	}
	return v
}

// Slug fails if the value is not a valid URL slug.
//
// # Format
//
// Slugs must consist only of lowercase letters, digits, and hyphens,
// with no leading or trailing hyphens.
func (v *Validator) Slug(field, value string) *Validator {
	if !slugRegex.MatchString(value) {
		v.add(field, "validation.slug", nil)
	}
	return v
}

// UUID fails if the value is not a valid UUID string (case-insensitive).
func (v *Validator) UUID(field, value string) *Validator {
	if !uuidRegex.MatchString(strings.ToLower(value)) {
		v.add(field, "validation.uuid", nil)
	}
	return v
}

// Username fails if the value is not a valid display name.
func (v *Validator) Username(field, value string) *Validator {
	if !usernameRegex.MatchString(value) {
		v.add(field, "validation.username", nil)
	}
	return v
}

// URL fails if the value is not an absolute http(s) URL.
func (v *Validator) URL(field, value string) *Validator {
	parsed, err := url.ParseRequestURI(value)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		v.add(field, "validation.url", nil)
	}
	return v
}

// Matches fails with key if value does not match pattern.
func (v *Validator) Matches(field, value string, pattern *regexp.Regexp, key string) *Validator {
	if !pattern.MatchString(value) {
		v.add(field, key, nil)
	}
	return v
}

// OneOf fails if the value is not in the allowed set of strings.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	for _, a := range allowed {
		if value == a {
			return v
		}
	}
	v.add(field, "validation.one_of", map[string]string{"allowed": strings.Join(allowed, ", ")})
	return v
}

// Custom adds a failure with a custom message key if the condition is true.
//
// # Example
//
//	v.Custom("width", width < 1, "validation.grid_size")
func (v *Validator) Custom(field string, failed bool, key string) *Validator {
	if failed {
		v.add(field, key, nil)
	}
	return v
}

// Err returns a [apperr.AppError] (VALIDATION_ERROR) if any rules failed,
// or nil if all rules passed.
//
// This is the only output method; call it at the end of the chain.
func (v *Validator) Err() error {
	if len(v.errs) == 0 {
		return nil
	}
	return apperr.ValidationError("validation.failed", v.errs...)
}

// HasErrors reports whether any validation rule has failed so far.
func (v *Validator) HasErrors() bool {
	return len(v.errs) > 0
}

// add appends a [apperr.FieldError] to the internal slice.
func (v *Validator) add(field, key string, params map[string]string) {
	v.errs = append(v.errs, apperr.FieldError{Field: field, Key: key, Params: params, Message: key})
}

// FieldErr is a shortcut to create a single-field validation error.
func FieldErr(field, key string) *apperr.AppError {
	return apperr.ValidationError("validation.failed", apperr.FieldError{
		Field:   field,
		Key:     key,
		Message: key,
	})
}
