// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

// Package validation decodes JSON request bodies and validates them with struct tags.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/canonical/tenant-auth/internal/apierror"
)

const maxBodySize = 1 << 20

type Validator struct {
	validate *validator.Validate
}

// DecodeJSON reads r's body into v and validates it, failures are VALIDATION_ERROR
// errors whose details map each offending field to the rule it broke
func (v *Validator) DecodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodySize))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return apierror.WithDetails(apierror.KindValidation, map[string]any{"body": "malformed JSON"})
	}

	return v.Struct(dst)
}

func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return apierror.Wrap(apierror.KindInternal, err)
	}

	details := make(map[string]any, len(fieldErrors))
	for _, fe := range fieldErrors {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule = fmt.Sprintf("%s=%s", rule, fe.Param())
		}
		details[fe.Field()] = rule
	}

	return apierror.WithDetails(apierror.KindValidation, details)
}

func NewValidator() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their JSON name
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &Validator{validate: validate}
}
