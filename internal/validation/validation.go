package validation

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrMalformedBody = errors.New("malformed JSON body")

const (
	msgNotNull  = "This value should not be null."
	msgNotBlank = "This value should not be blank."
	msgString   = "This value should be of type string."
	msgInt      = "This value should be of type int."
	msgInvalid  = "This value is not valid."
)

// Errors collects messages per JSON field name.
type Errors map[string][]string

func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e Errors) Has(field string) bool { return len(e[field]) > 0 }

func (e Errors) Empty() bool { return len(e) == 0 }

// Fields is a request body kept undecoded per key, so that a value of the
// wrong JSON type becomes a field error of its own.
type Fields map[string]json.RawMessage

// ParseFields accepts an empty body as an empty object.
func ParseFields(body []byte) (Fields, error) {
	f := Fields{}
	if len(bytes.TrimSpace(body)) == 0 {
		return f, nil
	}
	if err := json.Unmarshal(body, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	return f, nil
}

func (f Fields) raw(name string) (json.RawMessage, bool) {
	v, ok := f[name]
	if !ok {
		return nil, false
	}
	v = bytes.TrimSpace(v)
	if len(v) == 0 || bytes.Equal(v, []byte("null")) {
		return nil, false
	}
	return v, true
}

// String reads a JSON string. A missing, null or non-string value is reported
// into errs and ok is false.
func (f Fields) String(name string, errs Errors) (string, bool) {
	v, present := f.raw(name)
	if !present {
		errs.Add(name, msgNotNull)
		return "", false
	}
	if v[0] != '"' {
		errs.Add(name, msgString)
		return "", false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		errs.Add(name, msgString)
		return "", false
	}
	return s, true
}

// Int reads a JSON integer. Fractions, numeric strings and values outside
// the int64 range are type errors.
func (f Fields) Int(name string, errs Errors) (int, bool) {
	v, present := f.raw(name)
	if !present {
		errs.Add(name, msgNotNull)
		return 0, false
	}
	dec := json.NewDecoder(bytes.NewReader(v))
	dec.UseNumber()
	var decoded any
	if err := dec.Decode(&decoded); err != nil {
		errs.Add(name, msgInt)
		return 0, false
	}
	num, isNumber := decoded.(json.Number)
	if !isNumber {
		errs.Add(name, msgInt)
		return 0, false
	}
	n, err := strconv.ParseInt(num.String(), 10, 64)
	if err != nil || int64(int(n)) != n {
		errs.Add(name, msgInt)
		return 0, false
	}
	return int(n), true
}

// Validator applies `validate` struct tags and reports failures under the
// JSON field names.
type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Struct adds rule violations of s to errs. Fields that already carry a
// type error are skipped; their zero value says nothing about the input.
func (v *Validator) Struct(s any, errs Errors) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return fmt.Errorf("validate: %w", err)
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate: %w", err)
	}
	for _, fe := range fieldErrs {
		if errs.Has(fe.Field()) {
			continue
		}
		errs.Add(fe.Field(), message(fe))
	}
	return nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return msgNotBlank
	case "min":
		return fmt.Sprintf("This value is too short. It should have %s characters or more.", fe.Param())
	case "max":
		return fmt.Sprintf("This value is too long. It should have %s characters or less.", fe.Param())
	case "gte":
		return fmt.Sprintf("This value should be greater than or equal to %s.", fe.Param())
	case "lte":
		return fmt.Sprintf("This value should be less than or equal to %s.", fe.Param())
	default:
		return msgInvalid
	}
}
