// Package validation checks student payloads before they reach storage.
//
// Each field has an ordered list of rules. Every rule of a field is
// evaluated and every failure adds one message, except that a failed
// "required" stops the field. On update a field absent from the payload
// is skipped entirely; a present field must satisfy the same rules as on
// create.
//
// Individual checks run through go-playground/validator's Var so the
// email, length and numeric semantics match the rest of the ecosystem.
package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/students-api/internal/types"
)

// Mode selects the create or update rule set.
type Mode int

const (
	// Create requires every field.
	Create Mode = iota
	// Update validates only the fields present in the payload.
	Update
)

// Payload is a decoded JSON object. Numbers must be decoded as json.Number.
type Payload map[string]any

// Errors maps a field name to its failure messages.
type Errors map[string][]string

// UniqueChecker answers the email uniqueness rule.
type UniqueChecker interface {
	EmailExists(ctx context.Context, email, exceptID string) (bool, error)
}

type rule struct {
	tag   string
	param string
}

type field struct {
	name  string
	rules []rule
}

var studentRules = []field{
	{"name", []rule{{"required", ""}, {"string", ""}, {"max", "255"}}},
	{"email", []rule{{"required", ""}, {"email", ""}, {"unique", ""}}},
	{"phone", []rule{{"required", ""}, {"numeric", ""}, {"digits", "10"}}},
	{"age", []rule{{"required", ""}, {"integer", ""}, {"min", "0"}}},
	{"language", []rule{{"required", ""}, {"string", ""}, {"max", "50"}}},
}

// customMessages override defaultMessages for one field.rule pair.
var customMessages = map[string]string{
	"phone.numeric": "The phone number must be numeric.",
	"phone.digits":  "The phone number must contain exactly 10 digits.",
}

var defaultMessages = map[string]string{
	"required": "The :attribute field is required.",
	"string":   "The :attribute field must be a string.",
	"max":      "The :attribute field must not be greater than :param characters.",
	"email":    "The :attribute field must be a valid email address.",
	"unique":   "The :attribute has already been taken.",
	"numeric":  "The :attribute field must be a number.",
	"digits":   "The :attribute field must be :param digits.",
	"integer":  "The :attribute field must be an integer.",
	"min":      "The :attribute field must be at least :param.",
}

var integerRegex = regexp.MustCompile(`^[-+]?[0-9]+$`)

// Validator applies the student rule tables.
type Validator struct {
	validate *validator.Validate
	unique   UniqueChecker
}

// New returns a Validator that consults unique for the email rule.
func New(unique UniqueChecker) *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Registration only fails for empty tags or nil funcs.
	_ = v.RegisterValidation("digits", validateDigits)
	_ = v.RegisterValidation("integer", func(fl validator.FieldLevel) bool {
		return integerRegex.MatchString(fl.Field().String())
	})

	return &Validator{validate: v, unique: unique}
}

// Message renders the client message for a failed rule.
func Message(fieldName, tag, param string) string {
	if msg, ok := customMessages[fieldName+"."+tag]; ok {
		return msg
	}
	tmpl, ok := defaultMessages[tag]
	if !ok {
		tmpl = "The :attribute field is invalid."
	}
	return strings.NewReplacer(":attribute", fieldName, ":param", param).Replace(tmpl)
}

// Validate checks p against the rules for mode. ignoreID is the id of the
// student being updated, excluded from the email uniqueness check.
//
// On success it returns the typed input and nil Errors. The error return
// is reserved for failures of the uniqueness lookup itself.
func (v *Validator) Validate(ctx context.Context, p Payload, mode Mode, ignoreID string) (types.StudentInput, Errors, error) {
	failed := Errors{}

	for _, f := range studentRules {
		value, present := p[f.name]
		if mode == Update && !present {
			continue
		}

		for _, r := range f.rules {
			ok, err := v.check(ctx, f.name, r, value, present, len(failed[f.name]) > 0, ignoreID)
			if err != nil {
				return types.StudentInput{}, nil, err
			}
			if ok {
				continue
			}

			failed[f.name] = append(failed[f.name], Message(f.name, r.tag, r.param))
			if r.tag == "required" {
				break
			}
		}
	}

	if len(failed) > 0 {
		return types.StudentInput{}, failed, nil
	}

	return toInput(p), nil, nil
}

// check evaluates a single rule. hasErrors reports earlier failures on the
// same field, used to skip rules that only make sense on a sane value.
func (v *Validator) check(ctx context.Context, fieldName string, r rule, value any, present, hasErrors bool, ignoreID string) (bool, error) {
	switch r.tag {
	case "required":
		return present && !isBlank(value), nil

	case "string":
		_, ok := value.(string)
		return ok, nil

	case "max":
		s, ok := value.(string)
		if !ok {
			return true, nil
		}
		return v.validate.Var(s, "max="+r.param) == nil, nil

	case "email":
		s, ok := value.(string)
		return ok && v.validate.Var(s, "email") == nil, nil

	case "numeric":
		s, ok := numberString(value)
		return ok && v.validate.Var(s, "numeric") == nil, nil

	case "digits":
		s, ok := numberString(value)
		return ok && v.validate.Var(s, "digits="+r.param) == nil, nil

	case "integer":
		_, ok := toInt(value)
		return ok, nil

	case "min":
		n, ok := toInt(value)
		if !ok {
			return true, nil
		}
		return v.validate.Var(n, "min="+r.param) == nil, nil

	case "unique":
		s, ok := value.(string)
		if !ok || hasErrors || v.unique == nil {
			return true, nil
		}
		exists, err := v.unique.EmailExists(ctx, s, ignoreID)
		if err != nil {
			return false, fmt.Errorf("validation: %s unique lookup: %w", fieldName, err)
		}
		return !exists, nil
	}

	return false, fmt.Errorf("validation: unknown rule %q", r.tag)
}

// validateDigits passes when the field is exactly param ASCII digits.
func validateDigits(fl validator.FieldLevel) bool {
	want, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	s := fl.Field().String()
	if len(s) != want {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}

// numberString returns the textual form of a JSON number or string.
func numberString(value any) (string, bool) {
	switch v := value.(type) {
	case json.Number:
		return v.String(), true
	case string:
		return v, true
	}
	return "", false
}

func toInt(value any) (int, bool) {
	s, ok := numberString(value)
	if !ok || !integerRegex.MatchString(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// toInput converts a payload that already passed validation.
func toInput(p Payload) types.StudentInput {
	var in types.StudentInput

	if v, ok := p["name"].(string); ok {
		in.Name = &v
	}
	if v, ok := p["email"].(string); ok {
		in.Email = &v
	}
	if v, ok := numberString(p["phone"]); ok {
		in.Phone = &v
	}
	if v, ok := toInt(p["age"]); ok {
		in.Age = &v
	}
	if v, ok := p["language"].(string); ok {
		in.Language = &v
	}

	return in
}
