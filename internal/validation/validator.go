// Package validation checks request data against named schemas and reports
// every violation at once, keyed by JSON field name.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/baechuer/user-service/internal/domain"
)

type Validator struct {
	v     *validator.Validate
	trans ut.Translator
}

func New() (*Validator, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)

	enLocale := en.New()
	trans, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	if err := entranslations.RegisterDefaultTranslations(v, trans); err != nil {
		return nil, fmt.Errorf("register translations: %w", err)
	}
	return &Validator{v: v, trans: trans}, nil
}

// MustNew is New for package-level wiring where a failure is a programming error.
func MustNew() *Validator {
	v, err := New()
	if err != nil {
		panic(err)
	}
	return v
}

func jsonName(f reflect.StructField) string {
	name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return f.Name
	}
	return name
}

// Validate checks bag against the named schema. Unknown keys are ignored.
// It returns nil when bag is valid, otherwise the first message per field.
// An unknown schema name is an error.
func (v *Validator) Validate(schema string, bag map[string]any) (map[string]string, error) {
	newDst, ok := schemas[schema]
	if !ok {
		return nil, domain.ErrValidationSchemaNotFound(schema)
	}
	dst := newDst()

	fields := map[string]string{}
	known := schemaFields(dst)
	clean := make(map[string]any, len(bag))
	for k, val := range bag {
		if !known[k] {
			continue
		}
		if val == nil {
			continue
		}
		if _, isString := val.(string); !isString {
			fields[k] = k + " must be a string"
			continue
		}
		clean[k] = val
	}

	raw, err := json.Marshal(clean)
	if err != nil {
		return nil, fmt.Errorf("encode bag: %w", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return nil, fmt.Errorf("decode bag: %w", err)
	}

	if err := v.v.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, fmt.Errorf("validate %s: %w", schema, err)
		}
		for _, fe := range verrs {
			if _, seen := fields[fe.Field()]; !seen {
				fields[fe.Field()] = fe.Translate(v.trans)
			}
		}
	}

	if len(fields) == 0 {
		return nil, nil
	}
	return fields, nil
}

// Has reports whether schema is a known schema name.
func Has(schema string) bool {
	_, ok := schemas[schema]
	return ok
}

func schemaFields(dst any) map[string]bool {
	t := reflect.TypeOf(dst).Elem()
	out := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if name := jsonName(t.Field(i)); name != "" {
			out[name] = true
		}
	}
	return out
}
