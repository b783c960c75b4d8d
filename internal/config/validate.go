package config

import (
	"errors"
	"net/mail"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

// ErrTranslatorNotFound indicates the English translator is unavailable.
var ErrTranslatorNotFound = errors.New("translator not found")

// ValidationError maps config keys to human-readable messages.
type ValidationError map[string]string

// Error implements the error interface.
func (ve ValidationError) Error() string {
	if len(ve) == 0 {
		return "validation error"
	}

	keys := make([]string, 0, len(ve))
	for k := range ve {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, ve[k])
	}
	return strings.Join(parts, "; ")
}

type structValidator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func newValidator() (*structValidator, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// report fields by their config key
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	enLang := en.New()
	uni := ut.New(enLang, enLang)
	enTrans, ok := uni.GetTranslator("en")
	if !ok {
		return nil, ErrTranslatorNotFound
	}

	if err := enTranslations.RegisterDefaultTranslations(validate, enTrans); err != nil {
		return nil, err
	}

	if err := registerMailbox(validate, enTrans); err != nil {
		return nil, err
	}

	return &structValidator{
		validate:   validate,
		translator: enTrans,
	}, nil
}

func (v *structValidator) Validate(data any) error {
	if err := v.validate.Struct(data); err != nil {
		var validateErrs validator.ValidationErrors
		if !errors.As(err, &validateErrs) {
			return err
		}

		ve := make(ValidationError)
		for _, fe := range validateErrs {
			ve[fe.Field()] = fe.Translate(v.translator)
		}
		return ve
	}
	return nil
}

// registerMailbox adds the "mailbox" rule: an RFC 5322 address, optionally
// with a display name ("Ops <ops@example.com>").
func registerMailbox(validate *validator.Validate, enTrans ut.Translator) error {
	err := validate.RegisterValidation("mailbox", func(fl validator.FieldLevel) bool {
		s, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		_, err := mail.ParseAddress(s)
		return err == nil
	})
	if err != nil {
		return err
	}

	return validate.RegisterTranslation("mailbox", enTrans,
		func(ut ut.Translator) error {
			return ut.Add("mailbox", "{0} must be a valid email address", false)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			t, err := ut.T(fe.Tag(), fe.Field())
			if err != nil {
				return fe.Error()
			}
			return t
		},
	)
}
