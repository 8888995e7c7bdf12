// Package validation holds the shared request validator with the custom tags used
// across the API and English messages for its failures.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/noah-isme/sma-academic-api/pkg/academicyear"
	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
	"github.com/noah-isme/sma-academic-api/pkg/period"
)

const (
	academicYearTag = "academic_year"
	schoolDayTag    = "school_day"
	notBlankTag     = "notblank"
)

var (
	validate   *validator.Validate
	translator ut.Translator
)

func init() {
	validate = validator.New()

	english := en.New()
	translator, _ = ut.New(english, english).GetTranslator("en")
	_ = entranslations.RegisterDefaultTranslations(validate, translator)

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(academicYearTag, func(fl validator.FieldLevel) bool {
		return academicyear.Validate(fl.Field().String()).Valid
	})
	_ = validate.RegisterValidation(schoolDayTag, func(fl validator.FieldLevel) bool {
		return period.IsSchoolDay(strings.ToUpper(fl.Field().String()))
	})
	_ = validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	messages := map[string]string{
		academicYearTag: "{0} must be an academic year formatted as YYYY-YYYY",
		schoolDayTag:    "{0} must be a school day between MONDAY and FRIDAY",
		notBlankTag:     "{0} cannot be blank",
	}
	for tag, text := range messages {
		tag, text := tag, text
		_ = validate.RegisterTranslation(tag, translator,
			func(t ut.Translator) error { return t.Add(tag, text, true) },
			func(t ut.Translator, fe validator.FieldError) string {
				msg, _ := t.T(tag, fe.Field())
				return msg
			},
		)
	}
}

// Default returns the shared validator instance.
func Default() *validator.Validate {
	return validate
}

// IsUUID reports whether value is a canonical UUID, the form every stored id takes.
func IsUUID(value string) bool {
	return validate.Var(value, "required,uuid") == nil
}

// Messages maps each failing field to a readable message.
func Messages(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Translate(translator)
	}
	return out
}

// Error wraps a validation failure as VALIDATION_ERROR. The message names the first
// failing field so clients do not need to inspect logs.
func Error(err error, message string) *appErrors.Error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		message = message + ": " + verrs[0].Translate(translator)
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
