package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/sonicalchemist/api/internal/model"
)

// Validator checks flow inputs and model outputs against their struct tags.
// It is safe for concurrent use.
type Validator struct {
	validate *validator.Validate
}

// Messages shown next to a field, keyed by struct namespace.
var fieldMessages = map[string]string{
	"ComposerForm.Genre":              "Please select a genre.",
	"ComposerForm.Mood":               "Please select a mood.",
	"ComposerForm.LengthMinutes":      "Track length must be between 1 and 3 minutes.",
	"ComposerForm.MoodIntensity":      "Mood intensity must be between 0 and 100.",
	"SoundtrackRequest.Genre":         "Please select a genre.",
	"SoundtrackRequest.Mood":          "Please select a mood.",
	"SoundtrackRequest.LengthMinutes": "Track length must be between 1 and 3 minutes.",
}

func New() *Validator {
	v := validator.New()

	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("genre", func(fl validator.FieldLevel) bool {
		return model.IsValidGenre(fl.Field().String())
	})
	_ = v.RegisterValidation("mood", func(fl validator.FieldLevel) bool {
		return model.IsValidMood(fl.Field().String())
	})

	return &Validator{validate: v}
}

// Struct validates s and converts failures into a *ValidationError.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
	for _, e := range verrs {
		out.Fields = append(out.Fields, FieldError{
			Field:      e.Field(),
			Constraint: e.Tag(),
			Message:    messageFor(e),
		})
	}
	return out
}

// SoundtrackRequest validates req and returns it with defaults applied.
func (v *Validator) SoundtrackRequest(req model.SoundtrackRequest) (model.SoundtrackRequest, error) {
	if err := v.Struct(&req); err != nil {
		return model.SoundtrackRequest{}, err
	}
	return req.WithDefaults(), nil
}

func (v *Validator) MetadataSummaryRequest(req model.MetadataSummaryRequest) error {
	return v.Struct(&req)
}

func (v *Validator) ComposerForm(form model.ComposerForm) error {
	return v.Struct(&form)
}

func messageFor(e validator.FieldError) string {
	if msg, ok := fieldMessages[e.StructNamespace()]; ok {
		return msg
	}

	switch e.Tag() {
	case "required", "nonblank":
		return fmt.Sprintf("%s is required.", e.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s.", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s.", e.Field(), e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s.", e.Field(), e.Param())
	case "datauri":
		return fmt.Sprintf("%s must be a data URI.", e.Field())
	default:
		return fmt.Sprintf("%s failed %s validation.", e.Field(), e.Tag())
	}
}
