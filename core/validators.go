package core

import (
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
	"github.com/pkg/errors"

	"github.com/trezcool/capstone/core/role"
)

var (
	// custom validation tags & texts
	alphaNumUnderTag   = "alphanum_"
	alphaNumUnderText  = "only alphanumeric characters and underscores are allowed"
	alphaNumUnderRegex = regexp.MustCompile(`^[\w\s]+$`)

	notBlankTag  = "notblank"
	notBlankText = "{0} cannot be blank"

	roleIDTag  = "roleid"
	roleIDText = "please select a role"

	pwdPolicyTag      = "pwdpolicy"
	pwdPolicyText     = "password must be at least 8 characters long, including letter, number, and special character"
	pwdPolicyMinLen   = 8
	pwdPolicySpecials = "@$!%*?&"

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "{0} is required"
)

// NewTranslator returns the english translator used for validation messages.
func NewTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// NewValidator returns a validator ready for use, with its translator.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := NewTranslator()
	InitValidators(validate, translator)
	return validate, translator
}

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(alphaNumUnderTag, alphaNumUnderValidation)
	RegisterCustomTranslation(validate, translator, alphaNumUnderTag, alphaNumUnderText)

	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	RegisterCustomTranslation(validate, translator, notBlankTag, notBlankText)

	_ = validate.RegisterValidation(roleIDTag, roleIDValidation)
	RegisterCustomTranslation(validate, translator, roleIDTag, roleIDText)

	_ = validate.RegisterValidation(pwdPolicyTag, pwdPolicyValidation)
	RegisterCustomTranslation(validate, translator, pwdPolicyTag, pwdPolicyText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// TranslateError renders err as a single sentence suitable for an alert banner.
func TranslateError(err error, translator ut.Translator) string {
	if err == nil {
		return ""
	}
	switch origErr := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		msgs := make([]string, 0, len(origErr))
		for _, vErr := range origErr {
			msgs = append(msgs, vErr.Translate(translator))
		}
		return strings.Join(msgs, "; ")
	case *ValidationError:
		return origErr.Error()
	default:
		return err.Error()
	}
}

// FieldErrors flattens validation errors into FieldErrors keyed on json names.
func FieldErrors(err error, translator ut.Translator) []FieldError {
	switch origErr := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		flds := make([]FieldError, 0, len(origErr))
		for _, vErr := range origErr {
			flds = append(flds, FieldError{Field: vErr.Field(), Error: vErr.Translate(translator)})
		}
		return flds
	case *ValidationError:
		return origErr.Fields
	default:
		return nil
	}
}

// Custom Global Validators

// alphaNumUnderValidation only allows alphanumeric characters and underscores.
func alphaNumUnderValidation(fl validator.FieldLevel) bool {
	return alphaNumUnderRegex.MatchString(fl.Field().String())
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

// roleIDValidation accepts any known role id.
func roleIDValidation(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		_, ok := role.Lookup(role.ID(fl.Field().Int()))
		return ok
	}
	return false
}

// pwdPolicyValidation requires at least 8 characters among letters, digits and @$!%*?&,
// with at least one of each kind.
func pwdPolicyValidation(fl validator.FieldLevel) bool {
	pwd := fl.Field().String()
	if len(pwd) < pwdPolicyMinLen {
		return false
	}
	var hasLetter, hasDigit, hasSpecial bool
	for _, char := range pwd {
		switch {
		case char < unicode.MaxASCII && unicode.IsLetter(char):
			hasLetter = true
		case char < unicode.MaxASCII && unicode.IsDigit(char):
			hasDigit = true
		case strings.ContainsRune(pwdPolicySpecials, char):
			hasSpecial = true
		default:
			return false
		}
	}
	return hasLetter && hasDigit && hasSpecial
}
