package validator

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/tr"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	tr_translations "github.com/go-playground/validator/v10/translations/tr"
)

// trans is the singleton Turkish translator for validation errors.
var trans ut.Translator

// Setup registers custom tags and Turkish translations on Gin's binding engine.
// Call once during application startup.
func Setup() {
	v, ok := binding.Validator.Engine().(*govalidator.Validate)
	if !ok {
		return
	}
	Register(v)
}

// Register wires field naming, custom tags and translations into v.
func Register(v *govalidator.Validate) {
	// Use JSON (or form) tag name for field names in error messages.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("tckn", func(fl govalidator.FieldLevel) bool {
		return ValidTCKN(fl.Field().String())
	})

	trLocale := tr.New()
	uni := ut.New(trLocale, trLocale)
	trans, _ = uni.GetTranslator("tr")
	_ = tr_translations.RegisterDefaultTranslations(v, trans)

	registerMessage(v, "notblank", "{0} boş bırakılamaz")
	registerMessage(v, "tckn", "{0} geçerli bir T.C. kimlik numarası olmalıdır")
}

func registerMessage(v *govalidator.Validate, tag, text string) {
	_ = v.RegisterTranslation(tag, trans,
		func(u ut.Translator) error {
			return u.Add(tag, text, true)
		},
		func(u ut.Translator, fe govalidator.FieldError) string {
			msg, err := u.T(tag, fe.Field())
			if err != nil {
				return fe.Error()
			}
			return msg
		},
	)
}

// ValidTCKN checks the length, leading digit and both checksum digits of a
// Turkish national identity number.
func ValidTCKN(s string) bool {
	if len(s) != 11 || s[0] == '0' {
		return false
	}
	var d [11]int
	for i := 0; i < 11; i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
		d[i] = int(s[i] - '0')
	}

	odd := d[0] + d[2] + d[4] + d[6] + d[8]
	even := d[1] + d[3] + d[5] + d[7]
	tenth := ((odd*7-even)%10 + 10) % 10
	if tenth != d[9] {
		return false
	}

	sum := 0
	for i := 0; i < 10; i++ {
		sum += d[i]
	}
	return sum%10 == d[10]
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name to human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			if trans == nil {
				fields[fe.Field()] = fe.Error()
				continue
			}
			fields[fe.Field()] = fe.Translate(trans)
		}
		return fields
	}

	// Not a validation error (e.g., JSON syntax error).
	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the JSON request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}

// BindQuery binds and validates the query string into dst.
func BindQuery(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindQuery(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
