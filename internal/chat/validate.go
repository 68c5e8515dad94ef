package chat

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

const maxNameLength = 32

type displayName struct {
	Name string `validate:"required,max=32,nickname"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Names must be addressable by /whisper and /nick, which split on whitespace.
	_ = v.RegisterValidation("nickname", func(fl validator.FieldLevel) bool {
		return !strings.ContainsFunc(fl.Field().String(), func(r rune) bool {
			return unicode.IsSpace(r) || r == '/'
		})
	})
	return v
}

// ValidateName checks a display name against the naming policy.
func ValidateName(name string) error {
	if err := validate.Struct(displayName{Name: name}); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func invalidNameHint(name string) string {
	return fmt.Sprintf("Username '%s' is invalid: use 1-%d characters without spaces or '/'.", name, maxNameLength)
}
