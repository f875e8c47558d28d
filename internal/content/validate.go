package content

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ovaphlow/pitchfork/service-blog-go/internal/apperr"
	"github.com/ovaphlow/pitchfork/service-blog-go/internal/content/entity"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// IsSlug reports whether s is a URL-safe slug.
func IsSlug(s string) bool { return slugPattern.MatchString(s) }

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return IsSlug(fl.Field().String())
	})
	// optional fields validate as pointers: absent or null is nil, so
	// omitempty skips them while zero values still reach the rules
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		return f.Interface().(entity.Optional[string]).Ptr()
	}, entity.Optional[string]{})
	v.RegisterCustomTypeFunc(func(f reflect.Value) any {
		return f.Interface().(entity.Optional[int]).Ptr()
	}, entity.Optional[int]{})
	return v
}

// check runs struct validation and folds every violation into one
// client-facing validation error.
func check(v *validator.Validate, payload any) error {
	err := v.Struct(payload)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describe(fe))
	}
	return validationError(msgs)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%q is required", fe.Field())
	case "slug":
		return fmt.Sprintf("%q must contain only lowercase letters, digits and single hyphens", fe.Field())
	case "gt":
		return fmt.Sprintf("%q must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%q is invalid", fe.Field())
	}
}

func validationError(msgs []string) error {
	return apperr.Validation("Validation error: " + strings.Join(msgs, "; "))
}

// checkPatch validates a partial article update. Required fields may be
// omitted but, when present, must be non-null and non-empty.
func checkPatch(v *validator.Validate, p entity.ArticlePatch) error {
	var msgs []string
	for _, f := range []struct {
		name string
		val  entity.Optional[string]
	}{{"title", p.Title}, {"slug", p.Slug}, {"content", p.Content}} {
		if f.val.Set && (f.val.Null || f.val.Value == "") {
			msgs = append(msgs, fmt.Sprintf("%q must not be empty", f.name))
		}
	}
	if len(msgs) > 0 {
		return validationError(msgs)
	}
	return check(v, p)
}
