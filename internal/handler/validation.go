package handler

import (
	"errors"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/pairusuo/blog-backend/internal/domain"
	"github.com/pairusuo/blog-backend/pkg/i18n"
)

// Messages shared by every admin endpoint
const (
	msgInvalidLocale = "Invalid locale; expected 'zh' or 'en'"
	msgMissingSlug   = "Missing slug"
	msgInvalidSlug   = "Invalid slug"
	msgInvalidBody   = "Invalid JSON body"
	msgInvalidAction = "Invalid action"
)

var registerOnce sync.Once

// RegisterValidators adds the locale and slugpath binding tags to gin's validator
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("locale", func(fl validator.FieldLevel) bool {
			return i18n.IsLocale(fl.Field().String())
		})
		_ = v.RegisterValidation("slugpath", func(fl validator.FieldLevel) bool {
			return domain.ValidateSlug(fl.Field().String())
		})
	})
}

// bindMessage turns a binding error into the message sent to the client
func bindMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return msgInvalidBody
	}

	fe := verrs[0]
	switch {
	case fe.Tag() == "locale":
		return msgInvalidLocale
	case fe.Field() == "Slug" && fe.Tag() == "required":
		return msgMissingSlug
	case fe.Field() == "Slug":
		return msgInvalidSlug
	case fe.Field() == "Action":
		return msgInvalidAction
	default:
		return "Invalid field: " + fe.Field()
	}
}
