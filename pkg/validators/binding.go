package validators

import (
	"bitwise74/taskcamp/internal/model"
	"errors"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterBindings adds the custom rules used in form bindings to gin's
// validator engine
func RegisterBindings() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterValidation("task_status", func(fl validator.FieldLevel) bool {
		return model.TaskStatus(fl.Field().String()).Valid()
	})
}

// FieldErrors flattens binding errors into a field -> rule map. Errors that
// aren't validation errors end up under the "form" key.
func FieldErrors(err error) map[string]string {
	out := map[string]string{}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["form"] = err.Error()
		return out
	}

	for _, fe := range verrs {
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}

		out[strings.ToLower(fe.Field())] = msg
	}

	return out
}
