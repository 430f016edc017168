package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	problem "github.com/developer-overheid-nl/don-image-register/pkg/api_client/helpers/problem"
	"github.com/developer-overheid-nl/don-image-register/pkg/api_client/models"
	"github.com/developer-overheid-nl/don-image-register/pkg/logging"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/loopfz/gadgeto/tonic"
)

// bodyTypes maps binding struct names to their types so validator errors can
// be reported with the JSON field name.
var bodyTypes = map[string]reflect.Type{
	"ImageInput":       reflect.TypeOf(models.ImageInput{}),
	"ImageUpdateInput": reflect.TypeOf(models.ImageUpdateInput{}),
	"BadgeInput":       reflect.TypeOf(models.BadgeInput{}),
}

// ErrorHook is installed with tonic.SetErrorHook and renders every handler
// error as application/problem+json.
func ErrorHook(c *gin.Context, err error) (int, interface{}) {
	apiErr := ToProblem(err)
	c.Header("Content-Type", "application/problem+json")
	return apiErr.Status, apiErr
}

// ToProblem maps binding and domain errors to Problem Details.
func ToProblem(err error) problem.APIError {
	// 1) Bind/validate errors → 400 met correcte invalidParams
	var be tonic.BindError
	if errors.As(err, &be) || isValidationErr(err) {
		return problem.NewBadRequest("Invalid input", invalidParamsFromBinding(err)...)
	}

	// 2) Eigen APIError → pass-through
	var apiErr problem.APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	// 3) Domeinfouten
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return problem.NewBadRequest("Invalid input", problem.InvalidParam{Name: verr.Field, Reason: verr.Constraint})
	}
	var tooLarge *models.PayloadTooLargeError
	if errors.As(err, &tooLarge) {
		return problem.NewPayloadTooLarge(tooLarge.Error(), problem.InvalidParam{
			Name:   "data",
			Reason: fmt.Sprintf("must be at most %d bytes", tooLarge.Max),
		})
	}
	if errors.Is(err, models.ErrNotFound) {
		return problem.NewNotFound(err.Error())
	}

	// 4) Alles anders → 500
	logging.Log.Error().Err(err).Msg("request failed")
	return problem.NewInternalServerError(err.Error())
}

func invalidParamsFromBinding(err error) []problem.InvalidParam {
	// Probeer direct op validator.ValidationErrors te matchen.
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// Geen validator-errors? Geef generiek terug.
		return []problem.InvalidParam{{Name: "body", Reason: err.Error()}}
	}

	out := make([]problem.InvalidParam, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, problem.InvalidParam{
			Name:   jsonName(fe),
			Reason: humanReason(fe),
		})
	}
	return out
}

// jsonName resolves the JSON tag of the failing field, e.g. ImageInput.Filename → filename.
func jsonName(fe validator.FieldError) string {
	name := fe.Field()
	typeName := strings.SplitN(fe.StructNamespace(), ".", 2)[0]
	t, ok := bodyTypes[typeName]
	if !ok {
		return name
	}
	if f, ok := t.FieldByName(fe.StructField()); ok {
		if tag := f.Tag.Get("json"); tag != "" && tag != "-" {
			name = strings.Split(tag, ",")[0]
		}
	}
	return name
}

func humanReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is verplicht"
	default:
		return fe.Error()
	}
}

func isValidationErr(err error) bool {
	var verrs validator.ValidationErrors
	return errors.As(err, &verrs)
}
