package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/aidar/orgteams/internal/domain"
	"github.com/aidar/orgteams/internal/service"
)

// Сообщения об ошибках валидации полей
const (
	msgFieldRequired = "This field is required."
	msgFieldInvalid  = "Invalid value."
)

// TeamRequest схема создания команды для обычных пользователей.
// Поле owner не входит в схему и молча игнорируется.
type TeamRequest struct {
	Name string `json:"name" validate:"required,max=200"`
	Slug string `json:"slug" validate:"omitempty,max=200"`
}

// TeamAdminRequest схема создания команды для суперпользователей
type TeamAdminRequest struct {
	TeamRequest
	Owner string `json:"owner"`
}

func (req *TeamRequest) toInput() service.TeamInput {
	return service.TeamInput{Name: req.Name, Slug: req.Slug}
}

func (req *TeamAdminRequest) toInput() service.TeamInput {
	input := req.TeamRequest.toInput()
	input.Owner = req.Owner
	return input
}

type teamSchema interface {
	toInput() service.TeamInput
}

// errMalformedBody возвращается когда тело запроса не является корректным JSON объектом
var errMalformedBody = errors.New("malformed request body")

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeTeamRequest читает тело запроса по схеме, выбранной по привилегиям вызывающего
func decodeTeamRequest(r *http.Request, v *validator.Validate, privileged bool) (service.TeamInput, error) {
	var schema teamSchema
	if privileged {
		schema = &TeamAdminRequest{}
	} else {
		schema = &TeamRequest{}
	}

	if err := json.NewDecoder(r.Body).Decode(schema); err != nil && !errors.Is(err, io.EOF) {
		return service.TeamInput{}, fmt.Errorf("%w: %v", errMalformedBody, err)
	}

	if err := v.Struct(schema); err != nil {
		return service.TeamInput{}, toValidationError(err)
	}

	return schema.toInput(), nil
}

// toValidationError преобразует ошибки validator в ошибки по полям
func toValidationError(err error) *domain.ValidationError {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.NewValidationError("non_field_errors", msgFieldInvalid)
	}

	verr := &domain.ValidationError{}
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			verr.Add(fe.Field(), msgFieldRequired)
		case "max":
			value, _ := fe.Value().(string)
			verr.Add(fe.Field(), fmt.Sprintf(
				"Ensure this value has at most %s characters (it has %d).",
				fe.Param(), utf8.RuneCountInString(value),
			))
		default:
			verr.Add(fe.Field(), msgFieldInvalid)
		}
	}
	return verr
}
