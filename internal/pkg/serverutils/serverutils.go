package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/tigernone/corpusqa/internal/repository/contract"
	"github.com/tigernone/corpusqa/internal/service"
	"github.com/tigernone/corpusqa/pkg/retrieval"
)

var validate = validator.New()

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func SuccessResponse(message string, data interface{}) Response {
	return Response{Success: true, Message: message, Data: data}
}

func ErrorResponse(message string) Response {
	return Response{Success: false, Message: message}
}

// ValidateRequest runs struct validation and turns failures into a readable
// 400 error.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return fiber.NewError(fiber.StatusBadRequest,
		"validation failed: "+strings.Join(fields, ", "))
}

// ErrorHandlerMiddleware maps domain errors onto HTTP statuses. Handlers
// just return errors; this is the single place that knows the mapping.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status := fiber.StatusInternalServerError
		switch {
		case errors.Is(err, contract.ErrSessionNotFound):
			status = fiber.StatusNotFound
		case errors.Is(err, contract.ErrSessionExists):
			status = fiber.StatusConflict
		case errors.Is(err, service.ErrCorpusExists):
			status = fiber.StatusConflict
		case errors.Is(err, retrieval.ErrSemanticSearch):
			status = fiber.StatusBadGateway
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		return ctx.Status(status).JSON(ErrorResponse(err.Error()))
	}
}
