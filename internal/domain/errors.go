package domain

import (
	"errors"
	"sort"
	"strings"
)

// Доменные ошибки
var (
	// ErrForbidden возвращается когда у вызывающего нет доступа к организации или действию
	ErrForbidden = errors.New("forbidden")

	// ErrUserNotFound возвращается когда пользователь не найден
	ErrUserNotFound = errors.New("user not found")

	// ErrTeamNotFound возвращается когда команда не найдена
	ErrTeamNotFound = errors.New("team not found")

	// ErrAPIKeyNotFound возвращается когда API ключ не найден или отключен
	ErrAPIKeyNotFound = errors.New("api key not found")

	// ErrSlugExists возвращается при попытке создать команду с занятым slug
	ErrSlugExists = errors.New("team slug already exists in organization")

	// ErrUnauthorized возвращается при неудачной аутентификации
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidToken возвращается когда JWT токен невалиден
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidCredentials возвращается при неверном логине или пароле
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError содержит ошибки валидации по полям запроса
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError создает ошибку валидации для одного поля
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {message}}}
}

// Add добавляет сообщение об ошибке для поля
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}
	e.Fields[field] = append(e.Fields[field], message)
}

// Empty возвращает true если ошибок нет
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	fields := make([]string, 0, len(e.Fields))
	for f := range e.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e.Fields[f], "; "))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// ErrorCode представляет коды ошибок API
type ErrorCode string

// Коды ошибок
const (
	CodeBadRequest   ErrorCode = "BAD_REQUEST"    // Некорректный запрос
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"   // Требуется аутентификация
	CodeForbidden    ErrorCode = "FORBIDDEN"      // Доступ запрещен
	CodeNotFound     ErrorCode = "NOT_FOUND"      // Ресурс не найден
	CodeConflict     ErrorCode = "CONFLICT"       // Конфликт с существующими данными
	CodeInternal     ErrorCode = "INTERNAL_ERROR" // Внутренняя ошибка
)

// MapErrorToCode преобразует доменные ошибки в коды ошибок API
func MapErrorToCode(err error) ErrorCode {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return CodeBadRequest
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrAPIKeyNotFound):
		return CodeUnauthorized
	case errors.Is(err, ErrSlugExists):
		return CodeConflict
	case errors.Is(err, ErrUserNotFound), errors.Is(err, ErrTeamNotFound):
		return CodeNotFound
	default:
		return CodeInternal
	}
}
