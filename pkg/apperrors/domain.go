package apperrors

import (
	"net/http"
)

/*
Этот файл содержит фабрики и предопределенные переменные
для общих ошибок бизнес-логики и домена.
*/

// =========================================================================
// Фабричные ФУНКЦИИ (Используются для оборачивания ошибок, напр. из репозитория)
// =========================================================================

// ErrNotFound - фабрика для ошибки "не найдено" (404)
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists - фабрика для ошибки "уже существует" (409)
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

// ErrConflict - общая фабрика для конфликтов (409)
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// ErrInvalidOperation - фабрика для невалидных операций (400)
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// =========================================================================
// Предопределенные ПЕРЕМЕННЫЕ (Для частых, статичных ошибок)
// =========================================================================

// --- Auth ---

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"A user with this email already exists",
	http.StatusConflict,
)

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

// --- Subscriptions & Payments ---

// ErrSubscriptionLimitReached - лимит тарифа исчерпан.
// Клиент должен предложить апгрейд плана, а не продление.
var ErrSubscriptionLimitReached = New(
	CodeLimitExceeded,
	"subscription",
	"Subscription limit reached",
	http.StatusForbidden,
)

// ErrSubscriptionExpired - ни триал, ни покупки не активны.
// Клиент должен предложить продление, а не апгрейд.
var ErrSubscriptionExpired = New(
	CodeSubscriptionExpired,
	"subscription",
	"Subscription expired",
	http.StatusForbidden,
)

var ErrSubscriptionCancelled = New(
	CodeInvalidStatus,
	"subscription",
	"Subscription is already cancelled",
	http.StatusConflict,
)

var ErrInvalidPaymentAmount = New(
	CodePaymentFailed,
	"payment",
	"Payment amount does not match the invoice",
	http.StatusBadRequest,
)

// --- Floor plan analysis ---

// ErrNoUsableMeasurements - модель не вернула ни одной пригодной комнаты.
// Клиент должен предложить повторную загрузку/анализ, а не пустую смету.
var ErrNoUsableMeasurements = New(
	CodeNoUsableMeasurements,
	"analysis",
	"No usable room measurements were extracted from the floor plan",
	http.StatusUnprocessableEntity,
)

var ErrAnalysisFailed = New(
	CodeAnalysisFailed,
	"analysis",
	"Floor plan analysis failed",
	http.StatusBadGateway,
)

// --- Uploads & Files ---

var ErrFileTooLarge = New(
	CodeLimitExceeded,
	"validation",
	"File size exceeds the allowed limit",
	http.StatusRequestEntityTooLarge,
)

var ErrInvalidFileType = New(
	CodeValidationFailed,
	"validation",
	"The provided file type is not allowed",
	http.StatusUnsupportedMediaType,
)

var ErrStorageLimitExceeded = New(
	CodeLimitExceeded,
	"storage",
	"Company storage quota exceeded",
	http.StatusForbidden,
)
