package validator

import (
	"log"

	"github.com/go-playground/validator/v10"

	"paintquote_backend/internal/models"
)

// registerCustomRules регистрирует все кастомные функции валидации в
// переданном экземпляре валидатора.
func registerCustomRules(v *validator.Validate) {
	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			// Если правило не удалось зарегистрировать, приложение
			// не должно запускаться
			log.Fatalf("failed to register custom validation tag '%s': %v", tag, err)
		}
	}

	mustRegister("is-user-role", validateUserRole)
	mustRegister("is-billing-cycle", validateBillingCycle)
	mustRegister("is-quote-status", validateQuoteStatus)
}

// --- Функции валидации ---

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true // 'required' обрабатывает пустые
	}
	switch models.UserRole(value) {
	case models.UserRoleOwner, models.UserRoleMember, models.UserRoleAdmin:
		return true
	default:
		return false
	}
}

func validateBillingCycle(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.BillingCycle(value) {
	case models.BillingCycleMonthly, models.BillingCycleYearly:
		return true
	default:
		return false
	}
}

func validateQuoteStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	switch models.QuoteStatus(value) {
	case models.QuoteStatusDraft, models.QuoteStatusSent, models.QuoteStatusAccepted, models.QuoteStatusDeclined:
		return true
	default:
		return false
	}
}
