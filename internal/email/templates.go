package email

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
)

// TemplateManager управляет html-шаблонами писем
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

// NewTemplateManager создает менеджер с зарегистрированными
// встроенными шаблонами
func NewTemplateManager() *TemplateManager {
	tm := &TemplateManager{
		templates: make(map[string]*template.Template),
	}

	for name, body := range builtinTemplates {
		// Встроенные шаблоны валидны по построению
		if err := tm.AddTemplate(name, body); err != nil {
			panic(fmt.Sprintf("invalid builtin email template %s: %v", name, err))
		}
	}

	return tm
}

// Render рендерит шаблон с данными
func (tm *TemplateManager) Render(templateName string, data TemplateData) (string, error) {
	tm.mutex.RLock()
	tpl, exists := tm.templates[templateName]
	tm.mutex.RUnlock()

	if !exists {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

// AddTemplate добавляет шаблон в менеджер
func (tm *TemplateManager) AddTemplate(name string, templateStr string) error {
	tpl, err := template.New(name).Parse(templateStr)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()

	return nil
}

// Имена шаблонов
const (
	TemplateVerification  = "verification"
	TemplatePasswordReset = "password_reset"
	TemplateQuote         = "quote"
	TemplateTrialExpiring = "trial_expiring"
)

var builtinTemplates = map[string]string{
	TemplateVerification: `<html><body>
<h2>Welcome to {{.AppName}}</h2>
<p>Hi {{.Name}},</p>
<p>Please confirm your email address by clicking the link below:</p>
<p><a href="{{.VerifyURL}}">Confirm email</a></p>
<p>If you did not create an account, you can ignore this message.</p>
</body></html>`,

	TemplatePasswordReset: `<html><body>
<h2>Password reset</h2>
<p>Hi {{.Name}},</p>
<p>We received a request to reset your password. The link below is valid for one hour:</p>
<p><a href="{{.ResetURL}}">Reset password</a></p>
<p>If you did not request this, you can ignore this message.</p>
</body></html>`,

	TemplateQuote: `<html><body>
<h2>Your painting quote</h2>
<p>Dear {{.ClientName}},</p>
<p>Please find attached the quote for <strong>{{.ProjectName}}</strong>, prepared by {{.CompanyName}}.</p>
<table cellpadding="4">
<tr><td>Rooms</td><td>{{.RoomCount}}</td></tr>
<tr><td>Subtotal</td><td>{{.Currency}} {{printf "%.2f" .Subtotal}}</td></tr>
<tr><td>VAT</td><td>{{.Currency}} {{printf "%.2f" .VATAmount}}</td></tr>
<tr><td><strong>Total</strong></td><td><strong>{{.Currency}} {{printf "%.2f" .Total}}</strong></td></tr>
</table>
<p>This quote is valid for 30 days.</p>
</body></html>`,

	TemplateTrialExpiring: `<html><body>
<h2>Your trial is ending soon</h2>
<p>Hi {{.Name}},</p>
<p>Your {{.AppName}} trial ends in {{.DaysLeft}} day(s). Pick a plan to keep generating quotes without interruption.</p>
<p><a href="{{.PlansURL}}">View plans</a></p>
</body></html>`,
}
