package workers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paintquote_backend/internal/email"
	"paintquote_backend/internal/entitlement"
	"paintquote_backend/internal/models"
	"paintquote_backend/internal/repositories"
)

type trialRepoStub struct {
	repositories.SubscriptionRepository

	expiring []models.Subscription
}

func (s *trialRepoStub) FindExpiringTrials(days int) ([]models.Subscription, error) {
	return s.expiring, nil
}

type userRepoStub struct {
	repositories.UserRepository

	users []models.User
}

func (s *userRepoStub) FindByCompany(companyID string) ([]models.User, error) {
	return s.users, nil
}

type senderStub struct {
	email.Provider

	sent []*email.Email
	data []email.TemplateData
}

func (s *senderStub) SendWithTemplate(templateName string, data email.TemplateData, msg *email.Email) error {
	s.sent = append(s.sent, msg)
	s.data = append(s.data, data)
	return nil
}

func newWorkerFixture(trialEnd time.Time) (*senderStub, *SubscriptionWorker) {
	subRepo := &trialRepoStub{expiring: []models.Subscription{{
		CompanyID: "cmp-1",
		TrialEnd:  trialEnd,
	}}}
	userRepo := &userRepoStub{users: []models.User{
		{CompanyID: "cmp-1", Name: "Owner", Email: "owner@acme.test", Role: models.UserRoleOwner},
		{CompanyID: "cmp-1", Name: "Member", Email: "member@acme.test", Role: models.UserRoleMember},
	}}
	sender := &senderStub{}
	engine := entitlement.NewEngine(entitlement.DefaultCatalog())
	return sender, NewSubscriptionWorker(subRepo, userRepo, sender, engine, "https://app.test/plans")
}

func TestTrialWarnPass_WarnsOwnersOnce(t *testing.T) {
	t.Parallel()

	sender, worker := newWorkerFixture(time.Now().Add(48 * time.Hour))

	worker.runTrialWarnPass()
	worker.runTrialWarnPass()

	// Одно письмо владельцу, участники пропущены, повторные прогоны
	// по тому же триалу не шлют снова
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"owner@acme.test"}, sender.sent[0].To)
}

func TestTrialWarnPass_DaysLeftCeilingRule(t *testing.T) {
	t.Parallel()

	sender, worker := newWorkerFixture(time.Now().Add(48 * time.Hour))

	worker.runTrialWarnPass()

	require.Len(t, sender.data, 1)
	// Чуть меньше 48 часов на момент отправки: 2 дня, не 3
	assert.Equal(t, 2, sender.data[0]["DaysLeft"])
}
