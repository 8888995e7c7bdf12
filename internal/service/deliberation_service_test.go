package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-academic-api/internal/dto"
	"github.com/noah-isme/sma-academic-api/internal/models"
	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
)

type deliberationRepoStub struct {
	rules []models.DeliberationRule
}

func (s *deliberationRepoStub) ListRules(context.Context) ([]models.DeliberationRule, error) {
	return s.rules, nil
}

func (s *deliberationRepoStub) CreateRule(_ context.Context, rule *models.DeliberationRule) error {
	rule.ID = "rule-new"
	s.rules = append(s.rules, *rule)
	return nil
}

func (s *deliberationRepoStub) DeleteRule(context.Context, string) error {
	return nil
}

type averagerStub []models.StudentAverage

func (s averagerStub) AveragesByClass(context.Context, string, int) ([]models.StudentAverage, error) {
	return s, nil
}

func floatPtr(v float64) *float64 { return &v }

func newDeliberationFixture(averages averagerStub) (*DeliberationService, *deliberationRepoStub) {
	repo := &deliberationRepoStub{rules: []models.DeliberationRule{
		{ID: "rule-fail", MinScore: 0, MaxScore: 59.99, Decision: "REPEAT"},
		{ID: "rule-pass", MinScore: 60, MaxScore: 100, Decision: "PROMOTE", Label: "Promoted"},
	}}
	classes := &classLookupStub{items: map[string]*models.Class{classOneID: {ID: classOneID}}}
	return NewDeliberationService(repo, averages, classes, nil, nil), repo
}

func TestDeliberationServiceCreateRuleRejectsOverlap(t *testing.T) {
	svc, repo := newDeliberationFixture(nil)
	repo.rules = repo.rules[:1]

	_, err := svc.CreateRule(context.Background(), dto.CreateDeliberationRuleRequest{MinScore: floatPtr(50), MaxScore: floatPtr(100), Decision: "promote"})
	assertCode(t, err, appErrors.ErrConflict)

	rule, err := svc.CreateRule(context.Background(), dto.CreateDeliberationRuleRequest{MinScore: floatPtr(60), MaxScore: floatPtr(100), Decision: " promote "})
	require.NoError(t, err)
	assert.Equal(t, "PROMOTE", rule.Decision)

	_, err = svc.CreateRule(context.Background(), dto.CreateDeliberationRuleRequest{MinScore: floatPtr(80), MaxScore: floatPtr(70), Decision: "X"})
	assertCode(t, err, appErrors.ErrValidation)
}

func TestDeliberationServiceEvaluate(t *testing.T) {
	svc, _ := newDeliberationFixture(averagerStub{
		{StudentID: studentOneID, StudentName: "Ani", Average: floatPtr(75), MarkCount: 4},
		{StudentID: studentTwoID, StudentName: "Budi", Average: floatPtr(42.5), MarkCount: 2},
		{StudentID: studentThreeID, StudentName: "Citra", MarkCount: 0},
		{StudentID: studentFourID, StudentName: "Dewi", Average: floatPtr(59.995), MarkCount: 1},
		{StudentID: studentFiveID, StudentName: "Eka", Average: floatPtr(60), MarkCount: 3},
	})

	resp, err := svc.Evaluate(context.Background(), dto.EvaluateRequest{ClassID: classOneID, AcademicYear: 2024})
	require.NoError(t, err)
	require.Len(t, resp.Outcomes, 5)

	decisions := map[string]string{}
	for _, o := range resp.Outcomes {
		decisions[o.StudentID] = o.Decision
	}
	assert.Equal(t, "PROMOTE", decisions[studentOneID])
	assert.Equal(t, "REPEAT", decisions[studentTwoID])
	assert.Equal(t, models.DecisionIncomplete, decisions[studentThreeID])
	assert.Equal(t, models.DecisionUnresolved, decisions[studentFourID])
	assert.Equal(t, "PROMOTE", decisions[studentFiveID])
	assert.Equal(t, "Promoted", resp.Outcomes[0].Label)

	_, err = svc.Evaluate(context.Background(), dto.EvaluateRequest{ClassID: classMissingID, AcademicYear: 2024})
	assertCode(t, err, appErrors.ErrNotFound)
}
