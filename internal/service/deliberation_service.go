package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-academic-api/internal/dto"
	"github.com/noah-isme/sma-academic-api/internal/models"
	appErrors "github.com/noah-isme/sma-academic-api/pkg/errors"
	"github.com/noah-isme/sma-academic-api/pkg/validation"
)

type deliberationRepository interface {
	ListRules(ctx context.Context) ([]models.DeliberationRule, error)
	CreateRule(ctx context.Context, rule *models.DeliberationRule) error
	DeleteRule(ctx context.Context, id string) error
}

type classAverager interface {
	AveragesByClass(ctx context.Context, classID string, academicYear int) ([]models.StudentAverage, error)
}

// DeliberationService maps yearly averages to decisions using score range rules.
type DeliberationService struct {
	rules     deliberationRepository
	marks     classAverager
	classes   classLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDeliberationService constructs DeliberationService.
func NewDeliberationService(rules deliberationRepository, marks classAverager, classes classLookup, validate *validator.Validate, logger *zap.Logger) *DeliberationService {
	if validate == nil {
		validate = validation.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeliberationService{rules: rules, marks: marks, classes: classes, validator: validate, logger: logger}
}

// ListRules returns the rules ordered by minimum score.
func (s *DeliberationService) ListRules(ctx context.Context) ([]models.DeliberationRule, error) {
	rules, err := s.rules.ListRules(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list deliberation rules")
	}
	return rules, nil
}

// CreateRule adds a rule whose range does not overlap an existing one.
func (s *DeliberationService) CreateRule(ctx context.Context, req dto.CreateDeliberationRuleRequest) (*models.DeliberationRule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err, "invalid deliberation rule payload")
	}
	rule := models.DeliberationRule{
		MinScore: *req.MinScore,
		MaxScore: *req.MaxScore,
		Decision: strings.ToUpper(strings.TrimSpace(req.Decision)),
		Label:    strings.TrimSpace(req.Label),
	}
	if rule.MinScore > rule.MaxScore {
		return nil, appErrors.Clone(appErrors.ErrValidation, "min_score must not exceed max_score")
	}

	existing, err := s.rules.ListRules(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list deliberation rules")
	}
	for _, other := range existing {
		if rule.Overlaps(other) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "score range overlaps rule "+other.Decision)
		}
	}

	if err := s.rules.CreateRule(ctx, &rule); err != nil {
		return nil, appErrors.Internal(err, "failed to create deliberation rule")
	}
	return &rule, nil
}

// DeleteRule removes a rule.
func (s *DeliberationService) DeleteRule(ctx context.Context, id string) error {
	if err := s.rules.DeleteRule(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "deliberation rule not found")
		}
		return appErrors.Internal(err, "failed to delete deliberation rule")
	}
	return nil
}

// Evaluate computes the decision of every active student of a class. It reads only.
func (s *DeliberationService) Evaluate(ctx context.Context, req dto.EvaluateRequest) (*dto.EvaluateResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err, "invalid evaluation payload")
	}
	if _, err := s.classes.FindByID(ctx, req.ClassID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Internal(err, "failed to load class")
	}

	rules, err := s.rules.ListRules(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list deliberation rules")
	}
	averages, err := s.marks.AveragesByClass(ctx, req.ClassID, req.AcademicYear)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to compute class averages")
	}

	resp := &dto.EvaluateResponse{ClassID: req.ClassID, AcademicYear: req.AcademicYear, Outcomes: make([]models.DeliberationOutcome, 0, len(averages))}
	for _, avg := range averages {
		resp.Outcomes = append(resp.Outcomes, decide(avg, rules))
	}
	return resp, nil
}

func decide(avg models.StudentAverage, rules []models.DeliberationRule) models.DeliberationOutcome {
	outcome := models.DeliberationOutcome{
		StudentID:   avg.StudentID,
		StudentName: avg.StudentName,
		Average:     avg.Average,
		MarkCount:   avg.MarkCount,
	}
	if avg.Average == nil || avg.MarkCount == 0 {
		outcome.Decision = models.DecisionIncomplete
		return outcome
	}
	for _, rule := range rules {
		if rule.Contains(*avg.Average) {
			outcome.Decision = rule.Decision
			outcome.Label = rule.Label
			outcome.RuleID = rule.ID
			return outcome
		}
	}
	outcome.Decision = models.DecisionUnresolved
	return outcome
}
