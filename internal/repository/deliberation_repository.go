package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-academic-api/internal/models"
)

// DeliberationRepository persists promotion rules.
type DeliberationRepository struct {
	db *sqlx.DB
}

// NewDeliberationRepository constructs the repository.
func NewDeliberationRepository(db *sqlx.DB) *DeliberationRepository {
	return &DeliberationRepository{db: db}
}

// ListRules returns rules ordered by their lower bound.
func (r *DeliberationRepository) ListRules(ctx context.Context) ([]models.DeliberationRule, error) {
	var rules []models.DeliberationRule
	if err := r.db.SelectContext(ctx, &rules, `SELECT id, min_score, max_score, decision, label, created_at FROM deliberation_rules ORDER BY min_score`); err != nil {
		return nil, fmt.Errorf("list deliberation rules: %w", err)
	}
	return rules, nil
}

// CreateRule inserts a rule.
func (r *DeliberationRepository) CreateRule(ctx context.Context, rule *models.DeliberationRule) error {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	rule.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO deliberation_rules (id, min_score, max_score, decision, label, created_at) VALUES (:id, :min_score, :max_score, :decision, :label, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rule); err != nil {
		return fmt.Errorf("create deliberation rule: %w", err)
	}
	return nil
}

// DeleteRule removes a rule.
func (r *DeliberationRepository) DeleteRule(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM deliberation_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete deliberation rule: %w", err)
	}
	return expectAffected(res, "delete deliberation rule")
}
