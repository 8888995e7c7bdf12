package models

import "time"

// Decisions assigned when no rule applies.
const (
	DecisionIncomplete = "INCOMPLETE"
	DecisionUnresolved = "UNRESOLVED"
)

// DeliberationRule maps an inclusive average score range to a decision.
type DeliberationRule struct {
	ID        string    `db:"id" json:"id"`
	MinScore  float64   `db:"min_score" json:"min_score"`
	MaxScore  float64   `db:"max_score" json:"max_score"`
	Decision  string    `db:"decision" json:"decision"`
	Label     string    `db:"label" json:"label"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Contains reports whether score falls within the rule range.
func (r DeliberationRule) Contains(score float64) bool {
	return score >= r.MinScore && score <= r.MaxScore
}

// Overlaps reports whether two rule ranges share at least one score.
func (r DeliberationRule) Overlaps(other DeliberationRule) bool {
	return r.MinScore <= other.MaxScore && other.MinScore <= r.MaxScore
}

// DeliberationOutcome is the decision computed for one student.
type DeliberationOutcome struct {
	StudentID   string   `json:"student_id"`
	StudentName string   `json:"student_name"`
	Average     *float64 `json:"average,omitempty"`
	MarkCount   int      `json:"mark_count"`
	Decision    string   `json:"decision"`
	Label       string   `json:"label,omitempty"`
	RuleID      string   `json:"rule_id,omitempty"`
}
