package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-academic-api/internal/models"
)

func TestClassRepositoryListByYearLevel(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + classColumns + " FROM classes WHERE year_level = $1 AND LOWER(name) LIKE $2 ORDER BY year_level, name LIMIT 10 OFFSET 10")).
		WithArgs(2, "%ipa%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "year_level", "created_at", "updated_at"}).
			AddRow("class-1", "XI IPA 1", 2, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM classes WHERE year_level = $1 AND LOWER(name) LIKE $2")).
		WithArgs(2, "%ipa%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	classes, total, err := repo.List(context.Background(), models.ClassFilter{YearLevel: 2, Search: " IPA ", Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Len(t, classes, 1)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryCountActiveStudents(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE class_id = $1 AND active = TRUE")).
		WithArgs("class-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountActiveStudents(context.Background(), "class-1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
