package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-academic-api/pkg/config"
)

func TestPQErrorClassification(t *testing.T) {
	serialization := fmt.Errorf("update roster slot: %w", &pq.Error{Code: "40001"})
	unique := &pq.Error{Code: "23505"}

	assert.True(t, IsSerializationFailure(serialization))
	assert.True(t, IsSerializationFailure(&pq.Error{Code: "40P01"}))
	assert.False(t, IsSerializationFailure(unique))
	assert.True(t, IsUniqueViolation(unique))
	assert.True(t, IsForeignKeyViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(errors.New("plain")))
	assert.False(t, IsSerializationFailure(nil))
}

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", Name: "school", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=school sslmode=disable", dsn)
}
