package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

// Un UUID malformado genera 22P02 en el motor; para el dominio equivale a una
// fila ausente, igual que en la implementación en memoria.
func TestIsMissingRow(t *testing.T) {
	assert.True(t, isMissingRow(pgx.ErrNoRows))
	assert.True(t, isMissingRow(&pgconn.PgError{Code: "22P02"}))

	assert.False(t, isMissingRow(nil))
	assert.False(t, isMissingRow(errors.New("conexión perdida")))
	assert.False(t, isMissingRow(&pgconn.PgError{Code: "23505"}))
}

func TestIsSerializationFailure(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "55P03"} {
		assert.True(t, isSerializationFailure(&pgconn.PgError{Code: code}), code)
	}
	assert.False(t, isSerializationFailure(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isSerializationFailure(errors.New("otro fallo")))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "22P02"}))
	assert.False(t, isUniqueViolation(nil))
}
