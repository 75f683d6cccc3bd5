// Package repository provides data access layer implementations for the application.
package repository

import (
	"errors"
	"strings"

	"agora/internal/database"
	"agora/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrUniqueViolation is returned when an insert loses a race on a unique key.
var ErrUniqueViolation = errors.New("unique constraint violation")

func readDB(primary *gorm.DB) *gorm.DB {
	if db := database.GetReadDB(); db != nil {
		return db
	}
	return primary
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// notFoundOr maps gorm.ErrRecordNotFound to a NOT_FOUND AppError.
func notFoundOr(err error, resource string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}
	return err
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
