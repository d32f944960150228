package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/carewell/carehome-api/internal/model"
	"github.com/carewell/carehome-api/internal/repository"
)

type apiLogRepository struct {
	BaseRepository
}

func NewAPILogRepository(db *sqlx.DB) repository.APILogRepository {
	return &apiLogRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *apiLogRepository) Create(ctx context.Context, entry *model.APILog) error {
	query := `
		INSERT INTO api_logs (id, endpoint, method, request_body, response_code, response_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	if len(entry.RequestBody) > model.MaxLoggedBodyLen {
		entry.RequestBody = entry.RequestBody[:model.MaxLoggedBodyLen]
	}

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.Endpoint,
		entry.Method,
		entry.RequestBody,
		entry.ResponseCode,
		entry.ResponseTime,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create api log: %w", err)
	}
	return nil
}
