package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/travel-planner/backend/internal/models"
)

type PlannerLogRepository struct {
	db *pgxpool.Pool
}

type PlannerRequestLog struct {
	UserID          *uuid.UUID
	RequestType     string
	Mode            string
	RequestPayload  []byte
	ResponsePayload []byte
	RawResponse     string
	Success         bool
	ErrorMessage    *string
}

// NewPlannerLogRepository создает журнал обращений к планировщику.
func NewPlannerLogRepository(db *pgxpool.Pool) *PlannerLogRepository {
	return &PlannerLogRepository{db: db}
}

// LogRequest сохраняет обращение к планировщику.
func (r *PlannerLogRepository) LogRequest(ctx context.Context, log PlannerRequestLog) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO planner_requests
		 (user_id, request_type, mode, request_payload, response_payload, raw_response, success, error_message)
		 VALUES ($1, $2, $3, NULLIF($4, '')::jsonb, NULLIF($5, '')::jsonb, $6, $7, $8)`,
		log.UserID,
		log.RequestType,
		log.Mode,
		string(log.RequestPayload),
		string(log.ResponsePayload),
		log.RawResponse,
		log.Success,
		log.ErrorMessage,
	)
	return err
}

// Recent возвращает последние обращения путешественника.
func (r *PlannerLogRepository) Recent(ctx context.Context, userID uuid.UUID, limit int) ([]models.PlannerRequest, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_id, request_type, mode, request_payload, response_payload, success, error_message, created_at
		 FROM planner_requests
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.PlannerRequest, 0)
	for rows.Next() {
		var entry models.PlannerRequest
		var requestPayload, responsePayload []byte
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.RequestType, &entry.Mode, &requestPayload, &responsePayload, &entry.Success, &entry.ErrorMessage, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entry.RequestPayload = requestPayload
		entry.ResponsePayload = responsePayload
		out = append(out, entry)
	}
	return out, rows.Err()
}
