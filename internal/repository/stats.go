package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/travel-planner/backend/internal/models"
)

type StatsRepository struct {
	db *pgxpool.Pool
}

type OverviewStats struct {
	TotalItineraries    int
	AIItineraries       int
	TemplateItineraries int
	TotalDays           int
	AverageBudget       float64
}

type KindSpend struct {
	Kind  models.ItemKind
	Items int
	Spent float64
}

// NewStatsRepository создает репозиторий статистики.
func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

// Overview возвращает сводку по сохраненным маршрутам путешественника.
func (r *StatsRepository) Overview(ctx context.Context, userID uuid.UUID) (OverviewStats, error) {
	var stats OverviewStats

	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE source = 'ai'),
		        COUNT(*) FILTER (WHERE source = 'template'),
		        COALESCE(SUM(trip_length), 0),
		        COALESCE(AVG(budget), 0)::float8
		 FROM saved_itineraries
		 WHERE user_id = $1`,
		userID,
	).Scan(&stats.TotalItineraries, &stats.AIItineraries, &stats.TemplateItineraries, &stats.TotalDays, &stats.AverageBudget)
	return stats, err
}

// SpendingByKind суммирует цены элементов маршрута по видам.
func (r *StatsRepository) SpendingByKind(ctx context.Context, userID, itineraryID uuid.UUID) ([]KindSpend, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM saved_itineraries WHERE id = $1 AND user_id = $2
		)`,
		itineraryID, userID,
	).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	rows, err := r.db.Query(ctx,
		`SELECT item->>'type' AS kind,
		        COUNT(*),
		        COALESCE(SUM(GREATEST((item->>'price')::numeric, 0)), 0)::float8
		 FROM saved_itineraries s
		 CROSS JOIN LATERAL jsonb_array_elements(s.itinerary) AS day
		 CROSS JOIN LATERAL jsonb_array_elements(day->'items') AS item
		 WHERE s.id = $1
		 GROUP BY kind
		 ORDER BY kind`,
		itineraryID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]KindSpend, 0, 3)
	for rows.Next() {
		var spend KindSpend
		if err := rows.Scan(&spend.Kind, &spend.Items, &spend.Spent); err != nil {
			return nil, err
		}
		out = append(out, spend)
	}
	return out, rows.Err()
}
