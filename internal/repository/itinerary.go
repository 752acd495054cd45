package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/travel-planner/backend/internal/models"
)

const (
	maxNameLength        = 200
	maxDestinationLength = 200

	itineraryColumns = `id, user_id, name, destination, budget, currency, trip_length, travelers, source, itinerary, budget_plan, created_at, updated_at`
)

type ItineraryRepository struct {
	db *pgxpool.Pool
}

// ItineraryInput - данные для создания или замены сохраненного маршрута.
type ItineraryInput struct {
	Name        string
	Destination string
	Budget      float64
	Currency    string
	TripLength  int
	Travelers   int
	Source      models.ItinerarySource
	Itinerary   models.Itinerary
	BudgetPlan  models.BudgetPlan
}

// NewItineraryRepository создает репозиторий сохраненных маршрутов.
func NewItineraryRepository(db *pgxpool.Pool) *ItineraryRepository {
	return &ItineraryRepository{db: db}
}

// Create сохраняет маршрут путешественника.
func (r *ItineraryRepository) Create(ctx context.Context, userID uuid.UUID, input ItineraryInput) (models.SavedItinerary, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return models.SavedItinerary{}, err
	}

	itineraryJSON, planJSON, err := encodeDocuments(input)
	if err != nil {
		return models.SavedItinerary{}, err
	}

	row := r.db.QueryRow(ctx,
		`INSERT INTO saved_itineraries (id, user_id, name, destination, budget, currency, trip_length, travelers, source, itinerary, budget_plan)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb, $11::jsonb)
		 RETURNING `+itineraryColumns,
		uuid.New(), userID, input.Name, input.Destination, input.Budget, input.Currency, input.TripLength, input.Travelers, input.Source, itineraryJSON, planJSON,
	)
	return scanItinerary(row)
}

// List возвращает маршруты путешественника, новые первыми.
func (r *ItineraryRepository) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.SavedItinerary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+itineraryColumns+`
		 FROM saved_itineraries
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.SavedItinerary, 0)
	for rows.Next() {
		saved, err := scanItinerary(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, saved)
	}
	return out, rows.Err()
}

// GetByID возвращает маршрут, если он принадлежит путешественнику.
func (r *ItineraryRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (models.SavedItinerary, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+itineraryColumns+`
		 FROM saved_itineraries
		 WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	saved, err := scanItinerary(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return saved, ErrNotFound
	}
	return saved, err
}

// Update заменяет содержимое маршрута.
func (r *ItineraryRepository) Update(ctx context.Context, userID, id uuid.UUID, input ItineraryInput) (models.SavedItinerary, error) {
	input, err := normalizeInput(input)
	if err != nil {
		return models.SavedItinerary{}, err
	}

	itineraryJSON, planJSON, err := encodeDocuments(input)
	if err != nil {
		return models.SavedItinerary{}, err
	}

	row := r.db.QueryRow(ctx,
		`UPDATE saved_itineraries
		 SET name = $3,
		     destination = $4,
		     budget = $5,
		     currency = $6,
		     trip_length = $7,
		     travelers = $8,
		     source = $9,
		     itinerary = $10::jsonb,
		     budget_plan = $11::jsonb,
		     updated_at = NOW()
		 WHERE id = $1 AND user_id = $2
		 RETURNING `+itineraryColumns,
		id, userID, input.Name, input.Destination, input.Budget, input.Currency, input.TripLength, input.Travelers, input.Source, itineraryJSON, planJSON,
	)
	saved, err := scanItinerary(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return saved, ErrNotFound
	}
	return saved, err
}

// Delete удаляет маршрут.
func (r *ItineraryRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM saved_itineraries WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Mutate блокирует строку маршрута, применяет изменение и сохраняет результат
// в одной транзакции.
func (r *ItineraryRepository) Mutate(ctx context.Context, userID, id uuid.UUID, mutate func(models.SavedItinerary) (models.SavedItinerary, error)) (models.SavedItinerary, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return models.SavedItinerary{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	current, err := scanItinerary(tx.QueryRow(ctx,
		`SELECT `+itineraryColumns+`
		 FROM saved_itineraries
		 WHERE id = $1 AND user_id = $2
		 FOR UPDATE`,
		id, userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return current, ErrNotFound
		}
		return current, err
	}

	next, err := mutate(current)
	if err != nil {
		return current, err
	}

	itineraryJSON, err := json.Marshal(next.Itinerary)
	if err != nil {
		return current, err
	}
	planJSON, err := json.Marshal(next.BudgetPlan)
	if err != nil {
		return current, err
	}

	updated, err := scanItinerary(tx.QueryRow(ctx,
		`UPDATE saved_itineraries
		 SET itinerary = $2::jsonb,
		     budget_plan = $3::jsonb,
		     updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+itineraryColumns,
		id, string(itineraryJSON), string(planJSON),
	))
	if err != nil {
		return current, err
	}

	if err := tx.Commit(ctx); err != nil {
		return current, err
	}
	return updated, nil
}

func normalizeInput(input ItineraryInput) (ItineraryInput, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Destination = strings.TrimSpace(input.Destination)
	input.Currency = strings.ToUpper(strings.TrimSpace(input.Currency))

	switch {
	case input.Name == "" || utf8.RuneCountInString(input.Name) > maxNameLength:
		return input, fmt.Errorf("%w: name must be 1-%d characters", ErrInvalid, maxNameLength)
	case utf8.RuneCountInString(input.Destination) > maxDestinationLength:
		return input, fmt.Errorf("%w: destination is too long", ErrInvalid)
	case input.Budget < 0:
		return input, fmt.Errorf("%w: budget must not be negative", ErrInvalid)
	case input.TripLength < 1:
		return input, fmt.Errorf("%w: trip length must be positive", ErrInvalid)
	case len(input.Itinerary) != input.TripLength:
		return input, fmt.Errorf("%w: itinerary has %d days, expected %d", ErrInvalid, len(input.Itinerary), input.TripLength)
	}

	if input.Currency == "" {
		input.Currency = "USD"
	}
	if input.Travelers < 1 {
		input.Travelers = 1
	}
	if input.Source != models.SourceTemplate {
		input.Source = models.SourceAI
	}
	return input, nil
}

func encodeDocuments(input ItineraryInput) (string, string, error) {
	itineraryJSON, err := json.Marshal(input.Itinerary)
	if err != nil {
		return "", "", err
	}
	planJSON, err := json.Marshal(input.BudgetPlan)
	if err != nil {
		return "", "", err
	}
	return string(itineraryJSON), string(planJSON), nil
}

func scanItinerary(row pgx.Row) (models.SavedItinerary, error) {
	var saved models.SavedItinerary
	var itineraryJSON, planJSON []byte

	err := row.Scan(&saved.ID, &saved.UserID, &saved.Name, &saved.Destination, &saved.Budget, &saved.Currency,
		&saved.TripLength, &saved.Travelers, &saved.Source, &itineraryJSON, &planJSON, &saved.CreatedAt, &saved.UpdatedAt)
	if err != nil {
		return saved, err
	}

	if err := json.Unmarshal(itineraryJSON, &saved.Itinerary); err != nil {
		return saved, fmt.Errorf("decode itinerary %s: %w", saved.ID, err)
	}
	if err := json.Unmarshal(planJSON, &saved.BudgetPlan); err != nil {
		return saved, fmt.Errorf("decode budget plan %s: %w", saved.ID, err)
	}
	return saved, nil
}
