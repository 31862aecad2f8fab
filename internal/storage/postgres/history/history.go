package historystorage

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/boytur/cctv-viewer/internal/domain/models"
	"github.com/boytur/cctv-viewer/internal/storage/postgres"
)

type HistoryStorage struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *HistoryStorage {
	return &HistoryStorage{
		db: db,
	}
}

func (s *HistoryStorage) Save(event models.ViewEvent) error {
	const op = "storage.postgres.history.Save"

	query := fmt.Sprintf(`INSERT INTO %s (event_id, console_id, camera_id, mode, view_date, offset_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`, postgres.ViewHistoryTable)

	_, err := s.db.Exec(query,
		event.EventID,
		event.ConsoleID,
		event.CameraID,
		event.Mode,
		event.ViewDate,
		event.Offset,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *HistoryStorage) Recent(limit int) ([]models.ViewEvent, error) {
	const op = "storage.postgres.history.Recent"

	query := fmt.Sprintf(`SELECT event_id, console_id, camera_id, mode, view_date, offset_seconds, created_at
		FROM %s ORDER BY created_at DESC LIMIT $1`, postgres.ViewHistoryTable)

	var events []models.ViewEvent
	if err := s.db.Select(&events, query, limit); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return events, nil
}
