package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/byuly/Urler/internal/models"
	"go.uber.org/zap"
)

// PostgresRepository реализует интерфейс Repository с использованием PostgreSQL
type PostgresRepository struct {
	db     Database
	logger *zap.Logger
}

// NewPostgresRepository создаёт новый экземпляр PostgresRepository
func NewPostgresRepository(db Database, logger *zap.Logger) (*PostgresRepository, error) {
	if db == nil {
		return nil, nil
	}
	return &PostgresRepository{
		db:     db,
		logger: logger,
	}, nil
}

// SaveURL сохраняет связь в базе данных. Уникальность short_code
// обеспечивает constraint таблицы: вставка при конфликте не возвращает
// строку, и это трактуется как ErrAliasExists.
func (r *PostgresRepository) SaveURL(url models.URLMapping) (models.URLMapping, error) {
	err := r.db.QueryRow(
		"INSERT INTO urls (short_code, original_url, user_id, click_count, created_at) VALUES ($1, $2, $3, $4, $5) ON CONFLICT (short_code) DO NOTHING RETURNING id",
		url.ShortCode, url.OriginalURL, url.UserID, url.Clicks, url.CreatedAt,
	).Scan(&url.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.URLMapping{}, ErrAliasExists
	}
	if err != nil {
		r.logger.Error("Failed to save URL to database", zap.String("short_code", url.ShortCode), zap.Error(err))
		return models.URLMapping{}, err
	}
	return url, nil
}

// GetByCode возвращает связь по короткому коду, если она существует
func (r *PostgresRepository) GetByCode(code string) (models.URLMapping, bool) {
	var url models.URLMapping
	err := r.db.QueryRow(
		"SELECT id, short_code, original_url, user_id, click_count, created_at FROM urls WHERE short_code = $1",
		code,
	).Scan(&url.ID, &url.ShortCode, &url.OriginalURL, &url.UserID, &url.Clicks, &url.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.URLMapping{}, false
	}
	if err != nil {
		r.logger.Error("Failed to get URL from database", zap.String("short_code", code), zap.Error(err))
		return models.URLMapping{}, false
	}
	return url, true
}

// GetByUserID возвращает все связи пользователя
func (r *PostgresRepository) GetByUserID(userID string) ([]models.URLMapping, error) {
	rows, err := r.db.Query(
		"SELECT id, short_code, original_url, user_id, click_count, created_at FROM urls WHERE user_id = $1 ORDER BY id",
		userID,
	)
	if err != nil {
		r.logger.Error("Failed to get URLs by user", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	urls := make([]models.URLMapping, 0)
	for rows.Next() {
		var u models.URLMapping
		if err := rows.Scan(&u.ID, &u.ShortCode, &u.OriginalURL, &u.UserID, &u.Clicks, &u.CreatedAt); err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, rows.Err()
}

// IncrementClicks атомарно увеличивает счётчик кликов на стороне базы
func (r *PostgresRepository) IncrementClicks(code string) (models.URLMapping, error) {
	var url models.URLMapping
	err := r.db.QueryRow(
		"UPDATE urls SET click_count = click_count + 1 WHERE short_code = $1 RETURNING id, short_code, original_url, user_id, click_count, created_at",
		code,
	).Scan(&url.ID, &url.ShortCode, &url.OriginalURL, &url.UserID, &url.Clicks, &url.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.URLMapping{}, ErrURLNotFound
	}
	if err != nil {
		r.logger.Error("Failed to increment click counter", zap.String("short_code", code), zap.Error(err))
		return models.URLMapping{}, err
	}
	return url, nil
}

// SaveClick добавляет событие клика
func (r *PostgresRepository) SaveClick(click models.ClickEvent) (models.ClickEvent, error) {
	err := r.db.QueryRow(
		"INSERT INTO clicks (url_id, occurred_at) VALUES ($1, $2) RETURNING id",
		click.URLID, click.OccurredAt,
	).Scan(&click.ID)
	if err != nil {
		r.logger.Error("Failed to save click event", zap.Int64("url_id", click.URLID), zap.Error(err))
		return models.ClickEvent{}, err
	}
	return click, nil
}

// GetClicksByURL возвращает события клика одной связи в диапазоне [start, end] включительно
func (r *PostgresRepository) GetClicksByURL(urlID int64, start, end time.Time) ([]models.ClickEvent, error) {
	rows, err := r.db.Query(
		"SELECT id, url_id, occurred_at FROM clicks WHERE url_id = $1 AND occurred_at >= $2 AND occurred_at <= $3 ORDER BY occurred_at, id",
		urlID, start, end,
	)
	if err != nil {
		r.logger.Error("Failed to query click events", zap.Int64("url_id", urlID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return scanClicks(rows)
}

// GetClicksByURLs возвращает события клика набора связей в диапазоне [start, end)
func (r *PostgresRepository) GetClicksByURLs(urlIDs []int64, start, end time.Time) ([]models.ClickEvent, error) {
	if len(urlIDs) == 0 {
		return []models.ClickEvent{}, nil
	}

	rows, err := r.db.Query(
		"SELECT id, url_id, occurred_at FROM clicks WHERE url_id = ANY($1) AND occurred_at >= $2 AND occurred_at < $3 ORDER BY occurred_at, id",
		urlIDs, start, end,
	)
	if err != nil {
		r.logger.Error("Failed to query click events for URL set", zap.Int("urls", len(urlIDs)), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return scanClicks(rows)
}

// scanClicks читает события клика из результата запроса
func scanClicks(rows *sql.Rows) ([]models.ClickEvent, error) {
	events := make([]models.ClickEvent, 0)
	for rows.Next() {
		var c models.ClickEvent
		if err := rows.Scan(&c.ID, &c.URLID, &c.OccurredAt); err != nil {
			return nil, err
		}
		events = append(events, c)
	}
	return events, rows.Err()
}

// GetStats возвращает количество связей и кликов в базе
func (r *PostgresRepository) GetStats() (models.Stats, error) {
	var stats models.Stats
	if err := r.db.QueryRow("SELECT COUNT(*) FROM urls").Scan(&stats.URLs); err != nil {
		r.logger.Error("Failed to count URLs", zap.Error(err))
		return models.Stats{}, err
	}
	if err := r.db.QueryRow("SELECT COUNT(*) FROM clicks").Scan(&stats.Clicks); err != nil {
		r.logger.Error("Failed to count clicks", zap.Error(err))
		return models.Stats{}, err
	}
	return stats, nil
}

// Clear очищает все записи в таблицах urls и clicks
func (r *PostgresRepository) Clear() {
	_, err := r.db.Exec("TRUNCATE TABLE clicks, urls RESTART IDENTITY")
	if err != nil {
		r.logger.Error("Failed to clear database", zap.Error(err))
	}
}
