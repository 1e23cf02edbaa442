package repository

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/byuly/Urler/internal/models"
	"go.uber.org/zap"
)

// fileRecord представляет одну строку журнала в JSON-файле.
// Записи вида "url" перечитываются по принципу "последняя побеждает",
// записи вида "click" только добавляются.
type fileRecord struct {
	Kind        string    `json:"kind"`
	ID          int64     `json:"id"`
	ShortCode   string    `json:"short_code,omitempty"`
	OriginalURL string    `json:"original_url,omitempty"`
	UserID      string    `json:"user_id,omitempty"`
	Clicks      int64     `json:"clicks,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
	URLID       int64     `json:"url_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at,omitempty"`
}

const (
	recordKindURL   = "url"
	recordKindClick = "click"
)

// FileRepository реализует интерфейс Repository с использованием файла-журнала
type FileRepository struct {
	mu          sync.RWMutex
	byCode      map[string]models.URLMapping
	clicks      []models.ClickEvent
	nextURLID   int64
	nextClickID int64
	file        *os.File
	logger      *zap.Logger
}

// NewFileRepository создаёт новый экземпляр FileRepository и перечитывает журнал
func NewFileRepository(filePath string, logger *zap.Logger) (*FileRepository, error) {
	repo := &FileRepository{
		byCode: make(map[string]models.URLMapping),
		logger: logger,
	}

	// Создаём директорию, если не существует
	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}

	// Читаем журнал построчно
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var record fileRecord
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			// Пропускаем некорректные строки и логируем это
			repo.logger.Warn("Skipping invalid JSON line", zap.String("line", string(scanner.Bytes())), zap.Error(err))
			continue
		}
		repo.replay(record)
	}
	if err := scanner.Err(); err != nil {
		file.Close()
		return nil, err
	}

	// Дальше только дописываем в конец
	if _, err := file.Seek(0, 2); err != nil {
		file.Close()
		return nil, err
	}
	repo.file = file

	return repo, nil
}

// replay применяет запись журнала к состоянию в памяти
func (r *FileRepository) replay(record fileRecord) {
	switch record.Kind {
	case recordKindURL:
		r.byCode[record.ShortCode] = models.URLMapping{
			ID:          record.ID,
			ShortCode:   record.ShortCode,
			OriginalURL: record.OriginalURL,
			UserID:      record.UserID,
			Clicks:      record.Clicks,
			CreatedAt:   record.CreatedAt,
		}
		if record.ID > r.nextURLID {
			r.nextURLID = record.ID
		}
	case recordKindClick:
		r.clicks = append(r.clicks, models.ClickEvent{
			ID:         record.ID,
			URLID:      record.URLID,
			OccurredAt: record.OccurredAt,
		})
		if record.ID > r.nextClickID {
			r.nextClickID = record.ID
		}
	default:
		r.logger.Warn("Skipping record with unknown kind", zap.String("kind", record.Kind))
	}
}

// appendRecord дописывает запись в конец журнала
func (r *FileRepository) appendRecord(record fileRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if _, err := r.file.Write(append(data, '\n')); err != nil {
		return err
	}
	return nil
}

// urlToRecord преобразует связь в запись журнала
func urlToRecord(u models.URLMapping) fileRecord {
	return fileRecord{
		Kind:        recordKindURL,
		ID:          u.ID,
		ShortCode:   u.ShortCode,
		OriginalURL: u.OriginalURL,
		UserID:      u.UserID,
		Clicks:      u.Clicks,
		CreatedAt:   u.CreatedAt,
	}
}

// SaveURL сохраняет связь в памяти и дописывает её в журнал
func (r *FileRepository) SaveURL(url models.URLMapping) (models.URLMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byCode[url.ShortCode]; exists {
		return models.URLMapping{}, ErrAliasExists
	}

	r.nextURLID++
	url.ID = r.nextURLID

	if err := r.appendRecord(urlToRecord(url)); err != nil {
		r.nextURLID--
		r.logger.Error("Failed to append URL record", zap.String("short_code", url.ShortCode), zap.Error(err))
		return models.URLMapping{}, err
	}

	r.byCode[url.ShortCode] = url
	return url, nil
}

// GetByCode возвращает связь по короткому коду, если она существует
func (r *FileRepository) GetByCode(code string) (models.URLMapping, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	url, exists := r.byCode[code]
	return url, exists
}

// GetByUserID возвращает все связи пользователя
func (r *FileRepository) GetByUserID(userID string) ([]models.URLMapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	urls := make([]models.URLMapping, 0)
	for _, u := range r.byCode {
		if u.UserID == userID {
			urls = append(urls, u)
		}
	}
	return urls, nil
}

// IncrementClicks увеличивает счётчик под мьютексом и дописывает
// обновлённую связь в журнал
func (r *FileRepository) IncrementClicks(code string) (models.URLMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	url, exists := r.byCode[code]
	if !exists {
		return models.URLMapping{}, ErrURLNotFound
	}
	url.Clicks++
	r.byCode[code] = url

	// Счётчик в памяти уже обновлён, ошибка записи не откатывает его
	if err := r.appendRecord(urlToRecord(url)); err != nil {
		r.logger.Error("Failed to append counter update", zap.String("short_code", code), zap.Error(err))
	}
	return url, nil
}

// SaveClick добавляет событие клика в память и журнал
func (r *FileRepository) SaveClick(click models.ClickEvent) (models.ClickEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextClickID++
	click.ID = r.nextClickID

	record := fileRecord{
		Kind:       recordKindClick,
		ID:         click.ID,
		URLID:      click.URLID,
		OccurredAt: click.OccurredAt,
	}
	if err := r.appendRecord(record); err != nil {
		r.nextClickID--
		r.logger.Error("Failed to append click record", zap.Int64("url_id", click.URLID), zap.Error(err))
		return models.ClickEvent{}, err
	}

	r.clicks = append(r.clicks, click)
	return click, nil
}

// GetClicksByURL возвращает события клика в диапазоне [start, end] включительно
func (r *FileRepository) GetClicksByURL(urlID int64, start, end time.Time) ([]models.ClickEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := make([]models.ClickEvent, 0)
	for _, c := range r.clicks {
		if c.URLID != urlID {
			continue
		}
		if c.OccurredAt.Before(start) || c.OccurredAt.After(end) {
			continue
		}
		events = append(events, c)
	}
	return events, nil
}

// GetClicksByURLs возвращает события клика для набора связей в диапазоне [start, end)
func (r *FileRepository) GetClicksByURLs(urlIDs []int64, start, end time.Time) ([]models.ClickEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make(map[int64]struct{}, len(urlIDs))
	for _, id := range urlIDs {
		ids[id] = struct{}{}
	}

	events := make([]models.ClickEvent, 0)
	for _, c := range r.clicks {
		if _, ok := ids[c.URLID]; !ok {
			continue
		}
		if c.OccurredAt.Before(start) || !c.OccurredAt.Before(end) {
			continue
		}
		events = append(events, c)
	}
	return events, nil
}

// GetStats возвращает количество связей и кликов в хранилище
func (r *FileRepository) GetStats() (models.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return models.Stats{
		URLs:   int64(len(r.byCode)),
		Clicks: int64(len(r.clicks)),
	}, nil
}

// Clear очищает память и усекает файл журнала
func (r *FileRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byCode = make(map[string]models.URLMapping)
	r.clicks = nil
	r.nextURLID = 0
	r.nextClickID = 0

	if err := r.file.Truncate(0); err != nil {
		r.logger.Error("Failed to truncate storage file", zap.Error(err))
		return
	}
	if _, err := r.file.Seek(0, 0); err != nil {
		r.logger.Error("Failed to rewind storage file", zap.Error(err))
	}
}

// Close закрывает файл журнала
func (r *FileRepository) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.file.Close()
}
