package repository

import (
	"sync"
	"time"

	"github.com/byuly/Urler/internal/models"
)

// MemoryRepository реализует интерфейс Repository с использованием map
type MemoryRepository struct {
	mu          sync.RWMutex
	byCode      map[string]models.URLMapping
	clicks      []models.ClickEvent
	nextURLID   int64
	nextClickID int64
}

// NewMemoryRepository создаёт новый экземпляр MemoryRepository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		byCode: make(map[string]models.URLMapping),
	}
}

// SaveURL сохраняет связь, если короткий код ещё не занят
func (r *MemoryRepository) SaveURL(url models.URLMapping) (models.URLMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byCode[url.ShortCode]; exists {
		return models.URLMapping{}, ErrAliasExists
	}

	r.nextURLID++
	url.ID = r.nextURLID
	r.byCode[url.ShortCode] = url
	return url, nil
}

// GetByCode возвращает связь по короткому коду, если она существует
func (r *MemoryRepository) GetByCode(code string) (models.URLMapping, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	url, exists := r.byCode[code]
	return url, exists
}

// GetByUserID возвращает все связи пользователя
func (r *MemoryRepository) GetByUserID(userID string) ([]models.URLMapping, error) {
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

// IncrementClicks атомарно увеличивает счётчик кликов под мьютексом
func (r *MemoryRepository) IncrementClicks(code string) (models.URLMapping, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	url, exists := r.byCode[code]
	if !exists {
		return models.URLMapping{}, ErrURLNotFound
	}
	url.Clicks++
	r.byCode[code] = url
	return url, nil
}

// SaveClick добавляет событие клика в журнал
func (r *MemoryRepository) SaveClick(click models.ClickEvent) (models.ClickEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextClickID++
	click.ID = r.nextClickID
	r.clicks = append(r.clicks, click)
	return click, nil
}

// GetClicksByURL возвращает события клика в диапазоне [start, end] включительно
func (r *MemoryRepository) GetClicksByURL(urlID int64, start, end time.Time) ([]models.ClickEvent, error) {
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
func (r *MemoryRepository) GetClicksByURLs(urlIDs []int64, start, end time.Time) ([]models.ClickEvent, error) {
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
func (r *MemoryRepository) GetStats() (models.Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return models.Stats{
		URLs:   int64(len(r.byCode)),
		Clicks: int64(len(r.clicks)),
	}, nil
}

// Clear очищает хранилище
func (r *MemoryRepository) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byCode = make(map[string]models.URLMapping)
	r.clicks = nil
	r.nextURLID = 0
	r.nextClickID = 0
}
