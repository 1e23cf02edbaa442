package repository

import (
	"database/sql"
	"errors"
	"time"

	"github.com/byuly/Urler/internal/models"
)

// ErrAliasExists возвращается при попытке сохранить короткий код, который уже занят
var ErrAliasExists = errors.New("alias already exists")

// ErrURLNotFound возвращается, когда короткий код отсутствует в хранилище
var ErrURLNotFound = errors.New("URL not found")

// Repository определяет интерфейс для работы с хранилищем URL и кликов
type Repository interface {
	// SaveURL сохраняет новую связь и возвращает её с присвоенным ID.
	// Уникальность short_code гарантирует хранилище: при конфликте
	// возвращается ErrAliasExists и запись не создаётся.
	SaveURL(url models.URLMapping) (models.URLMapping, error)
	// GetByCode возвращает связь по короткому коду и флаг существования
	GetByCode(code string) (models.URLMapping, bool)
	// GetByUserID возвращает все связи, созданные пользователем
	GetByUserID(userID string) ([]models.URLMapping, error)
	// IncrementClicks атомарно увеличивает счётчик кликов на единицу
	// и возвращает обновлённую связь или ErrURLNotFound
	IncrementClicks(code string) (models.URLMapping, error)
	// SaveClick добавляет событие клика и возвращает его с присвоенным ID
	SaveClick(click models.ClickEvent) (models.ClickEvent, error)
	// GetClicksByURL возвращает события клика для одной связи в диапазоне
	// [start, end] включительно, в порядке записи
	GetClicksByURL(urlID int64, start, end time.Time) ([]models.ClickEvent, error)
	// GetClicksByURLs возвращает события клика для набора связей в
	// полуоткрытом диапазоне [start, end), в порядке записи
	GetClicksByURLs(urlIDs []int64, start, end time.Time) ([]models.ClickEvent, error)
	// GetStats возвращает суммарную статистику хранилища
	GetStats() (models.Stats, error)
	// Clear очищает все данные в хранилище
	Clear()
}

// Database определяет интерфейс для работы с базой данных
type Database interface {
	// Ping проверяет соединение с базой данных
	Ping() error
	// Close закрывает соединение с базой данных
	Close() error
	// Exec выполняет SQL-команду без возврата результатов
	Exec(query string, args ...interface{}) (sql.Result, error)
	// Query выполняет SQL-запрос и возвращает результаты
	Query(query string, args ...interface{}) (*sql.Rows, error)
	// QueryRow выполняет SQL-запрос и возвращает одну строку результата
	QueryRow(query string, args ...interface{}) *sql.Row
	// Begin начинает новую транзакцию
	Begin() (*sql.Tx, error)
}
