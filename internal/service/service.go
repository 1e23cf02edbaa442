package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/byuly/Urler/internal/models"
	"github.com/byuly/Urler/internal/repository"
	"github.com/golang-jwt/jwt/v4"
	"go.uber.org/zap"
)

var (
	ErrEmptyURL         = errors.New("empty URL")
	ErrUniqueCodeFailed = errors.New("failed to generate unique short code")
	ErrInvalidToken     = errors.New("invalid token")
)

// AliasConflictError возвращается, когда запрошенный пользовательский
// алиас уже занят
type AliasConflictError struct {
	Alias string
}

func (e *AliasConflictError) Error() string {
	return fmt.Sprintf("custom alias '%s' is already taken", e.Alias)
}

const (
	// shortCodeLength задаёт длину генерируемого короткого кода
	shortCodeLength = 8
	// shortCodeAlphabet задаёт алфавит генерируемого короткого кода
	shortCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	// maxGenerateAttempts ограничивает повторные попытки при конфликте
	// сгенерированного кода
	maxGenerateAttempts = 5
	// dayLayout задаёт формат календарной даты в агрегатах
	dayLayout = "2006-01-02"
	// tokenTTL задаёт срок действия JWT
	tokenTTL = 24 * time.Hour
)

// Publisher описывает рассылку уведомлений о кликах подписчикам топика URL
type Publisher interface {
	// Publish отправляет сообщение о клике, не блокируя вызывающего
	Publish(urlID, clicks int64, occurredAt time.Time)
}

// Service реализует логику работы с короткими URL и аналитикой кликов
type Service struct {
	repo      repository.Repository
	publisher Publisher
	baseURL   string
	jwtSecret string
	logger    *zap.Logger
}

// NewService создаёт новый экземпляр Service
func NewService(repo repository.Repository, publisher Publisher, baseURL, jwtSecret string, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		baseURL:   baseURL,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

// GenerateShortCode генерирует короткий код из 8 алфавитно-цифровых символов
func (s *Service) GenerateShortCode() (string, error) {
	return randomString(shortCodeLength)
}

// randomString возвращает строку заданной длины из символов алфавита
func randomString(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	for i, b := range bytes {
		bytes[i] = shortCodeAlphabet[int(b)%len(shortCodeAlphabet)]
	}
	return string(bytes), nil
}

// CreateShortURL создаёт связь короткого кода и оригинального URL.
// Непустой customAlias используется как код и при занятости приводит к
// AliasConflictError. Иначе код генерируется, а конфликт вставки
// разрешается повторной генерацией: гарантом уникальности остаётся
// constraint хранилища, не предварительная проверка.
func (s *Service) CreateShortURL(originalURL, customAlias, userID string) (models.URLMapping, error) {
	if originalURL == "" {
		return models.URLMapping{}, ErrEmptyURL
	}

	now := time.Now()

	if alias := strings.TrimSpace(customAlias); alias != "" {
		// Предварительная проверка ради дружелюбной ошибки
		if _, exists := s.repo.GetByCode(alias); exists {
			return models.URLMapping{}, &AliasConflictError{Alias: alias}
		}
		url, err := s.repo.SaveURL(models.URLMapping{
			ShortCode:   alias,
			OriginalURL: originalURL,
			UserID:      userID,
			CreatedAt:   now,
		})
		if errors.Is(err, repository.ErrAliasExists) {
			// Гонка двух создателей одного алиаса: победил другой
			return models.URLMapping{}, &AliasConflictError{Alias: alias}
		}
		if err != nil {
			return models.URLMapping{}, err
		}
		return url, nil
	}

	for i := 0; i < maxGenerateAttempts; i++ {
		code, err := s.GenerateShortCode()
		if err != nil {
			return models.URLMapping{}, err
		}
		url, err := s.repo.SaveURL(models.URLMapping{
			ShortCode:   code,
			OriginalURL: originalURL,
			UserID:      userID,
			CreatedAt:   now,
		})
		if errors.Is(err, repository.ErrAliasExists) {
			continue
		}
		if err != nil {
			return models.URLMapping{}, err
		}
		return url, nil
	}
	return models.URLMapping{}, ErrUniqueCodeFailed
}

// RecordClick фиксирует переход по короткому коду: атомарно увеличивает
// счётчик, добавляет событие клика и публикует уведомление. Возвращает
// обновлённую связь или repository.ErrURLNotFound без побочных эффектов.
func (s *Service) RecordClick(code string) (models.URLMapping, error) {
	url, err := s.repo.IncrementClicks(code)
	if err != nil {
		return models.URLMapping{}, err
	}

	now := time.Now()
	if _, err := s.repo.SaveClick(models.ClickEvent{URLID: url.ID, OccurredAt: now}); err != nil {
		// Счётчик уже увеличен и не откатывается: учёт at-least-once,
		// редирект важнее идеальной точности журнала
		s.logger.Error("Failed to record click event", zap.String("short_code", code), zap.Error(err))
	}

	if s.publisher != nil {
		s.publisher.Publish(url.ID, url.Clicks, now)
	}
	return url, nil
}

// GetOriginalURL возвращает оригинальный URL по короткому коду
func (s *Service) GetOriginalURL(code string) (string, bool) {
	url, exists := s.repo.GetByCode(code)
	if !exists {
		return "", false
	}
	return url.OriginalURL, true
}

// Get возвращает связь по короткому коду
func (s *Service) Get(code string) (models.URLMapping, bool) {
	return s.repo.GetByCode(code)
}

// GetURLsByUserID возвращает все связи пользователя
func (s *Service) GetURLsByUserID(userID string) ([]models.URLMapping, error) {
	return s.repo.GetByUserID(userID)
}

// ClicksByDay группирует клики одной связи по календарным дням в
// диапазоне [start, end] включительно. Дни без кликов опускаются.
func (s *Service) ClicksByDay(code string, start, end time.Time) ([]models.DayClicks, error) {
	url, exists := s.repo.GetByCode(code)
	if !exists {
		return nil, repository.ErrURLNotFound
	}

	events, err := s.repo.GetClicksByURL(url.ID, start, end)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	for _, e := range events {
		counts[e.OccurredAt.Format(dayLayout)]++
	}

	days := make([]models.DayClicks, 0, len(counts))
	for date, count := range counts {
		days = append(days, models.DayClicks{Date: date, Count: count})
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date < days[j].Date
	})
	return days, nil
}

// TotalClicksByUser группирует клики всех связей пользователя по
// календарным дням. Обе даты включительны: верхней границей по времени
// становится полночь дня, следующего за end.
func (s *Service) TotalClicksByUser(userID string, start, end time.Time) (map[string]int64, error) {
	urls, err := s.repo.GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(urls))
	for i, u := range urls {
		ids[i] = u.ID
	}

	from := startOfDay(start)
	to := startOfDay(end).AddDate(0, 0, 1)
	events, err := s.repo.GetClicksByURLs(ids, from, to)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64)
	for _, e := range events {
		counts[e.OccurredAt.Format(dayLayout)]++
	}
	return counts, nil
}

// startOfDay возвращает полночь календарного дня момента t
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// GetStats возвращает суммарную статистику сервиса
func (s *Service) GetStats() (models.Stats, error) {
	return s.repo.GetStats()
}

// GetBaseURL возвращает базовый адрес коротких ссылок
func (s *Service) GetBaseURL() string {
	return s.baseURL
}

// BuildShortURL собирает полный короткий URL для кода
func (s *Service) BuildShortURL(code string) string {
	return strings.TrimRight(s.baseURL, "/") + "/" + code
}

// claims описывает полезную нагрузку JWT
type claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
}

// GenerateUserID генерирует идентификатор пользователя
func (s *Service) GenerateUserID() (string, error) {
	return randomString(shortCodeLength)
}

// GenerateJWT создаёт подписанный токен с идентификатором пользователя
func (s *Service) GenerateJWT(userID string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		UserID: userID,
	})
	return token.SignedString([]byte(s.jwtSecret))
}

// ParseJWT проверяет токен и возвращает идентификатор пользователя
func (s *Service) ParseJWT(tokenString string) (string, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !parsed.Valid {
		return "", ErrInvalidToken
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || c.UserID == "" {
		return "", ErrInvalidToken
	}
	return c.UserID, nil
}
