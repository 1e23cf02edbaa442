package repository_test

import (
	"fmt"
	"time"

	"github.com/byuly/Urler/internal/models"
	"github.com/byuly/Urler/internal/repository"
)

// ExampleMemoryRepository_SaveURL демонстрирует сохранение связи в in-memory репозитории
func ExampleMemoryRepository_SaveURL() {
	// Создаём in-memory репозиторий
	repo := repository.NewMemoryRepository()

	// Сохраняем связь
	url, err := repo.SaveURL(models.URLMapping{
		ShortCode:   "abc123",
		OriginalURL: "https://example.com/very-long-url",
		UserID:      "user-123",
	})
	if err != nil {
		fmt.Printf("Ошибка сохранения: %v\n", err)
		return
	}

	fmt.Printf("Сохранена связь с ID: %d\n", url.ID)
	fmt.Printf("Короткий код: %s\n", url.ShortCode)

	// Повторный код отклоняется
	_, err = repo.SaveURL(models.URLMapping{ShortCode: "abc123", OriginalURL: "https://another.com"})
	fmt.Printf("Повторное сохранение: %v\n", err)

	// Output:
	// Сохранена связь с ID: 1
	// Короткий код: abc123
	// Повторное сохранение: alias already exists
}

// ExampleMemoryRepository_GetByCode демонстрирует получение связи по короткому коду
func ExampleMemoryRepository_GetByCode() {
	// Создаём in-memory репозиторий
	repo := repository.NewMemoryRepository()

	// Сохраняем связь
	repo.SaveURL(models.URLMapping{
		ShortCode:   "abc123",
		OriginalURL: "https://example.com/very-long-url",
		UserID:      "user-123",
	})

	// Получаем связь
	url, exists := repo.GetByCode("abc123")
	if !exists {
		fmt.Println("URL не найден")
		return
	}

	fmt.Printf("Короткий код: %s\n", url.ShortCode)
	fmt.Printf("Оригинальный URL: %s\n", url.OriginalURL)
	fmt.Printf("Пользователь: %s\n", url.UserID)

	// Output:
	// Короткий код: abc123
	// Оригинальный URL: https://example.com/very-long-url
	// Пользователь: user-123
}

// ExampleMemoryRepository_IncrementClicks демонстрирует подсчёт кликов
func ExampleMemoryRepository_IncrementClicks() {
	// Создаём in-memory репозиторий
	repo := repository.NewMemoryRepository()

	// Сохраняем связь
	saved, _ := repo.SaveURL(models.URLMapping{
		ShortCode:   "abc123",
		OriginalURL: "https://example.com/url1",
		UserID:      "user-123",
	})

	// Фиксируем два клика
	for i := 0; i < 2; i++ {
		url, err := repo.IncrementClicks("abc123")
		if err != nil {
			fmt.Printf("Ошибка инкремента: %v\n", err)
			return
		}
		repo.SaveClick(models.ClickEvent{URLID: saved.ID, OccurredAt: time.Now()})
		fmt.Printf("Кликов: %d\n", url.Clicks)
	}

	stats, _ := repo.GetStats()
	fmt.Printf("Событий в журнале: %d\n", stats.Clicks)

	// Output:
	// Кликов: 1
	// Кликов: 2
	// Событий в журнале: 2
}

// ExampleMemoryRepository_GetByUserID демонстрирует получение связей пользователя
func ExampleMemoryRepository_GetByUserID() {
	// Создаём in-memory репозиторий
	repo := repository.NewMemoryRepository()

	// Сохраняем связи для разных пользователей
	repo.SaveURL(models.URLMapping{ShortCode: "abc123", OriginalURL: "https://example.com/url1", UserID: "user-123"})
	repo.SaveURL(models.URLMapping{ShortCode: "def456", OriginalURL: "https://example.com/url2", UserID: "user-123"})
	repo.SaveURL(models.URLMapping{ShortCode: "ghi789", OriginalURL: "https://example.com/url3", UserID: "user-456"})

	// Получаем связи пользователя user-123
	urls, err := repo.GetByUserID("user-123")
	if err != nil {
		fmt.Printf("Ошибка получения URL: %v\n", err)
		return
	}

	fmt.Printf("Связей пользователя user-123: %d\n", len(urls))

	// Output:
	// Связей пользователя user-123: 2
}

// ExampleMemoryRepository_Clear демонстрирует очистку репозитория
func ExampleMemoryRepository_Clear() {
	// Создаём in-memory репозиторий
	repo := repository.NewMemoryRepository()

	// Сохраняем связи
	repo.SaveURL(models.URLMapping{ShortCode: "abc123", OriginalURL: "https://example.com/url1", UserID: "user-123"})
	repo.SaveURL(models.URLMapping{ShortCode: "def456", OriginalURL: "https://example.com/url2", UserID: "user-123"})

	// Проверяем наличие связей
	_, exists1 := repo.GetByCode("abc123")
	_, exists2 := repo.GetByCode("def456")
	fmt.Printf("До очистки: abc123=%t, def456=%t\n", exists1, exists2)

	// Очищаем репозиторий
	repo.Clear()

	// Проверяем после очистки
	_, exists1 = repo.GetByCode("abc123")
	_, exists2 = repo.GetByCode("def456")
	fmt.Printf("После очистки: abc123=%t, def456=%t\n", exists1, exists2)

	// Output:
	// До очистки: abc123=true, def456=true
	// После очистки: abc123=false, def456=false
}
