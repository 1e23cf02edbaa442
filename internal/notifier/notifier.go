// Package notifier содержит хаб рассылки уведомлений о кликах подписчикам
// топиков отдельных URL.
package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/byuly/Urler/internal/models"
	"go.uber.org/zap"
)

const (
	// queueSize задаёт ёмкость входящей очереди сообщений
	queueSize = 256
	// subscriberBuffer задаёт ёмкость канала одного подписчика
	subscriberBuffer = 16
)

// Hub принимает сообщения о кликах и доставляет их подписчикам.
// Публикация не блокирует вызывающего: сообщения проходят через
// буферизированную очередь и единственную горутину-диспетчер, что
// сохраняет порядок доставки внутри топика одного URL.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[int64]map[chan models.ClickMessage]struct{}
	queue       chan models.ClickMessage
	logger      *zap.Logger
}

// NewHub создаёт новый экземпляр Hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subscribers: make(map[int64]map[chan models.ClickMessage]struct{}),
		queue:       make(chan models.ClickMessage, queueSize),
		logger:      logger,
	}
}

// Run запускает цикл диспетчера и работает до отмены контекста
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case msg := <-h.queue:
			h.dispatch(msg)
		case <-ctx.Done():
			// Доставляем уже принятые сообщения перед остановкой
			for {
				select {
				case msg := <-h.queue:
					h.dispatch(msg)
				default:
					return
				}
			}
		}
	}
}

// Publish ставит сообщение о клике в очередь доставки.
// При переполненной очереди сообщение отбрасывается с предупреждением:
// уведомление не должно задерживать или ронять обработку редиректа.
func (h *Hub) Publish(urlID, clicks int64, occurredAt time.Time) {
	msg := models.ClickMessage{
		URLID:     urlID,
		Clicks:    clicks,
		ClickDate: occurredAt,
	}
	select {
	case h.queue <- msg:
	default:
		h.logger.Warn("Notification queue is full, dropping click message", zap.Int64("url_id", urlID))
	}
}

// Subscribe создаёт подписку на топик URL и возвращает канал сообщений
func (h *Hub) Subscribe(urlID int64) chan models.ClickMessage {
	ch := make(chan models.ClickMessage, subscriberBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subscribers[urlID] == nil {
		h.subscribers[urlID] = make(map[chan models.ClickMessage]struct{})
	}
	h.subscribers[urlID][ch] = struct{}{}
	return ch
}

// Unsubscribe удаляет подписку и закрывает её канал
func (h *Hub) Unsubscribe(urlID int64, ch chan models.ClickMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs, ok := h.subscribers[urlID]
	if !ok {
		return
	}
	if _, ok := subs[ch]; !ok {
		return
	}
	delete(subs, ch)
	if len(subs) == 0 {
		delete(h.subscribers, urlID)
	}
	close(ch)
}

// dispatch доставляет сообщение всем подписчикам топика
func (h *Hub) dispatch(msg models.ClickMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[msg.URLID] {
		select {
		case ch <- msg:
		default:
			// Медленный подписчик пропускает сообщение
			h.logger.Warn("Subscriber channel is full, skipping message", zap.Int64("url_id", msg.URLID))
		}
	}
}
