// Package proto содержит интерфейс gRPC сервиса коротких URL
package proto

import (
	"context"

	"google.golang.org/grpc"
)

// UrlerServiceServer представляет интерфейс gRPC сервиса
type UrlerServiceServer interface {
	CreateShortURL(ctx context.Context, req *CreateShortURLRequest) (*CreateShortURLResponse, error)
	ResolveURL(ctx context.Context, req *ResolveURLRequest) (*ResolveURLResponse, error)
	GetUserURLs(ctx context.Context, req *GetUserURLsRequest) (*GetUserURLsResponse, error)
	GetURLAnalytics(ctx context.Context, req *GetURLAnalyticsRequest) (*GetURLAnalyticsResponse, error)
	GetTotalClicks(ctx context.Context, req *GetTotalClicksRequest) (*GetTotalClicksResponse, error)
	Ping(ctx context.Context, req *PingRequest) (*PingResponse, error)
	GetStats(ctx context.Context, req *GetStatsRequest) (*GetStatsResponse, error)
}

// UnimplementedUrlerServiceServer предоставляет базовую реализацию интерфейса
type UnimplementedUrlerServiceServer struct{}

// CreateShortURL предоставляет базовую реализацию создания короткого URL
func (UnimplementedUrlerServiceServer) CreateShortURL(ctx context.Context, req *CreateShortURLRequest) (*CreateShortURLResponse, error) {
	return nil, nil
}

// ResolveURL предоставляет базовую реализацию разрешения короткого кода
func (UnimplementedUrlerServiceServer) ResolveURL(ctx context.Context, req *ResolveURLRequest) (*ResolveURLResponse, error) {
	return nil, nil
}

// GetUserURLs предоставляет базовую реализацию получения URL пользователя
func (UnimplementedUrlerServiceServer) GetUserURLs(ctx context.Context, req *GetUserURLsRequest) (*GetUserURLsResponse, error) {
	return nil, nil
}

// GetURLAnalytics предоставляет базовую реализацию аналитики одного URL
func (UnimplementedUrlerServiceServer) GetURLAnalytics(ctx context.Context, req *GetURLAnalyticsRequest) (*GetURLAnalyticsResponse, error) {
	return nil, nil
}

// GetTotalClicks предоставляет базовую реализацию суммарной аналитики
func (UnimplementedUrlerServiceServer) GetTotalClicks(ctx context.Context, req *GetTotalClicksRequest) (*GetTotalClicksResponse, error) {
	return nil, nil
}

// Ping предоставляет базовую реализацию проверки состояния сервиса
func (UnimplementedUrlerServiceServer) Ping(ctx context.Context, req *PingRequest) (*PingResponse, error) {
	return nil, nil
}

// GetStats предоставляет базовую реализацию получения статистики сервиса
func (UnimplementedUrlerServiceServer) GetStats(ctx context.Context, req *GetStatsRequest) (*GetStatsResponse, error) {
	return nil, nil
}

// RegisterUrlerServiceServer регистрирует реализацию сервиса в gRPC сервере
func RegisterUrlerServiceServer(s *grpc.Server, srv UrlerServiceServer) {
	// В реальном проекте это было бы автоматически сгенерировано protoc
	// Здесь заглушка для демонстрации
}
