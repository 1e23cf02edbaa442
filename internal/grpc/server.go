// Package grpc содержит реализацию gRPC сервера для сервиса коротких URL
package grpc

import (
	"context"
	"errors"
	"time"

	"github.com/byuly/Urler/internal/grpc/proto"
	"github.com/byuly/Urler/internal/models"
	"github.com/byuly/Urler/internal/repository"
	"github.com/byuly/Urler/internal/service"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	dateTimeLayout = "2006-01-02T15:04:05"
	dateLayout     = "2006-01-02"
)

// Server реализует gRPC сервер для сервиса коротких URL
type Server struct {
	proto.UnimplementedUrlerServiceServer
	svc    *service.Service
	db     repository.Database
	logger *zap.Logger
}

// NewServer создаёт новый gRPC сервер
func NewServer(svc *service.Service, db repository.Database, logger *zap.Logger) *Server {
	return &Server{
		svc:    svc,
		db:     db,
		logger: logger,
	}
}

// CreateShortURL обрабатывает создание короткого URL
func (s *Server) CreateShortURL(ctx context.Context, req *proto.CreateShortURLRequest) (*proto.CreateShortURLResponse, error) {
	if req.OriginalURL == "" {
		return nil, status.Error(codes.InvalidArgument, "original URL is required")
	}

	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	mapping, err := s.svc.CreateShortURL(req.OriginalURL, req.CustomAlias, userID)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &proto.CreateShortURLResponse{
		URL: s.toURLInfo(mapping),
	}, nil
}

// ResolveURL обрабатывает разрешение короткого кода с фиксацией клика
func (s *Server) ResolveURL(ctx context.Context, req *proto.ResolveURLRequest) (*proto.ResolveURLResponse, error) {
	if req.ShortCode == "" {
		return nil, status.Error(codes.InvalidArgument, "short code is required")
	}

	mapping, err := s.svc.RecordClick(req.ShortCode)
	if err != nil {
		if errors.Is(err, repository.ErrURLNotFound) {
			return &proto.ResolveURLResponse{
				Found: false,
			}, nil
		}
		return nil, s.mapError(err)
	}

	return &proto.ResolveURLResponse{
		OriginalURL: mapping.OriginalURL,
		Clicks:      mapping.Clicks,
		Found:       true,
	}, nil
}

// GetUserURLs возвращает все URL пользователя
func (s *Server) GetUserURLs(ctx context.Context, req *proto.GetUserURLsRequest) (*proto.GetUserURLsResponse, error) {
	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	urls, err := s.svc.GetURLsByUserID(userID)
	if err != nil {
		return nil, s.mapError(err)
	}

	userUrls := make([]*proto.URLInfo, len(urls))
	for i, u := range urls {
		userUrls[i] = s.toURLInfo(u)
	}
	return &proto.GetUserURLsResponse{
		UserUrls: userUrls,
	}, nil
}

// GetURLAnalytics возвращает клики одного URL, сгруппированные по дням
func (s *Server) GetURLAnalytics(ctx context.Context, req *proto.GetURLAnalyticsRequest) (*proto.GetURLAnalyticsResponse, error) {
	if req.ShortCode == "" {
		return nil, status.Error(codes.InvalidArgument, "short code is required")
	}
	start, err := time.ParseInLocation(dateTimeLayout, req.StartDate, time.Local)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "start date must be an ISO-8601 local date-time")
	}
	end, err := time.ParseInLocation(dateTimeLayout, req.EndDate, time.Local)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "end date must be an ISO-8601 local date-time")
	}

	days, err := s.svc.ClicksByDay(req.ShortCode, start, end)
	if err != nil {
		return nil, s.mapError(err)
	}

	return &proto.GetURLAnalyticsResponse{
		Days: toDayPoints(days),
	}, nil
}

// GetTotalClicks возвращает суммарные клики пользователя по дням
func (s *Server) GetTotalClicks(ctx context.Context, req *proto.GetTotalClicksRequest) (*proto.GetTotalClicksResponse, error) {
	userID, err := getUserIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	start, err := time.ParseInLocation(dateLayout, req.StartDate, time.Local)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "start date must be an ISO-8601 date")
	}
	end, err := time.ParseInLocation(dateLayout, req.EndDate, time.Local)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "end date must be an ISO-8601 date")
	}

	totals, err := s.svc.TotalClicksByUser(userID, start, end)
	if err != nil {
		return nil, s.mapError(err)
	}

	days := make([]*proto.DayClicksPoint, 0, len(totals))
	for date, count := range totals {
		days = append(days, &proto.DayClicksPoint{Date: date, Count: count})
	}
	return &proto.GetTotalClicksResponse{
		Days: days,
	}, nil
}

// Ping проверяет состояние сервиса
func (s *Server) Ping(ctx context.Context, req *proto.PingRequest) (*proto.PingResponse, error) {
	if s.db == nil {
		return &proto.PingResponse{DatabaseAvailable: false}, nil
	}

	err := s.db.Ping()
	return &proto.PingResponse{
		DatabaseAvailable: err == nil,
	}, nil
}

// GetStats возвращает суммарную статистику сервиса
func (s *Server) GetStats(ctx context.Context, req *proto.GetStatsRequest) (*proto.GetStatsResponse, error) {
	stats, err := s.svc.GetStats()
	if err != nil {
		return nil, s.mapError(err)
	}

	return &proto.GetStatsResponse{
		UrlsCount:   stats.URLs,
		ClicksCount: stats.Clicks,
	}, nil
}

// toURLInfo преобразует связь в представление gRPC
func (s *Server) toURLInfo(u models.URLMapping) *proto.URLInfo {
	return &proto.URLInfo{
		ID:          u.ID,
		URL:         u.OriginalURL,
		ShortCode:   u.ShortCode,
		ShortURL:    s.svc.BuildShortURL(u.ShortCode),
		Clicks:      u.Clicks,
		DateCreated: u.CreatedAt.Format(time.RFC3339),
		UserID:      u.UserID,
	}
}

// toDayPoints преобразует агрегаты по дням в представление gRPC
func toDayPoints(days []models.DayClicks) []*proto.DayClicksPoint {
	points := make([]*proto.DayClicksPoint, len(days))
	for i, d := range days {
		points[i] = &proto.DayClicksPoint{Date: d.Date, Count: d.Count}
	}
	return points
}

// mapError переводит доменные ошибки в коды gRPC
func (s *Server) mapError(err error) error {
	var conflict *service.AliasConflictError
	switch {
	case errors.As(err, &conflict):
		return status.Error(codes.AlreadyExists, conflict.Error())
	case errors.Is(err, repository.ErrURLNotFound):
		return status.Error(codes.NotFound, "URL not found")
	case errors.Is(err, service.ErrEmptyURL):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		s.logger.Error("Unexpected error", zap.Error(err))
		return status.Error(codes.Internal, "internal error")
	}
}
