package config

import (
	"flag"
	"os"
	"strings"
	"time"
)

// Config содержит настройки приложения
type Config struct {
	RunAddr         string
	GRPCAddr        string
	BaseURL         string
	FileStoragePath string
	DatabaseDSN     string
	JWTSecret       string
	CookieTTL       time.Duration
	TrustedSubnet   string
}

// NewConfig создает и возвращает новый объект Config с настройками по
// умолчанию, парсит флаги командной строки и переменные окружения
func NewConfig() (*Config, error) {
	cfg := &Config{
		CookieTTL: 24 * time.Hour,
	}

	// Регистрируем флаги
	flagRunAddr := flag.String("a", ":8080", "address and port to run HTTP server")
	flagGRPCAddr := flag.String("g", "", "address and port to run gRPC server (disabled if empty)")
	flagBaseURL := flag.String("b", "http://localhost:8080", "base URL for shortened links")
	flagFilePath := flag.String("f", "", "path to file for storing URLs and clicks")
	flagDatabaseDSN := flag.String("d", "", "database DSN for PostgreSQL")
	flagJWTSecret := flag.String("j", "default_jwt_secret", "JWT secret key")
	flagTrustedSubnet := flag.String("t", "", "trusted subnet in CIDR notation for the stats endpoint")
	flag.Parse()

	cfg.RunAddr = *flagRunAddr
	cfg.GRPCAddr = *flagGRPCAddr
	cfg.BaseURL = *flagBaseURL
	cfg.FileStoragePath = *flagFilePath
	cfg.DatabaseDSN = *flagDatabaseDSN
	cfg.JWTSecret = *flagJWTSecret
	cfg.TrustedSubnet = *flagTrustedSubnet

	// Переменные окружения имеют приоритет над флагами
	if addr := os.Getenv("SERVER_ADDRESS"); addr != "" {
		cfg.RunAddr = addr
	}
	if addr := os.Getenv("GRPC_ADDRESS"); addr != "" {
		cfg.GRPCAddr = addr
	}
	if url := os.Getenv("BASE_URL"); url != "" {
		cfg.BaseURL = url
	}
	if path := os.Getenv("FILE_STORAGE_PATH"); path != "" {
		cfg.FileStoragePath = path
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		cfg.DatabaseDSN = dsn
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		cfg.JWTSecret = secret
	}
	if subnet := os.Getenv("TRUSTED_SUBNET"); subnet != "" {
		cfg.TrustedSubnet = subnet
	}

	// Валидация значений
	if !strings.Contains(cfg.RunAddr, ":") {
		cfg.RunAddr = ":" + cfg.RunAddr
	}
	if !strings.HasPrefix(cfg.BaseURL, "http://") && !strings.HasPrefix(cfg.BaseURL, "https://") {
		cfg.BaseURL = "http://" + cfg.BaseURL
	}

	return cfg, nil
}
