package app

import (
	"database/sql"

	"github.com/byuly/Urler/internal/repository"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB представляет подключение к базе данных
type DB struct {
	conn *sql.DB
}

// NewDB создаёт новое подключение к базе данных и готовит схему
func NewDB(dsn string) (repository.Database, error) {
	if dsn == "" {
		return nil, nil
	}

	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, err
	}

	// Создаём таблицу связей. Уникальный constraint на short_code —
	// авторитетная защита от конкурентного создания одного алиаса.
	_, err = conn.Exec(`
        CREATE TABLE IF NOT EXISTS urls (
            id BIGSERIAL PRIMARY KEY,
            short_code VARCHAR(64) UNIQUE NOT NULL,
            original_url TEXT NOT NULL,
            user_id VARCHAR NOT NULL DEFAULT '',
            click_count BIGINT NOT NULL DEFAULT 0,
            created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		conn.Close()
		return nil, err
	}

	// Таблица событий клика: только вставки, без обновлений
	_, err = conn.Exec(`
        CREATE TABLE IF NOT EXISTS clicks (
            id BIGSERIAL PRIMARY KEY,
            url_id BIGINT NOT NULL REFERENCES urls (id),
            occurred_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
        )
    `)
	if err != nil {
		conn.Close()
		return nil, err
	}

	// Индекс под выборки диапазонов аналитики
	_, err = conn.Exec("CREATE INDEX IF NOT EXISTS clicks_url_id_occurred_at_idx ON clicks (url_id, occurred_at)")
	if err != nil {
		conn.Close()
		return nil, err
	}

	return &DB{conn: conn}, nil
}

// Ping проверяет соединение с базой данных
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// Close закрывает соединение с базой данных
func (db *DB) Close() error {
	if db == nil || db.conn == nil {
		return nil
	}
	return db.conn.Close()
}

// Exec выполняет SQL-запрос с аргументами
func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) {
	return db.conn.Exec(query, args...)
}

// Query выполняет SQL-запрос и возвращает множество строк
func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) {
	return db.conn.Query(query, args...)
}

// QueryRow выполняет SQL-запрос и возвращает одну строку
func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row {
	return db.conn.QueryRow(query, args...)
}

// Begin начинает транзакцию
func (db *DB) Begin() (*sql.Tx, error) {
	if db == nil || db.conn == nil {
		return nil, sql.ErrConnDone
	}
	return db.conn.Begin()
}
