package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver name = "pgx"
	"github.com/pressly/goose/v3"

	"github.com/Gunvolt24/shop_admin/internal/ports"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// goose держит FS/диалект/логгер в глобальном состоянии.
var gooseMu sync.Mutex

// Up — применить все миграции из embed FS.
func Up(ctx context.Context, dsn string, log ports.Logger) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	return UpDB(ctx, db, log)
}

// UpDB — то же, что Up, но на уже открытом *sql.DB.
func UpDB(ctx context.Context, db *sql.DB, log ports.Logger) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(gooseLogger{ctx: ctx, log: log})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("goose set dialect: %w", err)
	}
	// каталог указываем относительно embed FS
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Version — текущая версия схемы.
func Version(ctx context.Context, db *sql.DB) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return 0, fmt.Errorf("goose set dialect: %w", err)
	}
	return goose.GetDBVersionContext(ctx, db)
}

// gooseLogger — goose.Logger поверх ports.Logger. Fatalf не роняет процесс.
type gooseLogger struct {
	ctx context.Context
	log ports.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	if l.log != nil {
		l.log.Infof(l.ctx, "goose: "+format, v...)
	}
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	if l.log != nil {
		l.log.Errorf(l.ctx, "goose: "+format, v...)
	}
}
