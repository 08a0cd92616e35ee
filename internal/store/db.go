package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jkaninda/resourcebot/internal/domain"
)

// recordRow is the database shape of one collection entry. All GORM usage is
// confined to this file; domain types remain ORM-free.
type recordRow struct {
	Collection   string `gorm:"primaryKey;size:32"`
	Key          string `gorm:"primaryKey;size:64"`
	CourseCode   string `gorm:"size:64;index"`
	FileID       string
	FileKind     string `gorm:"size:16"`
	UploaderID   int64
	UploaderName string
}

func (recordRow) TableName() string { return "records" }

// DBStore implements Store on a relational database, keeping the same
// full-replace Save semantics as the JSON backend: Save runs a transaction
// that deletes the collection's rows and re-inserts the mapping.
type DBStore struct {
	mu     sync.Mutex
	db     *gorm.DB
	logger *slog.Logger
}

// OpenSQLite opens a SQLite-backed store (pure Go driver, WAL mode).
func OpenSQLite(path string, slogger *slog.Logger) (*DBStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	dsn := fmt.Sprintf("%s?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)", path)
	db, err := gorm.Open(sqlite.Open(dsn), gormConfig(slogger))
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	return newDBStore(db, slogger)
}

// OpenPostgres opens a PostgreSQL-backed store.
func OpenPostgres(dsn string, slogger *slog.Logger) (*DBStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}
	db, err := gorm.Open(postgres.Open(dsn), gormConfig(slogger))
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	return newDBStore(db, slogger)
}

func gormConfig(slogger *slog.Logger) *gorm.Config {
	return &gorm.Config{
		Logger: logger.New(
			slogAdapter{slogger},
			logger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  logger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
}

func newDBStore(db *gorm.DB, slogger *slog.Logger) (*DBStore, error) {
	if err := db.AutoMigrate(&recordRow{}); err != nil {
		return nil, fmt.Errorf("migrating records table: %w", err)
	}
	return &DBStore{db: db, logger: slogger}, nil
}

// Load implements Store.
func (s *DBStore) Load(ctx context.Context, collection string) (map[string]domain.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx, collection)
}

func (s *DBStore) load(ctx context.Context, collection string) (map[string]domain.Record, error) {
	var rows []recordRow
	if err := s.db.WithContext(ctx).Where("collection = ?", collection).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("loading collection %s: %w", collection, err)
	}

	records := make(map[string]domain.Record, len(rows))
	for _, row := range rows {
		records[row.Key] = domain.Record{
			CourseCode:   row.CourseCode,
			FileID:       row.FileID,
			FileKind:     domain.FileKind(row.FileKind),
			UploaderID:   row.UploaderID,
			UploaderName: row.UploaderName,
		}
	}
	return records, nil
}

// Save implements Store.
func (s *DBStore) Save(ctx context.Context, collection string, records map[string]domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(ctx, collection, records)
}

func (s *DBStore) save(ctx context.Context, collection string, records map[string]domain.Record) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("collection = ?", collection).Delete(&recordRow{}).Error; err != nil {
			return fmt.Errorf("clearing collection %s: %w", collection, err)
		}
		if len(records) == 0 {
			return nil
		}
		rows := make([]recordRow, 0, len(records))
		for key, rec := range records {
			rows = append(rows, recordRow{
				Collection:   collection,
				Key:          key,
				CourseCode:   rec.CourseCode,
				FileID:       rec.FileID,
				FileKind:     string(rec.FileKind),
				UploaderID:   rec.UploaderID,
				UploaderName: rec.UploaderName,
			})
		}
		if err := tx.Create(&rows).Error; err != nil {
			return fmt.Errorf("saving collection %s: %w", collection, err)
		}
		s.logger.Debug("collection replaced",
			slog.String("collection", collection),
			slog.Int("rows", len(rows)),
		)
		return nil
	})
}

// Update implements Store.
func (s *DBStore) Update(ctx context.Context, collection string, fn func(map[string]domain.Record) bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load(ctx, collection)
	if err != nil {
		return err
	}
	if !fn(records) {
		return nil
	}
	return s.save(ctx, collection, records)
}

// Close implements Store.
func (s *DBStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// slogAdapter wraps *slog.Logger for GORM's logger.Writer interface.
type slogAdapter struct {
	logger *slog.Logger
}

func (s slogAdapter) Printf(format string, args ...any) {
	s.logger.Info(fmt.Sprintf(format, args...))
}
