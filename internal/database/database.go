package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/example/amarshop/internal/models"
	"github.com/example/amarshop/internal/session"
)

// Connect opens the session database, creating it when missing, and runs
// migrations.
func Connect(dsn string, log *zap.Logger) (*gorm.DB, error) {
	if err := ensureDatabase(dsn); err != nil {
		return nil, fmt.Errorf("ensure database: %w", err)
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := migrate(conn); err != nil {
		return nil, fmt.Errorf("database migration failed: %w", err)
	}

	log.Info("session database ready")
	return conn, nil
}

func migrate(conn *gorm.DB) error {
	migrations := []interface{}{
		&models.SessionEntry{},
	}

	for _, migration := range migrations {
		if err := conn.AutoMigrate(migration); err != nil {
			return err
		}
	}

	return nil
}

func ensureDatabase(dsn string) error {
	if !strings.HasPrefix(dsn, "postgres://") && !strings.HasPrefix(dsn, "postgresql://") {
		return nil
	}

	parsed, err := url.Parse(dsn)
	if err != nil {
		return err
	}

	dbName := strings.TrimPrefix(parsed.Path, "/")
	if dbName == "" {
		return nil
	}

	parsed.Path = "/postgres"
	masterDSN := parsed.String()

	sqlDB, err := sql.Open("postgres", masterDSN)
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return err
	}

	var exists bool
	if err := sqlDB.QueryRow("SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)", dbName).Scan(&exists); err != nil {
		return err
	}

	if exists {
		return nil
	}

	_, err = sqlDB.Exec("CREATE DATABASE " + pq.QuoteIdentifier(dbName))
	return err
}

// SessionBackend persists visitor sessions in the session_entries table.
type SessionBackend struct {
	db *gorm.DB
}

// NewSessionBackend wraps an open connection.
func NewSessionBackend(db *gorm.DB) *SessionBackend {
	return &SessionBackend{db: db}
}

// Open returns the storage of sessionID.
func (b *SessionBackend) Open(sessionID string) session.Storage {
	return &sessionStorage{db: b.db, id: sessionID}
}

// Purge removes entries not written since cutoff and returns how many went.
func (b *SessionBackend) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	res := b.db.WithContext(ctx).
		Where("updated_at < ?", cutoff).
		Delete(&models.SessionEntry{})
	return res.RowsAffected, res.Error
}

type sessionStorage struct {
	db *gorm.DB
	id string
}

func (s *sessionStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var entry models.SessionEntry
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND key = ?", s.id, key).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

func (s *sessionStorage) Apply(ctx context.Context, set map[string]string, del []string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(del) > 0 {
			if err := tx.Where("session_id = ? AND key IN ?", s.id, del).
				Delete(&models.SessionEntry{}).Error; err != nil {
				return err
			}
		}
		if len(set) == 0 {
			return nil
		}

		entries := make([]models.SessionEntry, 0, len(set))
		for k, v := range set {
			entries = append(entries, models.SessionEntry{SessionID: s.id, Key: k, Value: v})
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&entries).Error
	})
}

// Update serializes read-modify-write cycles of one session with a
// transaction-scoped advisory lock, which also covers keys that do not exist
// yet and so have no row to lock.
func (s *sessionStorage) Update(ctx context.Context, key string, fn func(string, bool) (string, error)) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", s.id).Error; err != nil {
			return fmt.Errorf("lock session: %w", err)
		}

		var entry models.SessionEntry
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("session_id = ? AND key = ?", s.id, key).
			First(&entry).Error
		exists := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		next, err := fn(entry.Value, exists)
		if err != nil {
			return err
		}
		if next == "" {
			return tx.Where("session_id = ? AND key = ?", s.id, key).
				Delete(&models.SessionEntry{}).Error
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&models.SessionEntry{SessionID: s.id, Key: key, Value: next}).Error
	})
}
