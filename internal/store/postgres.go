package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type roomRecord struct {
	Code      string `gorm:"primaryKey;size:16"`
	State     []byte `gorm:"not null"`
	UpdatedAt time.Time
}

func (roomRecord) TableName() string { return "rooms" }

type postgresStore struct {
	db  *gorm.DB
	log *zap.Logger
}

func OpenPostgres(dsn string, log *zap.Logger) (Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&roomRecord{}); err != nil {
		return nil, fmt.Errorf("migrate rooms table: %w", err)
	}
	return &postgresStore{db: db, log: log}, nil
}

func (s *postgresStore) Load(ctx context.Context, code string) ([]byte, bool, error) {
	var rec roomRecord
	err := s.db.WithContext(ctx).First(&rec, "code = ?", code).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load room %s: %w", code, err)
	}
	return rec.State, true, nil
}

func (s *postgresStore) Save(ctx context.Context, code string, blob []byte) error {
	rec := roomRecord{Code: code, State: blob, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"state", "updated_at"}),
		}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("save room %s: %w", code, err)
	}
	return nil
}

func (s *postgresStore) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
