// Package snapshotstore persists coordinator table snapshots to MySQL via
// gorm, for cold-start recovery and auditing of accepted history.
package snapshotstore

import (
	"context"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"tablesync/internal/sheet"
)

// Record is the persisted row: one accepted version's serialized table.
type Record struct {
	CoordinatorID string        `gorm:"primaryKey;type:varchar(64)"`
	Version       sheet.Version `gorm:"primaryKey"`
	Content       string        `gorm:"type:longtext"`
	CreatedAt     time.Time
}

// TableName pins gorm's default pluralization to a single known table.
func (Record) TableName() string { return "table_snapshots" }

// Store persists and retrieves Records.
type Store struct {
	db *gorm.DB
}

// Open connects to dsn and migrates the snapshot table.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(gormmysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Save inserts a snapshot for coordinatorID at version. A duplicate
// (coordinatorID, version) pair is treated as already-saved, not an error
// — the same version can be snapshotted more than once by a retrying
// caller without that being a failure.
func (s *Store) Save(ctx context.Context, coordinatorID string, version sheet.Version, content string) error {
	err := s.db.WithContext(ctx).Create(&Record{
		CoordinatorID: coordinatorID,
		Version:       version,
		Content:       content,
	}).Error
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return nil
		}
		return err
	}
	return nil
}

// Latest returns the most recent snapshot for coordinatorID, or
// (Record{}, false) if none exists.
func (s *Store) Latest(ctx context.Context, coordinatorID string) (Record, bool, error) {
	var rec Record
	err := s.db.WithContext(ctx).
		Where("coordinator_id = ?", coordinatorID).
		Order("version DESC").
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}
	return rec, true, nil
}
