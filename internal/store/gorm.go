package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/serroba/url-shortener/internal/shortener"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// mappingRecord is the GORM model of the url_mappings table.
type mappingRecord struct {
	ID        string    `gorm:"primaryKey;size:36"`
	OwnerID   string    `gorm:"size:191;not null;uniqueIndex:idx_url_mappings_owner_code,priority:1"`
	Code      string    `gorm:"size:191;not null;uniqueIndex:idx_url_mappings_owner_code,priority:2"`
	LongURL   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"precision:6;not null"`
}

// TableName pins the table name.
func (mappingRecord) TableName() string {
	return "url_mappings"
}

// OpenGorm opens a GORM connection for driver ("sqlite" or "mysql") and
// migrates the url_mappings table.
func OpenGorm(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported gorm driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver == "sqlite" {
		// SQLite allows a single writer; serialize through one connection.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}

		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&mappingRecord{}); err != nil {
		return nil, fmt.Errorf("migrate url_mappings: %w", err)
	}

	return db, nil
}

// GormStore is a GORM implementation of shortener.Repository backed by
// SQLite or MySQL. The composite unique index enforces (owner, code) uniqueness.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed mapping store.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (g *GormStore) Insert(ctx context.Context, m *shortener.Mapping) error {
	record := mappingRecord{
		ID:        m.ID.String(),
		OwnerID:   string(m.Owner),
		Code:      string(m.Code),
		LongURL:   m.LongURL,
		CreatedAt: m.CreatedAt,
	}

	if err := g.db.WithContext(ctx).Create(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shortener.ErrCodeAlreadyTaken
		}

		return err
	}

	return nil
}

func (g *GormStore) Get(ctx context.Context, owner shortener.OwnerID, code shortener.Code) (*shortener.Mapping, error) {
	var record mappingRecord

	err := g.db.WithContext(ctx).
		Where("owner_id = ? AND code = ?", string(owner), string(code)).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	return record.toMapping()
}

func (g *GormStore) List(ctx context.Context, owner shortener.OwnerID) ([]*shortener.Mapping, error) {
	var records []mappingRecord

	// ids are UUIDv7, so ordering by id breaks created_at ties in creation order
	err := g.db.WithContext(ctx).
		Where("owner_id = ?", string(owner)).
		Order("created_at ASC").
		Order("id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}

	mappings := make([]*shortener.Mapping, 0, len(records))

	for i := range records {
		m, err := records[i].toMapping()
		if err != nil {
			return nil, err
		}

		mappings = append(mappings, m)
	}

	return mappings, nil
}

func (g *GormStore) Delete(ctx context.Context, owner shortener.OwnerID, code shortener.Code) error {
	result := g.db.WithContext(ctx).
		Where("owner_id = ? AND code = ?", string(owner), string(code)).
		Delete(&mappingRecord{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return shortener.ErrNotFound
	}

	return nil
}

// Ping checks database connectivity.
func (g *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

// Shutdown closes the underlying database connection.
func (g *GormStore) Shutdown() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

func (r *mappingRecord) toMapping() (*shortener.Mapping, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("parse mapping id %q: %w", r.ID, err)
	}

	return &shortener.Mapping{
		ID:        id,
		Owner:     shortener.OwnerID(r.OwnerID),
		LongURL:   r.LongURL,
		Code:      shortener.Code(r.Code),
		CreatedAt: r.CreatedAt.UTC(),
	}, nil
}

// Compile-time check.
var _ shortener.Repository = (*GormStore)(nil)
