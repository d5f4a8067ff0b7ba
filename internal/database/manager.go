package database

import (
	"log/slog"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dormhub/dormdash/pkg/model"
)

type DatabaseManager struct {
	db     *gorm.DB
	logger *slog.Logger
}

func New(db *gorm.DB) *DatabaseManager {
	return &DatabaseManager{
		db:     db,
		logger: slog.With("logger", "dbm"),
	}
}

func Open(path string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
}

func (mm *DatabaseManager) Migrate() error {
	if mm == nil || mm.db == nil {
		return nil
	}

	return mm.db.AutoMigrate(&model.Invite{}, &model.WorkOrder{}, &model.Room{})
}

func (mm *DatabaseManager) Create(s any) error {
	if mm == nil || mm.db == nil {
		return nil
	}

	err := mm.db.Create(s).Error

	if err != nil {
		mm.logger.Error("error create object", slog.Any("error", err))
	}

	return err
}

func (mm *DatabaseManager) Save(s any) error {
	if mm == nil || mm.db == nil {
		return nil
	}

	err := mm.db.Save(s).Error

	if err != nil {
		mm.logger.Error("error saving object", slog.Any("error", err))
	}

	return err
}

func (mm *DatabaseManager) InviteQuery() *InviteQuery {
	return NewInviteQuery(mm.db)
}

func (mm *DatabaseManager) WorkOrderQuery() *WorkOrderQuery {
	return NewWorkOrderQuery(mm.db)
}

func (mm *DatabaseManager) RoomQuery() *RoomQuery {
	return NewRoomQuery(mm.db)
}
