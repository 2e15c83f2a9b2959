package repository

import (
	"context"
	"errors"

	"roomrental/internal/domain"

	"gorm.io/gorm"
)

type LocationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

type locationModel struct {
	ID   int64  `gorm:"column:id;primaryKey"`
	Name string `gorm:"column:name;size:64;uniqueIndex"`
}

func (locationModel) TableName() string { return "locations" }

func (r *LocationRepository) List(ctx context.Context) ([]domain.Location, error) {
	var models []locationModel
	tx := r.db.WithContext(ctx).Order("id").Find(&models)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.Location, 0, len(models))
	for _, m := range models {
		out = append(out, domain.Location{ID: m.ID, Name: m.Name})
	}
	return out, nil
}

func (r *LocationRepository) Exists(ctx context.Context, name string) (bool, error) {
	var cnt int64
	tx := r.db.WithContext(ctx).
		Model(&locationModel{}).
		Where("name = ?", name).
		Count(&cnt)
	if tx.Error != nil {
		return false, tx.Error
	}
	return cnt > 0, nil
}

func (r *LocationRepository) Upsert(ctx context.Context, name string) error {
	var m locationModel
	err := r.db.WithContext(ctx).Where("name = ?", name).First(&m).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return r.db.WithContext(ctx).Create(&locationModel{Name: name}).Error
}
