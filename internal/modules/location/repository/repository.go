package repository

import (
	"context"

	"anoa.com/rickmortyapi/internal/entity"
	"anoa.com/rickmortyapi/pkg/database"
	"gorm.io/gorm"
)

type Filter struct {
	Name      string
	Type      string
	Dimension string
}

type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	FindByID(ctx context.Context, id uint) (*entity.Location, error)
	FindAll(ctx context.Context, filter Filter) ([]*entity.Location, error)
	Update(ctx context.Context, location *entity.Location) error
	// Delete removes favorites of the location and unlinks characters that
	// came from or were last seen there.
	Delete(ctx context.Context, id uint) error
}

type locationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) Create(ctx context.Context, location *entity.Location) error {
	return r.db.WithContext(ctx).Create(location).Error
}

func (r *locationRepository) FindByID(ctx context.Context, id uint) (*entity.Location, error) {
	var location entity.Location
	if err := r.db.WithContext(ctx).First(&location, id).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

func (r *locationRepository) FindAll(ctx context.Context, filter Filter) ([]*entity.Location, error) {
	var locations []*entity.Location
	if err := r.db.WithContext(ctx).
		Scopes(
			database.ContainsFold("name", filter.Name),
			database.EqualFold("type", filter.Type),
			database.EqualFold("dimension", filter.Dimension),
		).
		Order("id").
		Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *locationRepository) Update(ctx context.Context, location *entity.Location) error {
	return r.db.WithContext(ctx).
		Model(&entity.Location{ID: location.ID}).
		Select("Name", "Type", "Dimension").
		Updates(location).Error
}

func (r *locationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("location_id = ?", id).Delete(&entity.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&entity.Character{}).Where("origin_id = ?", id).Update("origin_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&entity.Character{}).Where("location_id = ?", id).Update("location_id", nil).Error; err != nil {
			return err
		}

		result := tx.Delete(&entity.Location{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
