package repository

import (
	"context"
	"errors"

	"anoa.com/rickmortyapi/internal/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrCharacterNotFound = errors.New("character not found")
	ErrEpisodeNotFound   = errors.New("episode not found")
	ErrLocationNotFound  = errors.New("location not found")
	ErrDuplicate         = errors.New("favorite already exists")
)

type FavoriteRepository interface {
	// Create stores fav after checking that its owner and every reference
	// exist and that the same tuple is not stored yet. The checks and the
	// insert share one transaction holding a lock on the owner row.
	Create(ctx context.Context, fav *entity.Favorite) error
	FindByID(ctx context.Context, id uint) (*entity.Favorite, error)
	FindByUserID(ctx context.Context, userID uint) ([]*entity.Favorite, error)
	FindAll(ctx context.Context) ([]*entity.Favorite, error)
	Delete(ctx context.Context, id uint) error
}

type favoriteRepository struct {
	db *gorm.DB
}

func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

// PreloadTargets loads the referenced catalog entries of favorites found under
// prefix ("" for favorites themselves, "Favorites." from a user).
func PreloadTargets(prefix string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Preload(prefix+"Character.Origin").
			Preload(prefix+"Character.Location").
			Preload(prefix+"Character.Episodes", orderByID).
			Preload(prefix+"Episode.Characters", orderByID).
			Preload(prefix + "Location")
	}
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}

func (r *favoriteRepository) Create(ctx context.Context, fav *entity.Favorite) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner entity.User
		q := tx.Select("id")
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(&owner, fav.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		refs := []struct {
			id       *uint
			model    any
			notFound error
		}{
			{fav.CharacterID, &entity.Character{}, ErrCharacterNotFound},
			{fav.EpisodeID, &entity.Episode{}, ErrEpisodeNotFound},
			{fav.LocationID, &entity.Location{}, ErrLocationNotFound},
		}
		for _, ref := range refs {
			if ref.id == nil {
				continue
			}
			var count int64
			if err := tx.Model(ref.model).Where("id = ?", *ref.id).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ref.notFound
			}
		}

		var existing int64
		if err := tx.Model(&entity.Favorite{}).
			Where("user_id = ?", fav.UserID).
			Scopes(
				matchRef("character_id", fav.CharacterID),
				matchRef("episode_id", fav.EpisodeID),
				matchRef("location_id", fav.LocationID),
			).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuplicate
		}

		if err := tx.Omit(clause.Associations).Create(fav).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicate
			}
			return err
		}
		return nil
	})
}

// matchRef compares a nullable reference column, treating NULL as a value.
func matchRef(column string, id *uint) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if id == nil {
			return db.Where(column + " IS NULL")
		}
		return db.Where(column+" = ?", *id)
	}
}

func (r *favoriteRepository) FindByID(ctx context.Context, id uint) (*entity.Favorite, error) {
	var fav entity.Favorite
	if err := r.db.WithContext(ctx).
		Preload("User").
		Scopes(PreloadTargets("")).
		First(&fav, id).Error; err != nil {
		return nil, err
	}
	return &fav, nil
}

func (r *favoriteRepository) FindByUserID(ctx context.Context, userID uint) ([]*entity.Favorite, error) {
	var favorites []*entity.Favorite
	if err := r.db.WithContext(ctx).
		Preload("User").
		Scopes(PreloadTargets("")).
		Where("user_id = ?", userID).
		Order("id").
		Find(&favorites).Error; err != nil {
		return nil, err
	}
	return favorites, nil
}

func (r *favoriteRepository) FindAll(ctx context.Context) ([]*entity.Favorite, error) {
	var favorites []*entity.Favorite
	if err := r.db.WithContext(ctx).
		Preload("User").
		Scopes(PreloadTargets("")).
		Order("id").
		Find(&favorites).Error; err != nil {
		return nil, err
	}
	return favorites, nil
}

func (r *favoriteRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&entity.Favorite{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
