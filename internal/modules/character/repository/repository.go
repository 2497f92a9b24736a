package repository

import (
	"context"

	"anoa.com/rickmortyapi/internal/entity"
	"anoa.com/rickmortyapi/pkg/database"
	"gorm.io/gorm"
)

type Filter struct {
	Name    string
	Status  string
	Species string
	Gender  string
}

type CharacterRepository interface {
	// Create stores the character and links it to the given episodes.
	Create(ctx context.Context, character *entity.Character, episodeIDs []uint) error
	FindByID(ctx context.Context, id uint) (*entity.Character, error)
	FindAll(ctx context.Context, filter Filter) ([]*entity.Character, error)
	// Update writes the scalar columns; a non-nil episodeIDs replaces the
	// episode links.
	Update(ctx context.Context, character *entity.Character, episodeIDs *[]uint) error
	SetImage(ctx context.Context, id uint, image *string) error
	Delete(ctx context.Context, id uint) error
	// MissingEpisodes returns the ids in ids that have no episode row.
	MissingEpisodes(ctx context.Context, ids []uint) ([]uint, error)
	LocationExists(ctx context.Context, id uint) (bool, error)
}

type characterRepository struct {
	db *gorm.DB
}

func NewCharacterRepository(db *gorm.DB) CharacterRepository {
	return &characterRepository{db: db}
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Origin").
		Preload("Location").
		Preload("Episodes", func(db *gorm.DB) *gorm.DB { return db.Order("episodes.id") })
}

func episodeRefs(ids []uint) []entity.Episode {
	episodes := make([]entity.Episode, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		episodes = append(episodes, entity.Episode{ID: id})
	}
	return episodes
}

func (r *characterRepository) Create(ctx context.Context, character *entity.Character, episodeIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Origin", "Location", "Episodes").Create(character).Error; err != nil {
			return err
		}
		if len(episodeIDs) == 0 {
			return nil
		}
		return tx.Model(character).Omit("Episodes.*").Association("Episodes").Append(episodeRefs(episodeIDs))
	})
}

func (r *characterRepository) FindByID(ctx context.Context, id uint) (*entity.Character, error) {
	var character entity.Character
	if err := r.db.WithContext(ctx).Scopes(withRelations).First(&character, id).Error; err != nil {
		return nil, err
	}
	return &character, nil
}

func (r *characterRepository) FindAll(ctx context.Context, filter Filter) ([]*entity.Character, error) {
	var characters []*entity.Character
	if err := r.db.WithContext(ctx).
		Scopes(
			withRelations,
			database.ContainsFold("name", filter.Name),
			database.EqualFold("status", filter.Status),
			database.EqualFold("species", filter.Species),
			database.EqualFold("gender", filter.Gender),
		).
		Order("id").
		Find(&characters).Error; err != nil {
		return nil, err
	}
	return characters, nil
}

func (r *characterRepository) Update(ctx context.Context, character *entity.Character, episodeIDs *[]uint) error {
	row := entity.Character{
		Name:       character.Name,
		Status:     character.Status,
		Species:    character.Species,
		Gender:     character.Gender,
		OriginID:   character.OriginID,
		LocationID: character.LocationID,
		Image:      character.Image,
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.Character{ID: character.ID}).
			Select("Name", "Status", "Species", "Gender", "OriginID", "LocationID", "Image").
			Updates(&row).Error; err != nil {
			return err
		}
		if episodeIDs == nil {
			return nil
		}
		assoc := tx.Model(&entity.Character{ID: character.ID}).Omit("Episodes.*").Association("Episodes")
		if len(*episodeIDs) == 0 {
			return assoc.Clear()
		}
		return assoc.Replace(episodeRefs(*episodeIDs))
	})
}

func (r *characterRepository) SetImage(ctx context.Context, id uint, image *string) error {
	result := r.db.WithContext(ctx).Model(&entity.Character{ID: id}).Update("image", image)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the character together with its favorites and episode links.
func (r *characterRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("character_id = ?", id).Delete(&entity.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM character_episodes WHERE character_id = ?", id).Error; err != nil {
			return err
		}

		result := tx.Delete(&entity.Character{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *characterRepository) MissingEpisodes(ctx context.Context, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var found []uint
	if err := r.db.WithContext(ctx).Model(&entity.Episode{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, err
	}

	exists := make(map[uint]bool, len(found))
	for _, id := range found {
		exists[id] = true
	}
	var missing []uint
	for _, id := range ids {
		if !exists[id] {
			missing = append(missing, id)
			exists[id] = true
		}
	}
	return missing, nil
}

func (r *characterRepository) LocationExists(ctx context.Context, id uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&entity.Location{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
