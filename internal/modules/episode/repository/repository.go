package repository

import (
	"context"

	"anoa.com/rickmortyapi/internal/entity"
	"anoa.com/rickmortyapi/pkg/database"
	"gorm.io/gorm"
)

type Filter struct {
	Name        string
	EpisodeCode string
}

type EpisodeRepository interface {
	Create(ctx context.Context, episode *entity.Episode, characterIDs []uint) error
	FindByID(ctx context.Context, id uint) (*entity.Episode, error)
	FindAll(ctx context.Context, filter Filter) ([]*entity.Episode, error)
	// Update writes the scalar columns; a non-nil characterIDs replaces the cast.
	Update(ctx context.Context, episode *entity.Episode, characterIDs *[]uint) error
	Delete(ctx context.Context, id uint) error
	MissingCharacters(ctx context.Context, ids []uint) ([]uint, error)
}

type episodeRepository struct {
	db *gorm.DB
}

func NewEpisodeRepository(db *gorm.DB) EpisodeRepository {
	return &episodeRepository{db: db}
}

func withCharacters(db *gorm.DB) *gorm.DB {
	return db.Preload("Characters", func(db *gorm.DB) *gorm.DB { return db.Order("characters.id") })
}

func characterRefs(ids []uint) []entity.Character {
	characters := make([]entity.Character, 0, len(ids))
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		characters = append(characters, entity.Character{ID: id})
	}
	return characters
}

func (r *episodeRepository) Create(ctx context.Context, episode *entity.Episode, characterIDs []uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Characters").Create(episode).Error; err != nil {
			return err
		}
		if len(characterIDs) == 0 {
			return nil
		}
		return tx.Model(episode).Omit("Characters.*").Association("Characters").Append(characterRefs(characterIDs))
	})
}

func (r *episodeRepository) FindByID(ctx context.Context, id uint) (*entity.Episode, error) {
	var episode entity.Episode
	if err := r.db.WithContext(ctx).Scopes(withCharacters).First(&episode, id).Error; err != nil {
		return nil, err
	}
	return &episode, nil
}

func (r *episodeRepository) FindAll(ctx context.Context, filter Filter) ([]*entity.Episode, error) {
	var episodes []*entity.Episode
	if err := r.db.WithContext(ctx).
		Scopes(
			withCharacters,
			database.ContainsFold("name", filter.Name),
			database.ContainsFold("episode_code", filter.EpisodeCode),
		).
		Order("id").
		Find(&episodes).Error; err != nil {
		return nil, err
	}
	return episodes, nil
}

func (r *episodeRepository) Update(ctx context.Context, episode *entity.Episode, characterIDs *[]uint) error {
	row := entity.Episode{
		Name:        episode.Name,
		AirDate:     episode.AirDate,
		EpisodeCode: episode.EpisodeCode,
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.Episode{ID: episode.ID}).
			Select("Name", "AirDate", "EpisodeCode").
			Updates(&row).Error; err != nil {
			return err
		}
		if characterIDs == nil {
			return nil
		}
		assoc := tx.Model(&entity.Episode{ID: episode.ID}).Omit("Characters.*").Association("Characters")
		if len(*characterIDs) == 0 {
			return assoc.Clear()
		}
		return assoc.Replace(characterRefs(*characterIDs))
	})
}

// Delete removes the episode together with its favorites and cast links.
func (r *episodeRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("episode_id = ?", id).Delete(&entity.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM character_episodes WHERE episode_id = ?", id).Error; err != nil {
			return err
		}

		result := tx.Delete(&entity.Episode{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *episodeRepository) MissingCharacters(ctx context.Context, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var found []uint
	if err := r.db.WithContext(ctx).Model(&entity.Character{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
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
