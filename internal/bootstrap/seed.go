package bootstrap

import (
	"errors"

	"anoa.com/rickmortyapi/internal/entity"
	"anoa.com/rickmortyapi/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// favoritesUniqueIndex treats unset references as equal so the same
// (user, character, episode, location) tuple cannot be stored twice.
const favoritesUniqueIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_favorites_unique
ON favorites (user_id, COALESCE(character_id, 0), COALESCE(episode_id, 0), COALESCE(location_id, 0))`

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&entity.User{},
		&entity.Location{},
		&entity.Episode{},
		&entity.Character{},
		&entity.Favorite{},
	); err != nil {
		return err
	}

	return db.Exec(favoritesUniqueIndex).Error
}

func SeedAdminUser(db *gorm.DB, email, password string) error {
	if email == "" || password == "" {
		return errors.New("admin email and password are required")
	}

	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Info().Str("email", email).Msg("admin user already exists, skipping seed")
		return nil
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	adminUser := entity.User{
		Email:        email,
		PasswordHash: string(hashedPasswordBytes),
		IsActive:     true,
		IsAdmin:      true,
	}

	if err := db.Create(&adminUser).Error; err != nil {
		return err
	}

	logger.Info().Str("email", email).Msg("admin user seeded")
	return nil
}

// SeedCatalog inserts a handful of canonical entries into an empty catalog.
func SeedCatalog(db *gorm.DB) error {
	var count int64
	if err := db.Model(&entity.Character{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		earth := entity.Location{Name: "Earth (C-137)", Type: stringPtr("Planet"), Dimension: stringPtr("Dimension C-137")}
		citadel := entity.Location{Name: "Citadel of Ricks", Type: stringPtr("Space station"), Dimension: stringPtr("unknown")}
		if err := tx.Create(&earth).Error; err != nil {
			return err
		}
		if err := tx.Create(&citadel).Error; err != nil {
			return err
		}

		pilot := entity.Episode{Name: "Pilot", AirDate: stringPtr("December 2, 2013"), EpisodeCode: "S01E01"}
		lawnmower := entity.Episode{Name: "Lawnmower Dog", AirDate: stringPtr("December 9, 2013"), EpisodeCode: "S01E02"}
		if err := tx.Create(&pilot).Error; err != nil {
			return err
		}
		if err := tx.Create(&lawnmower).Error; err != nil {
			return err
		}

		characters := []entity.Character{
			{
				Name: "Rick Sanchez", Status: "Alive", Species: "Human", Gender: "Male",
				OriginID: &earth.ID, LocationID: &citadel.ID,
				Image:    stringPtr("https://rickandmortyapi.com/api/character/avatar/1.jpeg"),
				Episodes: []entity.Episode{pilot, lawnmower},
			},
			{
				Name: "Morty Smith", Status: "Alive", Species: "Human", Gender: "Male",
				OriginID: &earth.ID, LocationID: &earth.ID,
				Image:    stringPtr("https://rickandmortyapi.com/api/character/avatar/2.jpeg"),
				Episodes: []entity.Episode{pilot, lawnmower},
			},
		}
		for i := range characters {
			if err := tx.Omit("Episodes.*").Create(&characters[i]).Error; err != nil {
				return err
			}
		}

		logger.Info().Int("characters", len(characters)).Msg("sample catalog seeded")
		return nil
	})
}

func stringPtr(s string) *string {
	return &s
}
