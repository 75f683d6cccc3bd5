package database

import "agora/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
// Join tables declared through many2many tags (post_tags) are created alongside their owners.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Profile{},
		&models.Follow{},
		&models.Tag{},
		&models.Post{},
		&models.Comment{},
		&models.Reaction{},
	}
}
