package database

import "chirp/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Tweet{},
		&models.Reply{},
		&models.Follow{},
		&models.Like{},
		&models.Retweet{},
		&models.ReplyLike{},
	}
}
