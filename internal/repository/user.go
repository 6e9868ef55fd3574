package repository

import (
	"context"
	"errors"
	"strings"

	"chirp/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileChanges holds the editable profile fields; nil means unchanged.
type ProfileChanges struct {
	Name     *string
	Username *string
	Bio      *string
	Location *string
	Website  *string
	Image    *string
	Banner   *string
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	// Resolve finds a user by username or id, with live follow and tweet counts.
	Resolve(ctx context.Context, handle string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByEmail returns nil, nil when no user has the email.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UsernameTaken(ctx context.Context, username, exceptID string) (bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, id string, changes ProfileChanges) (*models.User, error)
	IsAdmin(ctx context.Context, id string) (bool, error)
	// MutateBadges loads the user addressed by handle inside a transaction,
	// applies fn, and persists badges and the verified flag together.
	MutateBadges(ctx context.Context, handle string, fn func(*models.User) error) (*models.User, error)
	Search(ctx context.Context, query string, limit int) ([]models.User, error)
	Suggestions(ctx context.Context, viewerID string, limit int) ([]models.User, error)
}

type userRepository struct {
	db   *gorm.DB
	opts options
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB, opts ...Option) UserRepository {
	return &userRepository{db: db, opts: buildOptions(opts)}
}

// withUserCounts selects users.* plus follower, following and tweet counts.
func withUserCounts(db *gorm.DB) *gorm.DB {
	return db.Select("users.*, " +
		"(SELECT COUNT(*) FROM follows WHERE follows.following_id = users.id) AS followers_count, " +
		"(SELECT COUNT(*) FROM follows WHERE follows.follower_id = users.id) AS following_count, " +
		"(SELECT COUNT(*) FROM tweets WHERE tweets.user_id = users.id) AS tweets_count")
}

func byHandle(db *gorm.DB, handle string) *gorm.DB {
	return db.Where("users.username = ? OR users.id = ?", handle, handle)
}

func (r *userRepository) Resolve(ctx context.Context, handle string) (*models.User, error) {
	return read(ctx, r.opts, func(ctx context.Context) (*models.User, error) {
		var user models.User
		err := byHandle(withUserCounts(r.db.WithContext(ctx).Model(&models.User{})), handle).
			Take(&user).Error
		if err != nil {
			return nil, notFound(err, "User", handle)
		}
		return &user, nil
	})
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	return read(ctx, r.opts, func(ctx context.Context) (*models.User, error) {
		var user models.User
		err := withUserCounts(r.db.WithContext(ctx).Model(&models.User{})).
			Where("users.id = ?", id).
			Take(&user).Error
		if err != nil {
			return nil, notFound(err, "User", id)
		}
		return &user, nil
	})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return read(ctx, r.opts, func(ctx context.Context) (*models.User, error) {
		var user models.User
		err := r.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).Take(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return &user, nil
	})
}

func (r *userRepository) UsernameTaken(ctx context.Context, username, exceptID string) (bool, error) {
	return read(ctx, r.opts, func(ctx context.Context) (bool, error) {
		var count int64
		q := r.db.WithContext(ctx).Model(&models.User{}).Where("LOWER(username) = ?", strings.ToLower(username))
		if exceptID != "" {
			q = q.Where("id <> ?", exceptID)
		}
		if err := q.Count(&count).Error; err != nil {
			return false, err
		}
		return count > 0, nil
	})
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	err := r.db.WithContext(ctx).Create(user).Error
	return writeErr(err, "User already exists")
}

func (r *userRepository) UpdateProfile(ctx context.Context, id string, changes ProfileChanges) (*models.User, error) {
	updates := map[string]interface{}{}
	set := func(column string, v *string) {
		if v != nil {
			updates[column] = *v
		}
	}
	set("name", changes.Name)
	set("username", changes.Username)
	set("bio", changes.Bio)
	set("location", changes.Location)
	set("website", changes.Website)
	set("image", changes.Image)
	set("banner", changes.Banner)

	if len(updates) > 0 {
		result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, writeErr(result.Error, "Username is already taken")
		}
		if result.RowsAffected == 0 {
			return nil, models.NewNotFoundError("User", id)
		}
	}
	return r.GetByID(ctx, id)
}

func (r *userRepository) IsAdmin(ctx context.Context, id string) (bool, error) {
	return read(ctx, r.opts, func(ctx context.Context) (bool, error) {
		var user models.User
		err := r.db.WithContext(ctx).Select("is_admin").Where("id = ?", id).Take(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		if err != nil {
			return false, err
		}
		return user.IsAdmin, nil
	})
}

func (r *userRepository) MutateBadges(ctx context.Context, handle string, fn func(*models.User) error) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if !isSQLite(tx) {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := byHandle(q, handle).Take(&user).Error; err != nil {
			return notFound(err, "User", handle)
		}
		if err := fn(&user); err != nil {
			return err
		}
		return tx.Model(&user).Select("badges", "verified").Updates(&user).Error
	})
	if err != nil {
		return nil, writeErr(err, "")
	}
	return &user, nil
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func containsPattern(q string) string {
	return "%" + escapeLike(strings.ToLower(q)) + "%"
}

func (r *userRepository) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	return read(ctx, r.opts, func(ctx context.Context) ([]models.User, error) {
		var users []models.User
		pattern := containsPattern(query)
		err := withUserCounts(r.db.WithContext(ctx).Model(&models.User{})).
			Where(`LOWER(users.username) LIKE ? ESCAPE '\' OR LOWER(users.name) LIKE ? ESCAPE '\'`, pattern, pattern).
			Order("followers_count DESC, users.name ASC").
			Limit(limit).
			Find(&users).Error
		return users, err
	})
}

func (r *userRepository) Suggestions(ctx context.Context, viewerID string, limit int) ([]models.User, error) {
	return read(ctx, r.opts, func(ctx context.Context) ([]models.User, error) {
		var users []models.User
		err := withUserCounts(r.db.WithContext(ctx).Model(&models.User{})).
			Where("users.id <> ?", viewerID).
			Where("users.id NOT IN (SELECT following_id FROM follows WHERE follower_id = ?)", viewerID).
			Order("followers_count DESC, tweets_count DESC, users.created_at ASC").
			Limit(limit).
			Find(&users).Error
		return users, err
	})
}
