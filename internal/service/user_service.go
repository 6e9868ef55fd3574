package service

import (
	"context"
	"strings"

	"chirp/internal/featureflags"
	"chirp/internal/models"
	"chirp/internal/observability"
	"chirp/internal/repository"
	"chirp/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// SuggestionLimit bounds the who-to-follow list.
const SuggestionLimit = 8

type UserService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	flags      *featureflags.Manager
	bcryptCost int
}

type RegisterInput struct {
	Name     string
	Email    string
	Username string
	Password string
}

// UpdateProfileInput carries optional profile edits; nil fields are left alone.
type UpdateProfileInput struct {
	UserID   string
	Name     *string
	Username *string
	Bio      *string
	Location *string
	Website  *string
	Image    *string
	Banner   *string
}

// Profile is a user as seen by a (possibly anonymous) viewer.
type Profile struct {
	*models.User
	IsFollowing bool `json:"is_following"`
}

func NewUserService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	flags *featureflags.Manager,
) *UserService {
	return &UserService{
		userRepo:   userRepo,
		followRepo: followRepo,
		flags:      flags,
		bcryptCost: bcrypt.DefaultCost,
	}
}

// Register validates and creates an account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if s.flags.Off(featureflags.RegistrationOpen) {
		return nil, models.NewForbiddenError("Registration is closed")
	}

	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.TrimSpace(in.Username)

	if name == "" || email == "" || username == "" || in.Password == "" {
		return nil, models.NewValidationError("Name, email, username, and password are required")
	}
	if err := validation.MaxLength("name", name, validation.MaxNameLength); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("User already exists")
	}
	taken, err := s.userRepo.UsernameTaken(ctx, username, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, models.NewConflictError("Username is already taken")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Name:     name,
		Email:    email,
		Username: &username,
		Password: string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	observability.RegistrationsTotal.Inc()
	return user, nil
}

// Authenticate checks credentials. Unknown email and wrong password look the same.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

func (s *UserService) Resolve(ctx context.Context, handle string) (*models.User, error) {
	return s.userRepo.Resolve(ctx, handle)
}

// Profile resolves handle and reports whether viewerID follows it.
func (s *UserService) Profile(ctx context.Context, handle, viewerID string) (*Profile, error) {
	user, err := s.userRepo.Resolve(ctx, handle)
	if err != nil {
		return nil, err
	}
	p := &Profile{User: user}
	if viewerID != "" && viewerID != user.ID {
		p.IsFollowing, err = s.followRepo.Exists(ctx, viewerID, user.ID)
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Account returns the caller's own record, email included.
func (s *UserService) Account(ctx context.Context, userID string) (*models.Account, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return models.NewAccount(user), nil
}

func (s *UserService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.Account, error) {
	changes := repository.ProfileChanges{
		Image:  trimmed(in.Image),
		Banner: trimmed(in.Banner),
	}

	if name := trimmed(in.Name); name != nil {
		if *name == "" {
			return nil, models.NewValidationError("Name cannot be empty")
		}
		if err := validation.MaxLength("name", *name, validation.MaxNameLength); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		changes.Name = name
	}
	if bio := trimmed(in.Bio); bio != nil {
		if err := validation.MaxLength("bio", *bio, validation.MaxBioLength); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		changes.Bio = bio
	}
	if loc := trimmed(in.Location); loc != nil {
		if err := validation.MaxLength("location", *loc, validation.MaxLocationLength); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		changes.Location = loc
	}
	if site := trimmed(in.Website); site != nil {
		if err := validation.ValidateWebsite(*site); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		changes.Website = site
	}
	if username := trimmed(in.Username); username != nil {
		if err := validation.ValidateUsername(*username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		taken, err := s.userRepo.UsernameTaken(ctx, *username, in.UserID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, models.NewConflictError("Username is already taken")
		}
		changes.Username = username
	}

	user, err := s.userRepo.UpdateProfile(ctx, in.UserID, changes)
	if err != nil {
		return nil, err
	}
	return models.NewAccount(user), nil
}

// Suggestions lists users the viewer does not follow yet.
func (s *UserService) Suggestions(ctx context.Context, viewerID string) ([]models.User, error) {
	return s.userRepo.Suggestions(ctx, viewerID, SuggestionLimit)
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	return &t
}
