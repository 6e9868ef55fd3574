package server

import (
	"chirp/internal/models"
	"chirp/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetUserProfile handles GET /api/users/:handle
// @Summary Resolve a user
// @Description Resolve a username or id to a profile with live counters
// @Tags users
// @Produce json
// @Param handle path string true "Username or user id"
// @Success 200 {object} service.Profile
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{handle} [get]
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	profile, err := s.userService.Profile(c.UserContext(), c.Params("handle"), s.optionalUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(profile)
}

// GetUserTweets handles GET /api/users/:handle/tweets?type=tweets|replies|media|likes
func (s *Server) GetUserTweets(c *fiber.Ctx) error {
	timeline, err := s.tweetService.Timeline(c.UserContext(), service.TimelineInput{
		Handle:   c.Params("handle"),
		Tab:      c.Query("type"),
		ViewerID: s.optionalUserID(c),
	})
	if err != nil {
		return s.respondError(c, err)
	}

	if timeline.Tab == service.TabReplies {
		replies := timeline.Replies
		if replies == nil {
			replies = []*models.Reply{}
		}
		return c.JSON(fiber.Map{"type": timeline.Tab, "replies": replies})
	}
	tweets := timeline.Tweets
	if tweets == nil {
		tweets = []*models.Tweet{}
	}
	return c.JSON(fiber.Map{"type": timeline.Tab, "tweets": tweets})
}

// GetFollowers handles GET /api/users/:handle/followers
func (s *Server) GetFollowers(c *fiber.Ctx) error {
	page := parsePagination(c, service.MaxListLimit)
	users, err := s.followService.Followers(c.UserContext(), service.ListFollowsInput{
		Handle: c.Params("handle"),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	if users == nil {
		users = []models.User{}
	}
	return c.JSON(users)
}

// GetFollowing handles GET /api/users/:handle/following
func (s *Server) GetFollowing(c *fiber.Ctx) error {
	page := parsePagination(c, service.MaxListLimit)
	users, err := s.followService.Following(c.UserContext(), service.ListFollowsInput{
		Handle: c.Params("handle"),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	if users == nil {
		users = []models.User{}
	}
	return c.JSON(users)
}

// GetSuggestions handles GET /api/users/suggestions
func (s *Server) GetSuggestions(c *fiber.Ctx) error {
	users, err := s.userService.Suggestions(c.UserContext(), currentUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	if users == nil {
		users = []models.User{}
	}
	return c.JSON(users)
}

// GetMyProfile handles GET /api/profile
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	account, err := s.userService.Account(c.UserContext(), currentUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(account)
}

// UpdateMyProfile handles PUT /api/profile
// @Summary Edit own profile
// @Tags users
// @Accept json
// @Produce json
// @Success 200 {object} models.Account
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /profile [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	var req struct {
		Name     *string `json:"name"`
		Username *string `json:"username"`
		Bio      *string `json:"bio"`
		Location *string `json:"location"`
		Website  *string `json:"website"`
		Image    *string `json:"image"`
		Banner   *string `json:"banner"`
	}
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	account, err := s.userService.UpdateProfile(c.UserContext(), service.UpdateProfileInput{
		UserID:   currentUserID(c),
		Name:     req.Name,
		Username: req.Username,
		Bio:      req.Bio,
		Location: req.Location,
		Website:  req.Website,
		Image:    req.Image,
		Banner:   req.Banner,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(account)
}

// FollowUser handles POST /api/users/:handle/follow
func (s *Server) FollowUser(c *fiber.Ctx) error {
	target, err := s.followService.Follow(c.UserContext(), currentUserID(c), c.Params("handle"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":     "Followed",
		"user":        target,
		"isFollowing": true,
	})
}

// UnfollowUser handles DELETE /api/users/:handle/follow
func (s *Server) UnfollowUser(c *fiber.Ctx) error {
	if err := s.followService.Unfollow(c.UserContext(), currentUserID(c), c.Params("handle")); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":     "Unfollowed",
		"isFollowing": false,
	})
}

// GetFollowStatus handles GET /api/users/:handle/follow
func (s *Server) GetFollowStatus(c *fiber.Ctx) error {
	following, err := s.followService.IsFollowing(c.UserContext(), s.optionalUserID(c), c.Params("handle"))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"isFollowing": following})
}
