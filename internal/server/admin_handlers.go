package server

import (
	"chirp/internal/service"

	"github.com/gofiber/fiber/v2"
)

type badgeRequest struct {
	Badge string `json:"badge"`
}

// badgeInput reads the badge from the body. A malformed body leaves the
// badge empty so that the admin check still runs first.
func badgeInput(c *fiber.Ctx) service.BadgeInput {
	var req badgeRequest
	_ = c.BodyParser(&req)
	return service.BadgeInput{
		AdminID: currentUserID(c),
		Handle:  c.Params("handle"),
		Badge:   req.Badge,
	}
}

// GrantBadge handles POST /api/admin/users/:handle/badges
// @Summary Grant a badge
// @Tags admin
// @Accept json
// @Produce json
// @Param handle path string true "Username or user id"
// @Param request body object{badge=string} true "Badge"
// @Success 200 {object} object{message=string,user=models.User}
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /admin/users/{handle}/badges [post]
func (s *Server) GrantBadge(c *fiber.Ctx) error {
	user, err := s.badgeService.Grant(c.UserContext(), badgeInput(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Badge granted",
		"user":    user,
	})
}

// RevokeBadge handles DELETE /api/admin/users/:handle/badges
func (s *Server) RevokeBadge(c *fiber.Ctx) error {
	user, err := s.badgeService.Revoke(c.UserContext(), badgeInput(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Badge revoked",
		"user":    user,
	})
}

// GetFeatureFlags returns configured feature flags and evaluated state for current user.
func (s *Server) GetFeatureFlags(c *fiber.Ctx) error {
	userID := currentUserID(c)

	return c.JSON(fiber.Map{
		"raw":       s.featureFlags.Raw(),
		"evaluated": s.featureFlags.Snapshot(userID),
	})
}
