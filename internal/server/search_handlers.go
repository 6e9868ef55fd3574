package server

import (
	"chirp/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Search handles GET /api/search?q=&type=all|users|tweets|hashtags
// @Summary Search
// @Description Substring search over users, tweets and hashtags
// @Tags search
// @Produce json
// @Param q query string false "Query"
// @Param type query string false "all, users, tweets or hashtags"
// @Success 200 {object} service.SearchResults
// @Failure 400 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /search [get]
func (s *Server) Search(c *fiber.Ctx) error {
	results, err := s.searchService.Search(c.UserContext(), service.SearchInput{
		Query:    c.Query("q"),
		Type:     c.Query("type"),
		ViewerID: s.optionalUserID(c),
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(results)
}

// SearchHashtag handles GET /api/search/hashtag?tag=
func (s *Server) SearchHashtag(c *fiber.Ctx) error {
	tweets, err := s.searchService.ByHashtag(c.UserContext(), c.Query("tag"), s.optionalUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(tweets)
}

// GetTrendingHashtags handles GET /api/trending/hashtags
func (s *Server) GetTrendingHashtags(c *fiber.Ctx) error {
	trending, err := s.searchService.Trending(c.UserContext())
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(trending)
}
