package server

import (
	"context"

	"chirp/internal/models"
	"chirp/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetTweets handles GET /api/tweets
// @Summary List tweets
// @Description Newest first, with author, live counts and the viewer's liked/retweeted flags
// @Tags tweets
// @Produce json
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {array} models.Tweet
// @Router /tweets [get]
func (s *Server) GetTweets(c *fiber.Ctx) error {
	page := parsePagination(c, service.TimelineLimit)
	tweets, err := s.tweetService.ListTweets(c.UserContext(), service.ListTweetsInput{
		Limit:    page.Limit,
		Offset:   page.Offset,
		ViewerID: s.optionalUserID(c),
	})
	if err != nil {
		return s.respondError(c, err)
	}
	if tweets == nil {
		tweets = []*models.Tweet{}
	}
	return c.JSON(tweets)
}

// CreateTweet handles POST /api/tweets
// @Summary Create a tweet
// @Tags tweets
// @Accept json
// @Produce json
// @Param request body object{content=string,location=string,images=[]string,hashtags=[]string,mentions=[]string} true "Tweet"
// @Success 201 {object} models.Tweet
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /tweets [post]
func (s *Server) CreateTweet(c *fiber.Ctx) error {
	var req struct {
		Content  string   `json:"content"`
		Location string   `json:"location"`
		Images   []string `json:"images"`
		Hashtags []string `json:"hashtags"`
		Mentions []string `json:"mentions"`
	}
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	tweet, err := s.tweetService.CreateTweet(c.UserContext(), service.CreateTweetInput{
		UserID:   currentUserID(c),
		Content:  req.Content,
		Location: req.Location,
		Images:   req.Images,
		Hashtags: req.Hashtags,
		Mentions: req.Mentions,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(tweet)
}

// GetTweet handles GET /api/tweets/:id
func (s *Server) GetTweet(c *fiber.Ctx) error {
	tweet, err := s.tweetService.GetTweet(c.UserContext(), c.Params("id"), s.optionalUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(tweet)
}

// DeleteTweet handles DELETE /api/tweets/:id
func (s *Server) DeleteTweet(c *fiber.Ctx) error {
	err := s.tweetService.DeleteTweet(c.UserContext(), service.DeleteTweetInput{
		UserID:  currentUserID(c),
		TweetID: c.Params("id"),
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Tweet deleted"})
}

type ledgerOp func(context.Context, service.EngagementInput) (int64, error)

// engagement runs one ledger transition. The response carries the target's
// live count under countKey and the caller's new state under stateKey.
func (s *Server) engagement(c *fiber.Ctx, op ledgerOp, countKey, stateKey string, created bool) error {
	count, err := op(c.UserContext(), service.EngagementInput{
		UserID:  currentUserID(c),
		TweetID: c.Params("id"),
		ReplyID: c.Params("replyId"),
	})
	if err != nil {
		return s.respondError(c, err)
	}
	status := fiber.StatusOK
	if created {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{
		countKey: count,
		stateKey: created,
	})
}

// LikeTweet handles POST /api/tweets/:id/like
// @Summary Like a tweet
// @Tags tweets
// @Produce json
// @Param id path string true "Tweet ID"
// @Success 201 {object} object{likes=int,liked=bool}
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /tweets/{id}/like [post]
func (s *Server) LikeTweet(c *fiber.Ctx) error {
	return s.engagement(c, s.engagementService.Like, "likes", "liked", true)
}

// UnlikeTweet handles DELETE /api/tweets/:id/like
func (s *Server) UnlikeTweet(c *fiber.Ctx) error {
	return s.engagement(c, s.engagementService.Unlike, "likes", "liked", false)
}

// RetweetTweet handles POST /api/tweets/:id/retweet
func (s *Server) RetweetTweet(c *fiber.Ctx) error {
	return s.engagement(c, s.engagementService.Retweet, "retweets", "retweeted", true)
}

// UnretweetTweet handles DELETE /api/tweets/:id/retweet
func (s *Server) UnretweetTweet(c *fiber.Ctx) error {
	return s.engagement(c, s.engagementService.Unretweet, "retweets", "retweeted", false)
}

// LikeReply handles POST /api/tweets/:id/replies/:replyId/like
func (s *Server) LikeReply(c *fiber.Ctx) error {
	return s.engagement(c, s.engagementService.LikeReply, "likes", "liked", true)
}

// UnlikeReply handles DELETE /api/tweets/:id/replies/:replyId/like
func (s *Server) UnlikeReply(c *fiber.Ctx) error {
	return s.engagement(c, s.engagementService.UnlikeReply, "likes", "liked", false)
}

// GetReplies handles GET /api/tweets/:id/replies
func (s *Server) GetReplies(c *fiber.Ctx) error {
	replies, err := s.replyService.ListReplies(c.UserContext(), c.Params("id"), s.optionalUserID(c))
	if err != nil {
		return s.respondError(c, err)
	}
	if replies == nil {
		replies = []*models.Reply{}
	}
	return c.JSON(replies)
}

// CreateReply handles POST /api/tweets/:id/replies
func (s *Server) CreateReply(c *fiber.Ctx) error {
	var req struct {
		Content string `json:"content"`
	}
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	reply, err := s.replyService.CreateReply(c.UserContext(), service.CreateReplyInput{
		UserID:  currentUserID(c),
		TweetID: c.Params("id"),
		Content: req.Content,
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(reply)
}

// DeleteReply handles DELETE /api/tweets/:id/replies/:replyId
func (s *Server) DeleteReply(c *fiber.Ctx) error {
	err := s.replyService.DeleteReply(c.UserContext(), service.DeleteReplyInput{
		UserID:  currentUserID(c),
		TweetID: c.Params("id"),
		ReplyID: c.Params("replyId"),
	})
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Reply deleted"})
}
