package service

import (
	"context"
	"sync"
	"time"

	"chirp/internal/models"
	"chirp/internal/notifications"
	"chirp/internal/repository"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	resolveFn       func(context.Context, string) (*models.User, error)
	getByIDFn       func(context.Context, string) (*models.User, error)
	getByEmailFn    func(context.Context, string) (*models.User, error)
	usernameTakenFn func(context.Context, string, string) (bool, error)
	createFn        func(context.Context, *models.User) error
	updateProfileFn func(context.Context, string, repository.ProfileChanges) (*models.User, error)
	isAdminFn       func(context.Context, string) (bool, error)
	mutateBadgesFn  func(context.Context, string, func(*models.User) error) (*models.User, error)
	searchFn        func(context.Context, string, int) ([]models.User, error)
	suggestionsFn   func(context.Context, string, int) ([]models.User, error)
}

func (s *userRepoStub) Resolve(ctx context.Context, handle string) (*models.User, error) {
	return s.resolveFn(ctx, handle)
}
func (s *userRepoStub) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) UsernameTaken(ctx context.Context, username, exceptID string) (bool, error) {
	return s.usernameTakenFn(ctx, username, exceptID)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) UpdateProfile(ctx context.Context, id string, changes repository.ProfileChanges) (*models.User, error) {
	return s.updateProfileFn(ctx, id, changes)
}
func (s *userRepoStub) IsAdmin(ctx context.Context, id string) (bool, error) {
	return s.isAdminFn(ctx, id)
}
func (s *userRepoStub) MutateBadges(ctx context.Context, handle string, fn func(*models.User) error) (*models.User, error) {
	return s.mutateBadgesFn(ctx, handle, fn)
}
func (s *userRepoStub) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	return s.searchFn(ctx, query, limit)
}
func (s *userRepoStub) Suggestions(ctx context.Context, viewerID string, limit int) ([]models.User, error) {
	return s.suggestionsFn(ctx, viewerID, limit)
}

func strPtr(s string) *string { return &s }

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		resolveFn: func(_ context.Context, handle string) (*models.User, error) {
			return &models.User{ID: handle, Username: strPtr(handle)}, nil
		},
		getByIDFn: func(_ context.Context, id string) (*models.User, error) {
			return &models.User{ID: id}, nil
		},
		getByEmailFn:    func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		usernameTakenFn: func(_ context.Context, _, _ string) (bool, error) { return false, nil },
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		updateProfileFn: func(_ context.Context, id string, _ repository.ProfileChanges) (*models.User, error) {
			return &models.User{ID: id}, nil
		},
		isAdminFn: func(_ context.Context, _ string) (bool, error) { return false, nil },
		mutateBadgesFn: func(_ context.Context, _ string, _ func(*models.User) error) (*models.User, error) {
			return nil, nil
		},
		searchFn:      func(_ context.Context, _ string, _ int) ([]models.User, error) { return nil, nil },
		suggestionsFn: func(_ context.Context, _ string, _ int) ([]models.User, error) { return nil, nil },
	}
}

// followRepoStub is a stub for repository.FollowRepository.
type followRepoStub struct {
	createFn        func(context.Context, string, string) error
	deleteFn        func(context.Context, string, string) error
	existsFn        func(context.Context, string, string) (bool, error)
	listFollowersFn func(context.Context, string, int, int) ([]models.User, error)
	listFollowingFn func(context.Context, string, int, int) ([]models.User, error)
}

func (s *followRepoStub) Create(ctx context.Context, followerID, followingID string) error {
	return s.createFn(ctx, followerID, followingID)
}
func (s *followRepoStub) Delete(ctx context.Context, followerID, followingID string) error {
	return s.deleteFn(ctx, followerID, followingID)
}
func (s *followRepoStub) Exists(ctx context.Context, followerID, followingID string) (bool, error) {
	return s.existsFn(ctx, followerID, followingID)
}
func (s *followRepoStub) ListFollowers(ctx context.Context, userID string, limit, offset int) ([]models.User, error) {
	return s.listFollowersFn(ctx, userID, limit, offset)
}
func (s *followRepoStub) ListFollowing(ctx context.Context, userID string, limit, offset int) ([]models.User, error) {
	return s.listFollowingFn(ctx, userID, limit, offset)
}

func noopFollowRepo() *followRepoStub {
	return &followRepoStub{
		createFn: func(_ context.Context, _, _ string) error { return nil },
		deleteFn: func(_ context.Context, _, _ string) error { return nil },
		existsFn: func(_ context.Context, _, _ string) (bool, error) { return false, nil },
		listFollowersFn: func(_ context.Context, _ string, _, _ int) ([]models.User, error) {
			return nil, nil
		},
		listFollowingFn: func(_ context.Context, _ string, _, _ int) ([]models.User, error) {
			return nil, nil
		},
	}
}

// tweetRepoStub is a stub for repository.TweetRepository.
type tweetRepoStub struct {
	createFn            func(context.Context, *models.Tweet) error
	getByIDFn           func(context.Context, string, string) (*models.Tweet, error)
	getAuthorIDFn       func(context.Context, string) (string, error)
	listFn              func(context.Context, int, int, string) ([]*models.Tweet, error)
	listByAuthorFn      func(context.Context, string, int, string) ([]*models.Tweet, error)
	listMediaByAuthorFn func(context.Context, string, int, string) ([]*models.Tweet, error)
	listLikedByFn       func(context.Context, string, int, string) ([]*models.Tweet, error)
	searchFn            func(context.Context, string, int, string) ([]*models.Tweet, error)
	listByHashtagFn     func(context.Context, string, int, string) ([]*models.Tweet, error)
	contentsMatchingFn  func(context.Context, string, int) ([]string, error)
	contentsSinceFn     func(context.Context, time.Time, int) ([]string, error)
	deleteFn            func(context.Context, string) error
}

func (s *tweetRepoStub) Create(ctx context.Context, tweet *models.Tweet) error {
	return s.createFn(ctx, tweet)
}
func (s *tweetRepoStub) GetByID(ctx context.Context, id, viewerID string) (*models.Tweet, error) {
	return s.getByIDFn(ctx, id, viewerID)
}
func (s *tweetRepoStub) GetAuthorID(ctx context.Context, id string) (string, error) {
	return s.getAuthorIDFn(ctx, id)
}
func (s *tweetRepoStub) List(ctx context.Context, limit, offset int, viewerID string) ([]*models.Tweet, error) {
	return s.listFn(ctx, limit, offset, viewerID)
}
func (s *tweetRepoStub) ListByAuthor(ctx context.Context, authorID string, limit int, viewerID string) ([]*models.Tweet, error) {
	return s.listByAuthorFn(ctx, authorID, limit, viewerID)
}
func (s *tweetRepoStub) ListMediaByAuthor(ctx context.Context, authorID string, limit int, viewerID string) ([]*models.Tweet, error) {
	return s.listMediaByAuthorFn(ctx, authorID, limit, viewerID)
}
func (s *tweetRepoStub) ListLikedBy(ctx context.Context, userID string, limit int, viewerID string) ([]*models.Tweet, error) {
	return s.listLikedByFn(ctx, userID, limit, viewerID)
}
func (s *tweetRepoStub) Search(ctx context.Context, query string, limit int, viewerID string) ([]*models.Tweet, error) {
	return s.searchFn(ctx, query, limit, viewerID)
}
func (s *tweetRepoStub) ListByHashtag(ctx context.Context, tag string, limit int, viewerID string) ([]*models.Tweet, error) {
	return s.listByHashtagFn(ctx, tag, limit, viewerID)
}
func (s *tweetRepoStub) ContentsMatching(ctx context.Context, query string, limit int) ([]string, error) {
	return s.contentsMatchingFn(ctx, query, limit)
}
func (s *tweetRepoStub) ContentsSince(ctx context.Context, since time.Time, limit int) ([]string, error) {
	return s.contentsSinceFn(ctx, since, limit)
}
func (s *tweetRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func noopTweetRepo() *tweetRepoStub {
	list := func(_ context.Context, _ string, _ int, _ string) ([]*models.Tweet, error) { return nil, nil }
	return &tweetRepoStub{
		createFn: func(_ context.Context, _ *models.Tweet) error { return nil },
		getByIDFn: func(_ context.Context, id, _ string) (*models.Tweet, error) {
			return &models.Tweet{ID: id}, nil
		},
		getAuthorIDFn:       func(_ context.Context, _ string) (string, error) { return "author", nil },
		listFn:              func(_ context.Context, _, _ int, _ string) ([]*models.Tweet, error) { return nil, nil },
		listByAuthorFn:      list,
		listMediaByAuthorFn: list,
		listLikedByFn:       list,
		searchFn:            list,
		listByHashtagFn:     list,
		contentsMatchingFn:  func(_ context.Context, _ string, _ int) ([]string, error) { return nil, nil },
		contentsSinceFn:     func(_ context.Context, _ time.Time, _ int) ([]string, error) { return nil, nil },
		deleteFn:            func(_ context.Context, _ string) error { return nil },
	}
}

// replyRepoStub is a stub for repository.ReplyRepository.
type replyRepoStub struct {
	createFn       func(context.Context, *models.Reply) error
	getByIDFn      func(context.Context, string, string) (*models.Reply, error)
	listByTweetFn  func(context.Context, string, string) ([]*models.Reply, error)
	listByAuthorFn func(context.Context, string, int, string) ([]*models.Reply, error)
	deleteFn       func(context.Context, string) error
}

func (s *replyRepoStub) Create(ctx context.Context, reply *models.Reply) error {
	return s.createFn(ctx, reply)
}
func (s *replyRepoStub) GetByID(ctx context.Context, id, viewerID string) (*models.Reply, error) {
	return s.getByIDFn(ctx, id, viewerID)
}
func (s *replyRepoStub) ListByTweet(ctx context.Context, tweetID, viewerID string) ([]*models.Reply, error) {
	return s.listByTweetFn(ctx, tweetID, viewerID)
}
func (s *replyRepoStub) ListByAuthor(ctx context.Context, authorID string, limit int, viewerID string) ([]*models.Reply, error) {
	return s.listByAuthorFn(ctx, authorID, limit, viewerID)
}
func (s *replyRepoStub) Delete(ctx context.Context, id string) error {
	return s.deleteFn(ctx, id)
}

func noopReplyRepo() *replyRepoStub {
	return &replyRepoStub{
		createFn: func(_ context.Context, r *models.Reply) error {
			r.ID = "reply-1"
			return nil
		},
		getByIDFn: func(_ context.Context, id, _ string) (*models.Reply, error) {
			return &models.Reply{ID: id, TweetID: "tweet-1", UserID: "author"}, nil
		},
		listByTweetFn: func(_ context.Context, _, _ string) ([]*models.Reply, error) { return nil, nil },
		listByAuthorFn: func(_ context.Context, _ string, _ int, _ string) ([]*models.Reply, error) {
			return nil, nil
		},
		deleteFn: func(_ context.Context, _ string) error { return nil },
	}
}

// engagementRepoStub is a stub for repository.EngagementRepository.
type engagementRepoStub struct {
	likeFn        func(context.Context, string, string) (int64, error)
	unlikeFn      func(context.Context, string, string) (int64, error)
	retweetFn     func(context.Context, string, string) (int64, error)
	unretweetFn   func(context.Context, string, string) (int64, error)
	likeReplyFn   func(context.Context, string, string) (int64, error)
	unlikeReplyFn func(context.Context, string, string) (int64, error)
}

func (s *engagementRepoStub) Like(ctx context.Context, userID, tweetID string) (int64, error) {
	return s.likeFn(ctx, userID, tweetID)
}
func (s *engagementRepoStub) Unlike(ctx context.Context, userID, tweetID string) (int64, error) {
	return s.unlikeFn(ctx, userID, tweetID)
}
func (s *engagementRepoStub) Retweet(ctx context.Context, userID, tweetID string) (int64, error) {
	return s.retweetFn(ctx, userID, tweetID)
}
func (s *engagementRepoStub) Unretweet(ctx context.Context, userID, tweetID string) (int64, error) {
	return s.unretweetFn(ctx, userID, tweetID)
}
func (s *engagementRepoStub) LikeReply(ctx context.Context, userID, replyID string) (int64, error) {
	return s.likeReplyFn(ctx, userID, replyID)
}
func (s *engagementRepoStub) UnlikeReply(ctx context.Context, userID, replyID string) (int64, error) {
	return s.unlikeReplyFn(ctx, userID, replyID)
}

func noopEngagementRepo() *engagementRepoStub {
	one := func(_ context.Context, _, _ string) (int64, error) { return 1, nil }
	zero := func(_ context.Context, _, _ string) (int64, error) { return 0, nil }
	return &engagementRepoStub{
		likeFn:        one,
		unlikeFn:      zero,
		retweetFn:     one,
		unretweetFn:   zero,
		likeReplyFn:   one,
		unlikeReplyFn: zero,
	}
}

// publisherStub records published events.
type publisherStub struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	recipient string
	event     notifications.Event
}

func (p *publisherStub) Notify(_ context.Context, recipientID string, ev notifications.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{recipient: recipientID, event: ev})
}

func (p *publisherStub) published() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}
