package server

import (
	"errors"
	"strings"
	"time"

	"chirp/internal/cache"
	"chirp/internal/middleware"
	"chirp/internal/models"
	"chirp/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenIssuer   = "chirp-api"
	tokenAudience = "chirp-client"
	tokenLifetime = 7 * 24 * time.Hour
)

var (
	errNoToken      = errors.New("no token")
	errTokenRevoked = errors.New("token revoked")
)

// Register handles POST /api/auth/register
// @Summary Register
// @Description Create an account and return a session token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{name=string,email=string,username=string,password=string} true "Registration"
// @Success 201 {object} object{token=string,user=models.Account}
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /auth/register [post]
func (s *Server) Register(c *fiber.Ctx) error {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return s.respondError(c, err)
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return s.respondError(c, models.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  models.NewAccount(user),
	})
}

// Login handles POST /api/auth/login
// @Summary User login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login credentials"
// @Success 200 {object} object{token=string,user=models.Account}
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/login [post]
func (s *Server) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if ok, err := parseBody(c, &req); !ok {
		return err
	}

	user, err := s.userService.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return s.respondError(c, err)
	}

	token, err := s.generateToken(user.ID)
	if err != nil {
		return s.respondError(c, models.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  models.NewAccount(user),
	})
}

// Logout handles POST /api/auth/logout. The token's jti stays revoked until
// the token would have expired anyway.
func (s *Server) Logout(c *fiber.Ctx) error {
	jti, _ := c.Locals("jti").(string)
	exp, _ := c.Locals("tokenExp").(time.Time)

	if jti != "" && s.redis != nil {
		ttl := time.Until(exp)
		if ttl <= 0 {
			ttl = tokenLifetime
		}
		if err := s.redis.Set(c.UserContext(), cache.RevokedTokenKey(jti), "1", ttl).Err(); err != nil {
			return s.respondError(c, models.NewUnavailableError(err))
		}
	}

	return c.JSON(fiber.Map{"message": "Logged out"})
}

// generateToken creates a JWT token for the given user ID
func (s *Server) generateToken(userID string) (string, error) {
	if s.config.JWTSecret == "" {
		return "", errors.New("JWT secret not configured")
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    tokenIssuer,
		Audience:  jwt.ClaimStrings{tokenAudience},
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

// bearerToken reads the token from the Authorization header. Query
// parameters are ignored.
func bearerToken(c *fiber.Ctx) string {
	scheme, token, found := strings.Cut(c.Get(fiber.HeaderAuthorization), " ")
	if !found || scheme != "Bearer" {
		return ""
	}
	return strings.TrimSpace(token)
}

// parseToken validates signature, issuer, audience, expiry and revocation.
func (s *Server) parseToken(c *fiber.Ctx) (*jwt.RegisteredClaims, error) {
	raw := bearerToken(c)
	if raw == "" {
		return nil, errNoToken
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	if claims.Subject == "" {
		return nil, jwt.ErrTokenInvalidSubject
	}

	if claims.ID != "" && s.redis != nil {
		revoked, err := s.redis.Exists(c.UserContext(), cache.RevokedTokenKey(claims.ID)).Result()
		if err == nil && revoked > 0 {
			return nil, errTokenRevoked
		}
	}
	return claims, nil
}

func (s *Server) authenticate(c *fiber.Ctx, claims *jwt.RegisteredClaims) {
	middleware.WithUserID(c, claims.Subject)
	c.Locals("jti", claims.ID)
	if claims.ExpiresAt != nil {
		c.Locals("tokenExp", claims.ExpiresAt.Time)
	}
}

// AuthRequired returns middleware that rejects requests without a valid session.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := s.parseToken(c)
		switch {
		case errors.Is(err, errNoToken):
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		case errors.Is(err, errTokenRevoked):
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Token has been revoked"))
		case err != nil:
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		s.authenticate(c, claims)
		return c.Next()
	}
}

// optionalUserID returns the viewer for read routes. A missing or invalid
// token makes the viewer anonymous rather than failing the request.
func (s *Server) optionalUserID(c *fiber.Ctx) string {
	if id := currentUserID(c); id != "" {
		return id
	}
	claims, err := s.parseToken(c)
	if err != nil {
		return ""
	}
	s.authenticate(c, claims)
	return claims.Subject
}
