package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

var errBadCredentials = errors.New("invalid credentials")

// dummyHash stands in for a missing user's hash so unknown usernames cost
// the same bcrypt comparison as known ones.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy"), bcrypt.DefaultCost)

// loginRequest is the body for POST /api/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// checkPassword compares password against the stored hash, or against
// dummyHash when the user was not found. It always runs bcrypt once.
func checkPassword(hash string, found bool, password string) error {
	if !found {
		hash = string(dummyHash)
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if !found || err != nil {
		return errBadCredentials
	}
	return nil
}

// login verifies username/password and returns the user's auth token.
// POST /api/login (public).
func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	username := strings.TrimSpace(req.Username)

	u, err := queryOne[user](h.db, c,
		"SELECT * FROM users WHERE username = @username",
		pgx.NamedArgs{"username": username})
	if err := checkPassword(u.Password, err == nil, req.Password); err != nil {
		log.Info().Str("username", username).Msg("[auth] login rejected")
		apiError(c, http.StatusUnauthorized, err.Error())
		return
	}

	log.Debug().Int("user_id", u.ID).Msg("[auth] login")
	c.JSON(http.StatusOK, gin.H{"token": u.AuthToken, "user_id": u.ID})
}

// bearerToken extracts the token from an "Authorization: Bearer" header.
func bearerToken(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// authMiddleware resolves the Bearer token to a user and sets user_id on
// the context. Every planner route sits behind it.
func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			apiError(c, http.StatusUnauthorized, "missing or invalid authorization header")
			c.Abort()
			return
		}

		u, err := queryOne[struct {
			ID int `db:"id"`
		}](h.db, c, "SELECT id FROM users WHERE auth_token = @token", pgx.NamedArgs{"token": token})
		if err != nil {
			log.Debug().Err(err).Str("path", c.FullPath()).Msg("[auth] token rejected")
			apiError(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		}

		c.Set("user_id", u.ID)
		c.Next()
	}
}
