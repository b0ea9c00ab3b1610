package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"food_ordering/internal/middleware"
	"food_ordering/internal/page"
	"food_ordering/internal/redis"
	"food_ordering/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const msgFixFields = "Please correct the highlighted fields."

// respondError maps service errors onto status codes. Anything unexpected is
// logged and hidden behind the generic message.
func respondError(c *gin.Context, err error) {
	var verr *services.ValidationError
	var notice *services.NoticeError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": msgFixFields, "fields": verr.Fields})
	case errors.As(err, &notice):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": notice.Notice})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, services.ErrCartEmpty):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty"})
	case errors.Is(err, services.ErrProductUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": "This item is currently unavailable"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
	case errors.Is(err, services.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
	case errors.Is(err, services.ErrUnsupportedImage):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported image type"})
	case errors.Is(err, services.ErrImageTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image is too large"})
	default:
		log.Error().Err(err).Str("request_id", middleware.GetRequestID(c)).
			Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": page.GenericErrorMessage})
	}
}

func badRequest(c *gin.Context) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
}

// paramID parses a positive numeric path parameter, answering 400 when it
// is not one.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func queryInt(c *gin.Context, name string, def int) int {
	if n, err := strconv.Atoi(c.Query(name)); err == nil && n > 0 {
		return n
	}
	return def
}

// sessions wraps the redis session operations handlers need.
type sessions struct {
	store *redis.Client
	ttl   time.Duration
}

// load re-reads the session so cart changes made earlier in the request are
// not overwritten.
func (s sessions) load(c *gin.Context) (*redis.SessionData, error) {
	data, err := s.store.GetSession(middleware.SessionID(c))
	if errors.Is(err, redis.ErrNotFound) {
		return middleware.CurrentSession(c), nil
	}
	return data, err
}

func (s sessions) save(c *gin.Context, edit func(*redis.SessionData)) error {
	data, err := s.load(c)
	if err != nil {
		return err
	}
	edit(data)
	return s.store.UpdateSession(middleware.SessionID(c), data, s.ttl)
}

// login applies edit and moves the session to a fresh id. The cart comes
// along.
func (s sessions) login(c *gin.Context, edit func(*redis.SessionData)) error {
	data, err := s.load(c)
	if err != nil {
		return err
	}
	edit(data)
	return middleware.RotateSession(c, s.store, s.ttl, data)
}

func (s sessions) flash(c *gin.Context, category, message string) {
	err := s.store.PushFlash(middleware.SessionID(c), redis.Flash{Category: category, Message: message}, s.ttl)
	if err != nil {
		log.Warn().Err(err).Str("request_id", middleware.GetRequestID(c)).Msg("failed to queue flash message")
	}
}
