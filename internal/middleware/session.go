package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"food_ordering/internal/redis"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	SessionCookie = "session_id"

	sessionIDKey     = "session_id"
	sessionDataKey   = "session"
	sessionSecureKey = "session_secure"
)

// Session loads the caller's session from redis, starting a new one when the
// cookie is missing or the session has expired.
func Session(store *redis.Client, ttl time.Duration, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(SessionCookie)
		var data *redis.SessionData
		if id != "" {
			sess, err := store.GetSession(id)
			switch {
			case err == nil:
				data = sess
			case !errors.Is(err, redis.ErrNotFound):
				log.Error().Err(err).Str("request_id", GetRequestID(c)).Msg("failed to load session")
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Session store unavailable"})
				return
			}
		}
		if data == nil {
			id = uuid.NewString()
			data = redis.NewSessionData(time.Now())
			if err := store.SetSession(id, data, ttl); err != nil {
				log.Error().Err(err).Str("request_id", GetRequestID(c)).Msg("failed to create session")
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Session store unavailable"})
				return
			}
		}

		c.Set(sessionSecureKey, secure)
		setSessionCookie(c, id, ttl)
		c.Set(sessionIDKey, id)
		c.Set(sessionDataKey, data)
		c.Next()
	}
}

// setSessionCookie replaces any session cookie already queued on the
// response.
func setSessionCookie(c *gin.Context, id string, ttl time.Duration) {
	header := c.Writer.Header()
	var kept []string
	for _, v := range header.Values("Set-Cookie") {
		if !strings.HasPrefix(v, SessionCookie+"=") {
			kept = append(kept, v)
		}
	}
	header.Del("Set-Cookie")
	for _, v := range kept {
		header.Add("Set-Cookie", v)
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, id, int(ttl/time.Second), "/", "", c.GetBool(sessionSecureKey), true)
}

// RotateSession moves the request's session to a new id holding data and
// reissues the cookie. The old id is deleted, so an id handed out before a
// login is useless afterwards. Pending flash messages follow the session.
func RotateSession(c *gin.Context, store *redis.Client, ttl time.Duration, data *redis.SessionData) error {
	oldID := SessionID(c)
	newID := uuid.NewString()
	if err := store.UpdateSession(newID, data, ttl); err != nil {
		return err
	}

	if oldID != "" {
		flashes, err := store.PopFlashes(oldID)
		if err != nil {
			log.Warn().Err(err).Str("request_id", GetRequestID(c)).Msg("failed to move flash messages")
		}
		for _, f := range flashes {
			if err := store.PushFlash(newID, f, ttl); err != nil {
				log.Warn().Err(err).Str("request_id", GetRequestID(c)).Msg("failed to move flash messages")
				break
			}
		}
		if err := store.DeleteSession(oldID); err != nil {
			log.Warn().Err(err).Str("request_id", GetRequestID(c)).Msg("failed to delete previous session")
		}
	}

	setSessionCookie(c, newID, ttl)
	c.Set(sessionIDKey, newID)
	c.Set(sessionDataKey, data)
	return nil
}

func SessionID(c *gin.Context) string {
	return c.GetString(sessionIDKey)
}

// CurrentSession is the session loaded for this request. It is never nil
// behind Session.
func CurrentSession(c *gin.Context) *redis.SessionData {
	if v, ok := c.Get(sessionDataKey); ok {
		if data, ok := v.(*redis.SessionData); ok {
			return data
		}
	}
	return redis.NewSessionData(time.Now())
}

func RequireCustomer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentSession(c).IsCustomer() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Please log in to continue."})
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CurrentSession(c).IsAdmin() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Please log in as admin."})
			return
		}
		c.Next()
	}
}
