package httpserver

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/gradekeeper/internal/common"
	"github.com/dmitrijs2005/gradekeeper/internal/logging"
	"github.com/dmitrijs2005/gradekeeper/internal/server/auth"
	"github.com/dmitrijs2005/gradekeeper/internal/server/sessions"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const sessionKey = "session"

// requestLogger tags the request context with an id and logs one line per
// request.
func requestLogger(log logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			id := c.Request().Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, id)

			req := c.Request()
			ctx := logging.WithRequestID(req.Context(), id)
			c.SetRequest(req.WithContext(ctx))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			log.Info(ctx, "request",
				"method", req.Method,
				"path", req.URL.Path,
				"status", c.Response().Status,
				"latency", time.Since(start).String(),
			)
			return nil
		}
	}
}

// sessionLoader resolves the session cookie into a live session and stores
// it in the echo context. Missing, forged or expired cookies leave the
// request anonymous.
func sessionLoader(signer *auth.CookieSigner, sm *sessions.Manager, log logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(common.SessionCookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			ctx := c.Request().Context()

			sid, err := signer.SessionID(cookie.Value)
			if err != nil {
				log.Debug(ctx, "session cookie rejected", "error", err)
				return next(c)
			}

			sess, err := sm.Load(ctx, sid)
			if err != nil {
				if !errors.Is(err, common.ErrorNotFound) {
					log.Error(ctx, "session load failed", "error", err)
				}
				return next(c)
			}

			c.Set(sessionKey, sess)
			return next(c)
		}
	}
}

// currentSession returns the session attached by sessionLoader, or nil.
func currentSession(c echo.Context) *sessions.Session {
	sess, _ := c.Get(sessionKey).(*sessions.Session)
	return sess
}

func currentSessionID(c echo.Context) string {
	if sess := currentSession(c); sess != nil {
		return sess.ID
	}
	return ""
}
