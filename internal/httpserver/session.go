package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/robalobadob/blocksum/internal/lesson"
	"github.com/robalobadob/blocksum/internal/store"
)

// ctxLessonKey is the context key type for the request's *lesson.Lesson.
type ctxLessonKey struct{}

// lessonFrom returns the lesson placed into the context by requireLesson.
func lessonFrom(ctx context.Context) *lesson.Lesson {
	l, _ := ctx.Value(ctxLessonKey{}).(*lesson.Lesson)
	return l
}

// requireLesson enforces a valid session token and injects its lesson into
// the request context.
func (s *Server) requireLesson(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr := s.bearerOrCookie(r)
		if tokenStr == "" {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		id, err := s.parseToken(tokenStr)
		if err != nil {
			s.writeError(w, http.StatusUnauthorized, "invalid_token")
			return
		}
		l, err := s.store.Get(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "lesson_not_found")
			return
		}
		if err != nil {
			s.writeError(w, http.StatusInternalServerError, "store_error")
			return
		}
		ctx := context.WithValue(r.Context(), ctxLessonKey{}, l)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ------------------------------ JWT & cookies ------------------------------

// signToken creates an HS256 JWT naming the lesson, valid for the session TTL.
func (s *Server) signToken(lessonID string) (string, time.Time, error) {
	now := s.now()
	exp := now.Add(s.cfg.SessionTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   lessonID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	ss, err := t.SignedString([]byte(s.cfg.JWTSecret))
	return ss, exp, err
}

// parseToken verifies a session token and returns its lesson ID.
func (s *Server) parseToken(tokenStr string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Subject == "" {
		return "", errors.New("invalid token")
	}
	return claims.Subject, nil
}

// setSessionCookie writes the session token cookie with appropriate security attributes.
func (s *Server) setSessionCookie(w http.ResponseWriter, token string, exp time.Time) {
	secure := s.cfg.Production()
	sameSite := http.SameSiteLaxMode
	if secure {
		sameSite = http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: sameSite,
		Expires:  exp,
	})
}

// clearSessionCookie deletes the session token cookie.
func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cfg.Production(),
		MaxAge:   -1,
	})
}

// bearerOrCookie extracts a token from the Authorization header or session cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	// Authorization: Bearer <token>
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.cfg.CookieName); err == nil {
		return c.Value
	}
	return ""
}
