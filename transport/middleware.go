package transport

import (
	"context"
	"crypto/subtle"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/time/rate"

	"storefront/pkg/domain/model"
	"storefront/pkg/domain/service"
)

const (
	requestIDHeader       = "X-Request-ID"
	dashboardSecretHeader = "X-Dashboard-Secret"
)

type requestIDKey struct{}

type identityKey struct{}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func userIDFrom(ctx context.Context) (primitive.ObjectID, bool) {
	id, ok := ctx.Value(identityKey{}).(primitive.ObjectID)
	return id, ok && !id.IsZero()
}

type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logMiddleware(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, requestID))

		fields := log.Fields{
			"method":     r.Method,
			"url":        r.URL,
			"remoteAddr": r.RemoteAddr,
			"userAgent":  r.UserAgent(),
			"requestId":  requestID,
		}
		log.WithFields(fields).Info("got a new request")

		start := time.Now()
		rec := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		h.ServeHTTP(rec, r)

		fields["status"] = rec.status
		fields["duration"] = time.Since(start).String()
		log.WithFields(fields).Info("request completed")
	})
}

// identify resolves an optional bearer token. Requests with a missing or
// invalid token continue anonymously; handlers that need a user check for one.
func identify(users service.UserService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			userID, err := users.Authenticate(r.Context(), token)
			if err != nil {
				log.WithError(err).WithField("requestId", requestIDFrom(r.Context())).Debug("ignoring invalid bearer token")
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, userID)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func requireUser(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, r, model.ErrUnauthorized)
	}
	return userID, ok
}

// requireDashboardSecret guards analytics dashboards when a secret is configured.
func requireDashboardSecret(secret string, next http.HandlerFunc) http.HandlerFunc {
	if secret == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get(dashboardSecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			writeMessage(w, http.StatusForbidden, "forbidden")
			return
		}
		next(w, r)
	}
}

func rateLimited(limiter *rate.Limiter, next http.HandlerFunc) http.HandlerFunc {
	if limiter == nil {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			writeMessage(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next(w, r)
	}
}

func clientFrom(r *http.Request) service.Client {
	return service.Client{
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
		Referer:   r.Referer(),
	}
}

// clientIP prefers proxy headers over the socket address.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ownerFrom picks the signed in user over a guest id.
func ownerFrom(r *http.Request, guestID string) (model.Owner, error) {
	if userID, ok := userIDFrom(r.Context()); ok {
		return model.RegisteredOwner(userID), nil
	}
	guestID = strings.TrimSpace(guestID)
	if guestID == "" {
		return model.Owner{}, model.ErrOwnerRequired
	}
	return model.GuestOwner(guestID), nil
}
