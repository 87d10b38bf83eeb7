package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/confreg/registration-api/internal/domain/entity"
	"github.com/confreg/registration-api/internal/domain/repository"
)

const (
	// IdempotencyKeyHeader carries the client-chosen replay key.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyKeyTTL bounds how long a recorded response is replayed.
	IdempotencyKeyTTL = 24 * time.Hour
)

// IdempotencyConfig wires the middleware to its key store.
type IdempotencyConfig struct {
	Repo repository.IdempotencyRepository
}

// bodyRecorder tees the handler's response so it can be stored for replay.
type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func contextUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func recordResponse(c *gin.Context, repo repository.IdempotencyRepository, key string, userID uuid.UUID, body string) {
	ikey := &entity.IdempotencyKey{
		Key:          key,
		UserID:       userID,
		Endpoint:     c.Request.Method + " " + c.FullPath(),
		ResponseCode: c.Writer.Status(),
		ResponseBody: body,
		ExpiresAt:    time.Now().Add(IdempotencyKeyTTL),
	}
	_ = repo.Create(c.Request.Context(), ikey)
}

// Idempotency replays a stored response when a mutating request repeats
// the same Idempotency-Key. Used on payment recording, where a retried
// request must not post the amount twice. Keys are scoped per user, so
// two attendees may reuse the same key without colliding.
func Idempotency(config IdempotencyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		userID, ok := contextUserID(c)
		if !ok {
			c.Next()
			return
		}

		existing, err := config.Repo.GetByKey(c.Request.Context(), key, userID)
		if err != nil {
			// Store trouble must not block the payment itself
			c.Next()
			return
		}
		if existing != nil && !existing.IsExpired() {
			c.Header("X-Idempotency-Replayed", "true")
			c.Data(existing.ResponseCode, "application/json", []byte(existing.ResponseBody))
			c.Abort()
			return
		}

		rec := &bodyRecorder{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = rec

		c.Next()

		recordResponse(c, config.Repo, key, userID, rec.body.String())
	}
}

// IdempotencyRequired refuses the request outright when no key is sent.
// Checkout runs under this variant: generating a second invoice for the
// same cart revision is worse than asking the client to retry with a
// key. Only 2xx responses are recorded, so a failed checkout can be
// retried under the same key.
func IdempotencyRequired(config IdempotencyConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "Idempotency-Key header is required for this request",
			})
			c.Abort()
			return
		}

		userID, ok := contextUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "User not authenticated",
			})
			c.Abort()
			return
		}

		existing, err := config.Repo.GetByKey(c.Request.Context(), key, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Failed to check idempotency key",
			})
			c.Abort()
			return
		}
		if existing != nil && !existing.IsExpired() {
			c.Header("X-Idempotency-Replayed", "true")

			var cached map[string]interface{}
			if err := json.Unmarshal([]byte(existing.ResponseBody), &cached); err == nil {
				c.JSON(existing.ResponseCode, cached)
			} else {
				c.Data(existing.ResponseCode, "application/json", []byte(existing.ResponseBody))
			}
			c.Abort()
			return
		}

		rec := &bodyRecorder{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
		c.Writer = rec

		c.Next()

		if c.Writer.Status() >= 200 && c.Writer.Status() < 300 {
			recordResponse(c, config.Repo, key, userID, rec.body.String())
		}
	}
}
