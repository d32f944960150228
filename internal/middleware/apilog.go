package middleware

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/carewell/carehome-api/internal/model"
	"github.com/carewell/carehome-api/internal/repository"
)

const apiLogTimeout = 5 * time.Second

type APILogMiddleware struct {
	repo repository.APILogRepository
}

func NewAPILogMiddleware(repo repository.APILogRepository) *APILogMiddleware {
	return &APILogMiddleware{repo: repo}
}

// Log records each request to the api_logs table. The insert happens in a
// goroutine after the response is written; a failed insert never affects
// the response.
func (m *APILogMiddleware) Log() gin.HandlerFunc {
	return func(c *gin.Context) {
		var requestBody []byte
		if c.Request.Body != nil {
			requestBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
		}

		start := time.Now()
		c.Next()

		entry := &model.APILog{
			Endpoint:     c.Request.URL.Path,
			Method:       c.Request.Method,
			RequestBody:  string(requestBody),
			ResponseCode: c.Writer.Status(),
			ResponseTime: time.Since(start).Milliseconds(),
		}

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), apiLogTimeout)
			defer cancel()

			if err := m.repo.Create(ctx, entry); err != nil {
				log.Warn().
					Err(err).
					Str("endpoint", entry.Endpoint).
					Str("method", entry.Method).
					Msg("failed to write api log")
			}
		}()
	}
}
