package dashboard

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sfc-gh-aneel/streaming-demo/internal/ports"
)

// apiKeyMiddleware rejects requests whose X-API-Key header does not match
// the configured key. An empty key disables the check.
func apiKeyMiddleware(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key != "" && c.GetHeader("X-API-Key") != key {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing API key"})
			return
		}
		c.Next()
	}
}

// accessLog writes one structured line per request after it completes.
func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.obs.LogInfo("http request",
			ports.Field{Key: "method", Value: c.Request.Method},
			ports.Field{Key: "path", Value: c.Request.URL.Path},
			ports.Field{Key: "status", Value: c.Writer.Status()},
			ports.Field{Key: "elapsed", Value: time.Since(start).String()},
		)
	}
}

// captureWriter tees the response body so successful replies can be cached.
type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(v string) (int, error) {
	w.body.WriteString(v)
	return w.ResponseWriter.WriteString(v)
}

// cacheMiddleware memoizes successful JSON replies keyed by path and query.
// Backend failures are logged and treated as misses so the store still
// answers when redis is down.
func (s *Server) cacheMiddleware(ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := cacheKey(c.Request)
		if data, ok, err := s.cache.Get(c.Request.Context(), key); err != nil {
			s.obs.LogWarn("cache read failed",
				ports.Field{Key: "key", Value: key},
				ports.Field{Key: "error", Value: err.Error()},
			)
		} else if ok {
			c.Data(http.StatusOK, "application/json; charset=utf-8", data)
			c.Abort()
			return
		}

		w := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		if w.Status() == http.StatusOK && w.body.Len() > 0 {
			if err := s.cache.Set(c.Request.Context(), key, w.body.Bytes(), ttl); err != nil {
				s.obs.LogWarn("cache write failed",
					ports.Field{Key: "key", Value: key},
					ports.Field{Key: "error", Value: err.Error()},
				)
			}
		}
	}
}

func cacheKey(r *http.Request) string {
	if r.URL.RawQuery == "" {
		return "dash:" + r.URL.Path
	}
	return "dash:" + r.URL.Path + "?" + r.URL.RawQuery
}
