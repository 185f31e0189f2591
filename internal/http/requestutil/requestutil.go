package requestutil

import (
	"encoding/hex"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var requestIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
var useFallback atomic.Bool

// SanitizeRequestID validates the incoming request ID header and generates a new one when invalid.
func SanitizeRequestID(incoming string) string {
	if incoming != "" && requestIDPattern.MatchString(incoming) {
		return incoming
	}
	return NewRequestID()
}

// NewRequestID generates a random UUID with a time-based fallback.
func NewRequestID() string {
	if !useFallback.Load() {
		if id, err := uuid.NewRandom(); err == nil {
			return id.String()
		}
	}
	return hex.EncodeToString([]byte(time.Now().Format("20060102150405.000000000")))
}

// ClientIP extracts the client IP from X-Forwarded-For or RemoteAddr.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
		return forwarded
	}
	return r.RemoteAddr
}

// ParseMatrix decodes matrix parameters such as ";status=new;status=comm;locale=en_US".
// Repeated keys accumulate; a key without "=" is recorded with an empty value.
func ParseMatrix(segment string) url.Values {
	out := url.Values{}
	for _, part := range strings.Split(segment, ";") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		if k, err := url.PathUnescape(key); err == nil {
			key = k
		}
		if v, err := url.PathUnescape(value); err == nil {
			value = v
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		out[key] = append(out[key], value)
	}
	return out
}

// StripMatrix removes matrix parameters from every segment of a path.
func StripMatrix(path string) string {
	if !strings.Contains(path, ";") {
		return path
	}
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if idx := strings.IndexByte(seg, ';'); idx >= 0 {
			segments[i] = seg[:idx]
		}
	}
	return strings.Join(segments, "/")
}
