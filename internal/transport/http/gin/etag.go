package httpgin

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// cachePolicy says how clients may keep a response.
type cachePolicy struct {
	maxAge time.Duration
	// immutable marks bodies that never change for their URL, like a
	// stored plan. Their ETag is strong.
	immutable bool
}

var (
	storedPlanCache    = cachePolicy{maxAge: time.Minute, immutable: true}
	derivedPlanCache   = cachePolicy{maxAge: time.Minute}
	defaultLayoutCache = cachePolicy{maxAge: 5 * time.Minute}
)

func (p cachePolicy) header() string {
	v := fmt.Sprintf("public, max-age=%d", int(p.maxAge.Seconds()))
	if p.immutable {
		v += ", immutable"
	}
	return v
}

func etagFor(body []byte, strong bool) string {
	sum := sha256.Sum256(body)
	tag := `"` + hex.EncodeToString(sum[:16]) + `"`
	if !strong {
		tag = "W/" + tag
	}
	return tag
}

// etagMatches implements the weak comparison If-None-Match asks for.
func etagMatches(ifNoneMatch, tag string) bool {
	if ifNoneMatch == "" {
		return false
	}
	want := strings.TrimPrefix(tag, "W/")
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == want {
			return true
		}
	}
	return false
}

// writeCachedJSON writes an encoded JSON body with ETag and Cache-Control,
// or 304 when the client already has it.
func writeCachedJSON(c *gin.Context, status int, body []byte, policy cachePolicy) {
	tag := etagFor(body, policy.immutable)
	c.Header("ETag", tag)
	c.Header("Cache-Control", policy.header())

	if etagMatches(c.GetHeader("If-None-Match"), tag) {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(status, "application/json; charset=utf-8", body)
}

func writeCachedValue(c *gin.Context, status int, v any, policy cachePolicy) {
	body, err := json.Marshal(v)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
		return
	}
	writeCachedJSON(c, status, body, policy)
}
