package middleware

import (
	"net/http"
	"strings"

	"openkanban/internal/slug"

	"github.com/gin-gonic/gin"
)

// SlugParam is the route parameter holding a board slug.
const SlugParam = "slug"

// NormalizeSlug redirects requests whose slug segment is not normalized: 308
// to the same path with the normalized slug, or 302 to "/" when nothing of the
// slug survives.
func NormalizeSlug() gin.HandlerFunc {
	return func(c *gin.Context) {
		segments := strings.Split(c.Request.URL.EscapedPath(), "/")
		idx := slugSegment(c.FullPath(), len(segments))
		if idx < 0 {
			c.Next()
			return
		}

		raw := segments[idx]
		normalized := slug.Normalize(raw)
		if normalized == "" {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}
		if normalized != raw {
			segments[idx] = normalized
			c.Redirect(http.StatusPermanentRedirect, strings.Join(segments, "/"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// slugSegment finds the index of the slug parameter in the matched route.
func slugSegment(route string, n int) int {
	for i, part := range strings.Split(route, "/") {
		if part == ":"+SlugParam {
			if i < n {
				return i
			}
			break
		}
	}
	return -1
}
