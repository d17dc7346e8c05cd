package server

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"trade-dashboard/src/grid"
	"trade-dashboard/src/session"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------

// safeInt reads an integer query parameter, falling back on anything
// missing or malformed.
func safeInt(c *gin.Context, key string, fallback int) int {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// -----------------------------------------------------------------------------

// gridOptions reads page and size from the query string.
func (s *DashboardServer) gridOptions(c *gin.Context) grid.Options {
	return grid.Options{
		Page:  safeInt(c, "page", 1),
		Size:  safeInt(c, "size", s.Config.Grid.DefaultPageSize),
		Sizes: s.Config.Grid.PageSizes,
	}
}

// -----------------------------------------------------------------------------

// credentials collects the backend cookies and Authorization header the
// browser sent along.
func (s *DashboardServer) credentials(r *http.Request) session.Credentials {
	creds := session.Credentials{Authorization: r.Header.Get("Authorization")}
	for _, name := range s.Config.Backend.ForwardCookies {
		if ck, err := r.Cookie(name); err == nil && ck.Value != "" {
			creds.Cookies = append(creds.Cookies, &http.Cookie{Name: ck.Name, Value: ck.Value})
		}
	}
	return creds
}

// -----------------------------------------------------------------------------

// pageURL rebuilds the current URL with the given query overrides. An empty
// value removes the key.
func pageURL(u *url.URL, overrides map[string]string) string {
	q := u.Query()
	for k, v := range overrides {
		if v == "" {
			q.Del(k)
		} else {
			q.Set(k, v)
		}
	}
	if len(q) == 0 {
		return u.Path
	}
	return u.Path + "?" + q.Encode()
}

// -----------------------------------------------------------------------------

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
