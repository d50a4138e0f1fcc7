package site

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"garagesite/pkg/middleware"
	"garagesite/pkg/schema"
	"garagesite/pkg/tracking"
)

func newRouter(t *testing.T, cfg tracking.Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	profile, err := schema.LoadProfile("../schema/testdata/business.yaml")
	require.NoError(t, err)
	snippets, err := tracking.New(cfg)
	require.NoError(t, err)
	s, err := New(profile, snippets, zap.NewNop())
	require.NoError(t, err)

	r := gin.New()
	r.Use(middleware.Recovery(zap.NewNop()))
	s.Register(r)
	r.NoRoute(s.NotFound)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestPages_Render(t *testing.T) {
	r := newRouter(t, tracking.Config{GTMID: "GTM-TEST1"})

	tests := []struct {
		path     string
		contains []string
	}{
		{"/", []string{"<h1>Ace Garage Door Repair</h1>", `"HomeAndConstructionBusiness"`, `"aggregateRating"`, "Serving Miami, Coral Gables, Hialeah."}},
		{"/services", []string{`"@graph"`, `"makesOffer"`, "From $189"}},
		{"/services/spring-repair", []string{"<h1>Garage Door Spring Repair</h1>", `"@type":"Service"`}},
		{"/faq", []string{`"FAQPage"`, "<dt>Do you offer same-day service?</dt>"}},
		{"/blog", []string{"5 Signs Your Garage Door Spring Is Failing", `datetime="2025-10-01"`}},
		{"/gallery", []string{`src="/images/gallery/install-1.jpg"`}},
		{"/contact", []string{`action="/api/submit-form"`, `<option value="Garage Door Opener Installation">`}},
		{"/thank-you", []string{"lead_submitted"}},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := get(r, tt.path)
			require.Equal(t, http.StatusOK, w.Code)
			body := w.Body.String()
			assert.Contains(t, body, "googletagmanager.com/gtm.js")
			assert.Contains(t, body, "ns.html?id=GTM-TEST1")
			assert.Contains(t, body, `class="callrail-phone"`)
			for _, s := range tt.contains {
				assert.Contains(t, body, s)
			}
		})
	}
}

func TestPages_JSONLDBlocks(t *testing.T) {
	r := newRouter(t, tracking.Config{})

	body := get(r, "/").Body.String()
	assert.Equal(t, 1, strings.Count(body, `<script type="application/ld+json">`))
	assert.Contains(t, body, `"@context":"https://schema.org"`)

	body = get(r, "/thank-you").Body.String()
	assert.NotContains(t, body, "application/ld+json")
}

func TestPages_NoTrackingWithoutIDs(t *testing.T) {
	r := newRouter(t, tracking.Config{})

	body := get(r, "/").Body.String()
	assert.NotContains(t, body, "googletagmanager")
	assert.NotContains(t, body, "callrail.com")
}

func TestNotFound(t *testing.T) {
	r := newRouter(t, tracking.Config{})

	for _, path := range []string{"/nope", "/services/unknown"} {
		w := get(r, path)
		assert.Equal(t, http.StatusNotFound, w.Code, path)
		assert.Contains(t, w.Body.String(), "Page not found")
	}
}
