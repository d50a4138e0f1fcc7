// Package site renders the server-side page shells of the marketing site.
package site

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"garagesite/pkg/schema"
	"garagesite/pkg/tracking"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var pageNames = []string{
	"home", "services", "service", "faq", "blog", "gallery", "contact", "thank-you", "not-found",
}

// Page is the data every template renders with.
type Page struct {
	Title       string
	Description string
	Canonical   string
	Profile     *schema.Profile
	Tracking    *tracking.Snippets
	JSONLD      []template.JS
	Service     *schema.ServiceEntry
	Conversion  template.HTML
}

// Site serves the pages for one business profile.
type Site struct {
	profile  *schema.Profile
	snippets *tracking.Snippets
	pages    map[string]*template.Template
	logger   *zap.Logger
}

// New parses the page templates.
func New(profile *schema.Profile, snippets *tracking.Snippets, logger *zap.Logger) (*Site, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.ParseFS(templateFS, "templates/layout.html.tmpl", "templates/"+name+".html.tmpl")
		if err != nil {
			return nil, fmt.Errorf("error parsing %s page: %w", name, err)
		}
		pages[name] = t
	}
	return &Site{profile: profile, snippets: snippets, pages: pages, logger: logger}, nil
}

// Register mounts the page routes.
func (s *Site) Register(r gin.IRoutes) {
	r.GET("/", s.Home)
	r.GET("/services", s.Services)
	r.GET("/services/:slug", s.Service)
	r.GET("/faq", s.FAQ)
	r.GET("/blog", s.Blog)
	r.GET("/gallery", s.Gallery)
	r.GET("/contact", s.Contact)
	r.GET("/thank-you", s.ThankYou)
}

func (s *Site) Home(c *gin.Context) {
	p := s.page("", s.profile.Description)
	p.Title = s.profile.Name
	s.addJSONLD(c, &p, schema.LocalBusiness(s.profile,
		schema.WithType("HomeAndConstructionBusiness"),
		schema.WithAggregateRating(),
		schema.WithReviews(),
		schema.WithServiceArea(),
	))
	s.render(c, http.StatusOK, "home", p)
}

func (s *Site) Services(c *gin.Context) {
	p := s.page("services", "Garage door services offered by "+s.profile.Name)
	p.Title = "Services | " + s.profile.Name
	nodes := []any{schema.LocalBusiness(s.profile, schema.WithOffers())}
	for _, svc := range schema.Services(s.profile) {
		nodes = append(nodes, svc)
	}
	s.addJSONLD(c, &p, schema.Graph(nodes...))
	s.render(c, http.StatusOK, "services", p)
}

func (s *Site) Service(c *gin.Context) {
	svc, ok := s.profile.Service(c.Param("slug"))
	if !ok {
		s.NotFound(c)
		return
	}
	p := s.page("services/"+svc.Slug, svc.Description)
	p.Title = svc.Name + " | " + s.profile.Name
	p.Service = &svc
	s.addJSONLD(c, &p, schema.ServiceDoc(s.profile, svc))
	s.render(c, http.StatusOK, "service", p)
}

func (s *Site) FAQ(c *gin.Context) {
	p := s.page("faq", "Answers to common garage door questions")
	p.Title = "FAQ | " + s.profile.Name
	if doc, ok := schema.FAQPage(s.profile.FAQs); ok {
		s.addJSONLD(c, &p, doc)
	}
	s.render(c, http.StatusOK, "faq", p)
}

func (s *Site) Blog(c *gin.Context) {
	p := s.page("blog", "")
	p.Title = "Blog | " + s.profile.Name
	s.addJSONLD(c, &p, schema.LocalBusiness(s.profile))
	s.render(c, http.StatusOK, "blog", p)
}

func (s *Site) Gallery(c *gin.Context) {
	p := s.page("gallery", "")
	p.Title = "Gallery | " + s.profile.Name
	s.addJSONLD(c, &p, schema.LocalBusiness(s.profile))
	s.render(c, http.StatusOK, "gallery", p)
}

func (s *Site) Contact(c *gin.Context) {
	p := s.page("contact", "Request garage door service")
	p.Title = "Contact | " + s.profile.Name
	s.addJSONLD(c, &p, schema.LocalBusiness(s.profile, schema.WithServiceArea()))
	s.render(c, http.StatusOK, "contact", p)
}

func (s *Site) ThankYou(c *gin.Context) {
	p := s.page("thank-you", "")
	p.Title = "Thank you | " + s.profile.Name
	p.Conversion = s.snippets.Conversion(c.DefaultQuery("form", "contact"))
	s.render(c, http.StatusOK, "thank-you", p)
}

// NotFound renders the 404 shell. It is also the router's NoRoute handler
// for non-API paths.
func (s *Site) NotFound(c *gin.Context) {
	p := s.page("", "")
	p.Title = "Page not found | " + s.profile.Name
	s.render(c, http.StatusNotFound, "not-found", p)
}

func (s *Site) page(path, description string) Page {
	return Page{
		Description: description,
		Canonical:   strings.TrimRight(s.profile.URL, "/") + "/" + path,
		Profile:     s.profile,
		Tracking:    s.snippets,
	}
}

func (s *Site) addJSONLD(c *gin.Context, p *Page, doc any) {
	js, err := schema.Marshal(doc)
	if err != nil {
		// The page is still useful without markup.
		s.logger.Error("error encoding page schema", zap.String("path", c.Request.URL.Path), zap.Error(err))
		return
	}
	p.JSONLD = append(p.JSONLD, js)
}

func (s *Site) render(c *gin.Context, status int, name string, p Page) {
	var buf bytes.Buffer
	if err := s.pages[name].ExecuteTemplate(&buf, "layout", p); err != nil {
		// Recovery answers with the generic error page.
		panic(fmt.Errorf("error rendering %s page: %w", name, err))
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
