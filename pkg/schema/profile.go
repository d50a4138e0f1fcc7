// Package schema builds schema.org JSON-LD documents (LocalBusiness,
// FAQPage, Review, Service) from the business profile.
package schema

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is the business data the site and its markup are generated from.
type Profile struct {
	Name         string         `yaml:"name"`
	LegalName    string         `yaml:"legalName"`
	Description  string         `yaml:"description"`
	URL          string         `yaml:"url"`
	Logo         string         `yaml:"logo"`
	Image        string         `yaml:"image"`
	Phone        string         `yaml:"phone"`
	Email        string         `yaml:"email"`
	PriceRange   string         `yaml:"priceRange"`
	Address      Address        `yaml:"address"`
	Geo          *Geo           `yaml:"geo"`
	Hours        []Hours        `yaml:"hours"`
	ServiceAreas []string       `yaml:"serviceAreas"`
	SameAs       []string       `yaml:"sameAs"`
	Services     []ServiceEntry `yaml:"services"`
	FAQs         []FAQ          `yaml:"faqs"`
	Reviews      []ReviewEntry  `yaml:"reviews"`
	Posts        []Post         `yaml:"posts"`
	Gallery      []Photo        `yaml:"gallery"`
}

type Address struct {
	Street     string `yaml:"street"`
	City       string `yaml:"city"`
	Region     string `yaml:"region"`
	PostalCode string `yaml:"postalCode"`
	Country    string `yaml:"country"`
}

type Geo struct {
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// Hours is one openingHoursSpecification row. Days are schema.org day names.
type Hours struct {
	Days   []string `yaml:"days"`
	Opens  string   `yaml:"opens"`
	Closes string   `yaml:"closes"`
}

type ServiceEntry struct {
	Slug        string `yaml:"slug"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
}

type FAQ struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

type ReviewEntry struct {
	Author string `yaml:"author"`
	Rating int    `yaml:"rating"`
	Body   string `yaml:"body"`
	Date   string `yaml:"date"`
}

type Post struct {
	Slug    string `yaml:"slug"`
	Title   string `yaml:"title"`
	Summary string `yaml:"summary"`
	Date    string `yaml:"date"`
}

type Photo struct {
	Src     string `yaml:"src"`
	Caption string `yaml:"caption"`
}

// LoadProfile reads a YAML profile from path.
func LoadProfile(path string) (*Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading business profile: %w", err)
	}
	return ParseProfile(raw)
}

// ParseProfile decodes and validates a YAML profile.
func ParseProfile(raw []byte) (*Profile, error) {
	var p Profile
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("error parsing business profile: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the fields every schema type needs.
func (p *Profile) Validate() error {
	var errs []error
	if p.Name == "" {
		errs = append(errs, errors.New("profile: name is required"))
	}
	if p.URL == "" {
		errs = append(errs, errors.New("profile: url is required"))
	}
	if p.Phone == "" {
		errs = append(errs, errors.New("profile: phone is required"))
	}
	for i, r := range p.Reviews {
		if r.Rating < 1 || r.Rating > 5 {
			errs = append(errs, fmt.Errorf("profile: review %d rating must be 1-5", i))
		}
	}
	return errors.Join(errs...)
}

// Service looks a service up by slug.
func (p *Profile) Service(slug string) (ServiceEntry, bool) {
	for _, s := range p.Services {
		if s.Slug == slug {
			return s, true
		}
	}
	return ServiceEntry{}, false
}
