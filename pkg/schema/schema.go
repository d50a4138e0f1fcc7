package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"math"
	"strings"
)

const Context = "https://schema.org"

type PostalAddress struct {
	Type            string `json:"@type"`
	StreetAddress   string `json:"streetAddress,omitempty"`
	AddressLocality string `json:"addressLocality,omitempty"`
	AddressRegion   string `json:"addressRegion,omitempty"`
	PostalCode      string `json:"postalCode,omitempty"`
	AddressCountry  string `json:"addressCountry,omitempty"`
}

type GeoCoordinates struct {
	Type      string  `json:"@type"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type OpeningHours struct {
	Type      string   `json:"@type"`
	DayOfWeek []string `json:"dayOfWeek"`
	Opens     string   `json:"opens"`
	Closes    string   `json:"closes"`
}

type Place struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

type AggregateRating struct {
	Type        string `json:"@type"`
	RatingValue string `json:"ratingValue"`
	ReviewCount int    `json:"reviewCount"`
	BestRating  int    `json:"bestRating"`
	WorstRating int    `json:"worstRating"`
}

type Person struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

type Rating struct {
	Type        string `json:"@type"`
	RatingValue int    `json:"ratingValue"`
	BestRating  int    `json:"bestRating"`
}

// Reference points at another node of the graph by @id.
type Reference struct {
	ID string `json:"@id"`
}

type Review struct {
	Context       string    `json:"@context,omitempty"`
	Type          string    `json:"@type"`
	Author        Person    `json:"author"`
	ReviewRating  Rating    `json:"reviewRating"`
	ReviewBody    string    `json:"reviewBody,omitempty"`
	DatePublished string    `json:"datePublished,omitempty"`
	ItemReviewed  Reference `json:"itemReviewed"`
}

type Offer struct {
	Type          string `json:"@type"`
	Price         string `json:"price,omitempty"`
	PriceCurrency string `json:"priceCurrency,omitempty"`
	Description   string `json:"description,omitempty"`
}

type Service struct {
	Context     string    `json:"@context,omitempty"`
	Type        string    `json:"@type"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	ServiceType string    `json:"serviceType"`
	Provider    Reference `json:"provider"`
	AreaServed  []Place   `json:"areaServed,omitempty"`
	URL         string    `json:"url,omitempty"`
	Offers      *Offer    `json:"offers,omitempty"`
}

type Answer struct {
	Type string `json:"@type"`
	Text string `json:"text"`
}

type Question struct {
	Type           string `json:"@type"`
	Name           string `json:"name"`
	AcceptedAnswer Answer `json:"acceptedAnswer"`
}

type FAQPageDoc struct {
	Context    string     `json:"@context,omitempty"`
	Type       string     `json:"@type"`
	MainEntity []Question `json:"mainEntity"`
}

type LocalBusinessDoc struct {
	Context         string           `json:"@context,omitempty"`
	Type            string           `json:"@type"`
	ID              string           `json:"@id"`
	Name            string           `json:"name"`
	LegalName       string           `json:"legalName,omitempty"`
	Description     string           `json:"description,omitempty"`
	URL             string           `json:"url"`
	Logo            string           `json:"logo,omitempty"`
	Image           string           `json:"image,omitempty"`
	Telephone       string           `json:"telephone"`
	Email           string           `json:"email,omitempty"`
	PriceRange      string           `json:"priceRange,omitempty"`
	Address         *PostalAddress   `json:"address,omitempty"`
	Geo             *GeoCoordinates  `json:"geo,omitempty"`
	OpeningHours    []OpeningHours   `json:"openingHoursSpecification,omitempty"`
	AreaServed      []Place          `json:"areaServed,omitempty"`
	SameAs          []string         `json:"sameAs,omitempty"`
	AggregateRating *AggregateRating `json:"aggregateRating,omitempty"`
	Review          []Review         `json:"review,omitempty"`
	MakesOffer      []Service        `json:"makesOffer,omitempty"`
}

// GraphDoc bundles several nodes under one @context.
type GraphDoc struct {
	Context string `json:"@context"`
	Graph   []any  `json:"@graph"`
}

// BusinessID is the @id every other node references the business by.
func BusinessID(p *Profile) string {
	return strings.TrimRight(p.URL, "/") + "/#business"
}

type lbOptions struct {
	typ     string
	rating  bool
	reviews bool
	area    bool
	offers  bool
}

// Option customizes LocalBusiness.
type Option func(*lbOptions)

// WithType sets @type, e.g. "HomeAndConstructionBusiness" or "Locksmith".
func WithType(t string) Option {
	return func(o *lbOptions) { o.typ = t }
}

// WithAggregateRating adds the rating summary computed from the reviews.
func WithAggregateRating() Option {
	return func(o *lbOptions) { o.rating = true }
}

// WithReviews embeds the individual reviews.
func WithReviews() Option {
	return func(o *lbOptions) { o.reviews = true }
}

// WithServiceArea lists the served cities as areaServed.
func WithServiceArea() Option {
	return func(o *lbOptions) { o.area = true }
}

// WithOffers lists the services as makesOffer.
func WithOffers() Option {
	return func(o *lbOptions) { o.offers = true }
}

// LocalBusiness builds the business node.
func LocalBusiness(p *Profile, opts ...Option) LocalBusinessDoc {
	o := lbOptions{typ: "LocalBusiness"}
	for _, opt := range opts {
		opt(&o)
	}

	doc := LocalBusinessDoc{
		Context:     Context,
		Type:        o.typ,
		ID:          BusinessID(p),
		Name:        p.Name,
		LegalName:   p.LegalName,
		Description: p.Description,
		URL:         p.URL,
		Logo:        p.Logo,
		Image:       p.Image,
		Telephone:   p.Phone,
		Email:       p.Email,
		PriceRange:  p.PriceRange,
		SameAs:      p.SameAs,
	}
	if p.Address != (Address{}) {
		doc.Address = &PostalAddress{
			Type:            "PostalAddress",
			StreetAddress:   p.Address.Street,
			AddressLocality: p.Address.City,
			AddressRegion:   p.Address.Region,
			PostalCode:      p.Address.PostalCode,
			AddressCountry:  p.Address.Country,
		}
	}
	if p.Geo != nil {
		doc.Geo = &GeoCoordinates{Type: "GeoCoordinates", Latitude: p.Geo.Latitude, Longitude: p.Geo.Longitude}
	}
	for _, h := range p.Hours {
		doc.OpeningHours = append(doc.OpeningHours, OpeningHours{
			Type:      "OpeningHoursSpecification",
			DayOfWeek: h.Days,
			Opens:     h.Opens,
			Closes:    h.Closes,
		})
	}
	if o.area {
		doc.AreaServed = places(p.ServiceAreas)
	}
	if o.rating {
		doc.AggregateRating = aggregate(p.Reviews)
	}
	if o.reviews {
		doc.Review = reviews(p, false)
	}
	if o.offers {
		for _, s := range p.Services {
			doc.MakesOffer = append(doc.MakesOffer, service(p, s, false))
		}
	}
	return doc
}

func places(names []string) []Place {
	out := make([]Place, 0, len(names))
	for _, n := range names {
		out = append(out, Place{Type: "City", Name: n})
	}
	return out
}

func aggregate(rs []ReviewEntry) *AggregateRating {
	if len(rs) == 0 {
		return nil
	}
	sum := 0
	for _, r := range rs {
		sum += r.Rating
	}
	avg := math.Round(float64(sum)/float64(len(rs))*10) / 10
	return &AggregateRating{
		Type:        "AggregateRating",
		RatingValue: fmt.Sprintf("%.1f", avg),
		ReviewCount: len(rs),
		BestRating:  5,
		WorstRating: 1,
	}
}

func reviews(p *Profile, standalone bool) []Review {
	out := make([]Review, 0, len(p.Reviews))
	for _, r := range p.Reviews {
		rv := Review{
			Type:          "Review",
			Author:        Person{Type: "Person", Name: r.Author},
			ReviewRating:  Rating{Type: "Rating", RatingValue: r.Rating, BestRating: 5},
			ReviewBody:    r.Body,
			DatePublished: r.Date,
			ItemReviewed:  Reference{ID: BusinessID(p)},
		}
		if standalone {
			rv.Context = Context
		}
		out = append(out, rv)
	}
	return out
}

// Reviews builds one standalone Review node per review.
func Reviews(p *Profile) []Review {
	return reviews(p, true)
}

func service(p *Profile, s ServiceEntry, standalone bool) Service {
	doc := Service{
		Type:        "Service",
		Name:        s.Name,
		Description: s.Description,
		ServiceType: s.Name,
		Provider:    Reference{ID: BusinessID(p)},
		AreaServed:  places(p.ServiceAreas),
	}
	if s.Slug != "" {
		doc.URL = strings.TrimRight(p.URL, "/") + "/services/" + s.Slug
	}
	if s.Price != "" {
		doc.Offers = &Offer{Type: "Offer", Price: s.Price, PriceCurrency: "USD"}
	}
	if standalone {
		doc.Context = Context
	}
	return doc
}

// ServiceDoc builds the Service node for one service.
func ServiceDoc(p *Profile, s ServiceEntry) Service {
	return service(p, s, true)
}

// Services builds a Service node per profile service.
func Services(p *Profile) []Service {
	out := make([]Service, 0, len(p.Services))
	for _, s := range p.Services {
		out = append(out, service(p, s, true))
	}
	return out
}

// FAQPage builds the FAQPage node. It returns false when there are no FAQs,
// since an empty FAQPage is invalid markup.
func FAQPage(faqs []FAQ) (FAQPageDoc, bool) {
	if len(faqs) == 0 {
		return FAQPageDoc{}, false
	}
	doc := FAQPageDoc{Context: Context, Type: "FAQPage"}
	for _, f := range faqs {
		doc.MainEntity = append(doc.MainEntity, Question{
			Type:           "Question",
			Name:           f.Question,
			AcceptedAnswer: Answer{Type: "Answer", Text: f.Answer},
		})
	}
	return doc, true
}

// Graph combines nodes under a single @context. The nodes' own @context is
// kept; search engines accept the redundancy.
func Graph(nodes ...any) GraphDoc {
	return GraphDoc{Context: Context, Graph: nodes}
}

// Marshal encodes doc for a <script type="application/ld+json"> element.
// "<", ">" and "&" are escaped so the document cannot close the script tag.
func Marshal(doc any) (template.JS, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(doc); err != nil {
		return "", fmt.Errorf("error encoding json-ld: %w", err)
	}
	return template.JS(bytes.TrimSpace(buf.Bytes())), nil
}
