// Package tracking renders the third-party tag snippets the site pages carry:
// Google Tag Manager, Google Ads conversion tracking, CallRail dynamic number
// insertion and the reCAPTCHA v3 loader.
package tracking

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
)

var (
	gtmIDRe = regexp.MustCompile(`^GTM-[A-Z0-9]+$`)
	adsIDRe = regexp.MustCompile(`^AW-\d+$`)
)

// Config holds the tag ids. An empty id disables its snippet.
type Config struct {
	GTMID              string
	AdsConversionID    string
	AdsConversionLabel string
	CallRailAccountID  string
	CallRailCompanyID  string
	RecaptchaSiteKey   string
}

// Snippets renders tag markup for a Config.
type Snippets struct {
	cfg  Config
	tmpl *template.Template
}

const snippetTemplates = `
{{define "head"}}
{{- if .GTMID}}
<script>(function(w,d,s,l,i){w[l]=w[l]||[];w[l].push({'gtm.start':new Date().getTime(),event:'gtm.js'});var f=d.getElementsByTagName(s)[0],j=d.createElement(s),dl=l!='dataLayer'?'&l='+l:'';j.async=true;j.src='https://www.googletagmanager.com/gtm.js?id='+i+dl;f.parentNode.insertBefore(j,f);})(window,document,'script','dataLayer',{{.GTMID}});</script>
{{- end}}
{{- if .AdsConversionID}}
<script async src="https://www.googletagmanager.com/gtag/js?id={{.AdsConversionID}}"></script>
<script>window.dataLayer=window.dataLayer||[];function gtag(){dataLayer.push(arguments);}gtag('js',new Date());gtag('config',{{.AdsConversionID}});</script>
{{- end}}
{{- if .RecaptchaSiteKey}}
<script src="https://www.google.com/recaptcha/api.js?render={{.RecaptchaSiteKey}}" async defer></script>
{{- end}}
{{end}}

{{define "body"}}
{{- if .GTMID}}
<noscript><iframe src="https://www.googletagmanager.com/ns.html?id={{.GTMID}}" height="0" width="0" style="display:none;visibility:hidden"></iframe></noscript>
{{- end}}
{{end}}

{{define "footer"}}
{{- if and .CallRailAccountID .CallRailCompanyID}}
<script async src="//cdn.callrail.com/companies/{{.CallRailCompanyID}}/{{.CallRailAccountID}}/12/swap.js"></script>
{{- end}}
{{end}}

{{define "conversion"}}
<script>window.dataLayer=window.dataLayer||[];window.dataLayer.push({event:'lead_submitted',form:{{.Form}}});
{{- if and .AdsConversionID .AdsConversionLabel}}
if(typeof gtag==='function'){gtag('event','conversion',{send_to:{{.SendTo}}});}
{{- end}}</script>
{{end}}

{{define "phone"}}<a href="tel:{{.Digits}}" class="callrail-phone">{{.Display}}</a>{{end}}
`

// New validates the ids and parses the templates. Ids that do not look like
// GTM or Ads ids are rejected rather than injected into script.
func New(cfg Config) (*Snippets, error) {
	if cfg.GTMID != "" && !gtmIDRe.MatchString(cfg.GTMID) {
		return nil, fmt.Errorf("tracking: invalid GTM id %q", cfg.GTMID)
	}
	if cfg.AdsConversionID != "" && !adsIDRe.MatchString(cfg.AdsConversionID) {
		return nil, fmt.Errorf("tracking: invalid Google Ads id %q", cfg.AdsConversionID)
	}
	t, err := template.New("tracking").Parse(snippetTemplates)
	if err != nil {
		return nil, fmt.Errorf("tracking: %w", err)
	}
	return &Snippets{cfg: cfg, tmpl: t}, nil
}

func (s *Snippets) exec(name string, data any) template.HTML {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return ""
	}
	return template.HTML(bytes.TrimSpace(buf.Bytes()))
}

// Head is placed in <head>.
func (s *Snippets) Head() template.HTML { return s.exec("head", s.cfg) }

// Body is placed right after <body>.
func (s *Snippets) Body() template.HTML { return s.exec("body", s.cfg) }

// Footer is placed before </body>.
func (s *Snippets) Footer() template.HTML { return s.exec("footer", s.cfg) }

// Conversion pushes a lead_submitted event and, when configured, fires the
// Google Ads conversion.
func (s *Snippets) Conversion(form string) template.HTML {
	return s.exec("conversion", struct {
		Config
		Form   string
		SendTo string
	}{
		Config: s.cfg,
		Form:   form,
		SendTo: s.cfg.AdsConversionID + "/" + s.cfg.AdsConversionLabel,
	})
}

// PhoneLink renders a tel: link CallRail swaps for the tracking number.
func (s *Snippets) PhoneLink(display string) template.HTML {
	digits := make([]rune, 0, len(display))
	for _, r := range display {
		if (r >= '0' && r <= '9') || r == '+' {
			digits = append(digits, r)
		}
	}
	return s.exec("phone", struct{ Display, Digits string }{display, string(digits)})
}

// Config returns the ids the snippets were built with.
func (s *Snippets) Config() Config { return s.cfg }
