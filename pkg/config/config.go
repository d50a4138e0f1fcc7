package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// Environments the site runs in.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Config holds all application configuration values
type Config struct {
	Port           string
	Env            string
	SiteURL        string
	LogLevel       string
	RequestTimeout time.Duration
	AllowedOrigins []string

	GTMID              string
	CallRailAccountID  string
	CallRailCompanyID  string
	AdsConversionID    string
	AdsConversionLabel string

	RecaptchaSiteKey   string
	RecaptchaSecretKey string
	RecaptchaMinScore  float64

	ResendAPIKey  string
	EmailFrom     string
	BusinessEmail string

	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioFromNumber  string
	BusinessSMSNumber string

	AirtableAPIKey     string
	AirtableBaseID     string
	AirtableLeadsTable string

	BusinessProfilePath string
}

// LoadConfig reads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Port:           getenv("PORT", "8080"),
		Env:            strings.ToLower(getenv("APP_ENV", EnvDevelopment)),
		SiteURL:        strings.TrimRight(os.Getenv("SITE_URL"), "/"),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		RequestTimeout: durationEnv("REQUEST_TIMEOUT", 10*time.Second),
		AllowedOrigins: listEnv("ALLOWED_ORIGINS"),

		GTMID:              firstEnv("NEXT_PUBLIC_GTM_ID", "GTM_ID"),
		CallRailAccountID:  os.Getenv("NEXT_PUBLIC_CALLRAIL_ACCOUNT_ID"),
		CallRailCompanyID:  os.Getenv("NEXT_PUBLIC_CALLRAIL_COMPANY_ID"),
		AdsConversionID:    os.Getenv("NEXT_PUBLIC_GOOGLE_ADS_CONVERSION_ID"),
		AdsConversionLabel: os.Getenv("NEXT_PUBLIC_GOOGLE_ADS_CONVERSION_LABEL"),

		RecaptchaSiteKey:   firstEnv("RECAPTCHA_SITE_KEY", "NEXT_PUBLIC_RECAPTCHA_SITE_KEY"),
		RecaptchaSecretKey: os.Getenv("RECAPTCHA_SECRET_KEY"),
		RecaptchaMinScore:  floatEnv("RECAPTCHA_MIN_SCORE", 0.5),

		ResendAPIKey:  os.Getenv("RESEND_API_KEY"),
		EmailFrom:     getenv("EMAIL_FROM", "onboarding@resend.dev"),
		BusinessEmail: os.Getenv("BUSINESS_EMAIL"),

		TwilioAccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber:  os.Getenv("TWILIO_FROM_NUMBER"),
		BusinessSMSNumber: os.Getenv("BUSINESS_SMS_NUMBER"),

		AirtableAPIKey:     os.Getenv("AIRTABLE_API_KEY"),
		AirtableBaseID:     os.Getenv("AIRTABLE_BASE_ID"),
		AirtableLeadsTable: getenv("AIRTABLE_LEADS_TABLE", "Leads"),

		BusinessProfilePath: getenv("BUSINESS_PROFILE_PATH", "business.yaml"),
	}
}

func (c *Config) IsDevelopment() bool { return c.Env == EnvDevelopment }
func (c *Config) IsProduction() bool  { return c.Env == EnvProduction }

// SMSAlertsEnabled reports whether emergency leads can be texted to the business.
func (c *Config) SMSAlertsEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" &&
		c.TwilioFromNumber != "" && c.BusinessSMSNumber != ""
}

// CRMEnabled reports whether leads are also recorded in Airtable.
func (c *Config) CRMEnabled() bool {
	return c.AirtableAPIKey != "" && c.AirtableBaseID != ""
}

// Validate reports settings production cannot run without.
func (c *Config) Validate() error {
	var errs []error
	switch c.Env {
	case EnvDevelopment, EnvStaging, EnvProduction:
	default:
		errs = append(errs, errors.New("APP_ENV must be development, staging or production"))
	}
	if c.IsProduction() {
		if c.ResendAPIKey == "" {
			errs = append(errs, errors.New("RESEND_API_KEY is required in production"))
		}
		if c.BusinessEmail == "" {
			errs = append(errs, errors.New("BUSINESS_EMAIL is required in production"))
		}
		if c.RecaptchaSecretKey == "" {
			errs = append(errs, errors.New("RECAPTCHA_SECRET_KEY is required in production"))
		}
	}
	if c.RecaptchaMinScore < 0 || c.RecaptchaMinScore > 1 {
		errs = append(errs, errors.New("RECAPTCHA_MIN_SCORE must be between 0 and 1"))
	}
	return errors.Join(errs...)
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func durationEnv(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func floatEnv(key string, def float64) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(os.Getenv(key)), 64)
	if err != nil {
		return def
	}
	return f
}

func listEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
