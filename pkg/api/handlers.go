package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"garagesite/pkg/apperr"
	"garagesite/pkg/logging"
	"garagesite/pkg/middleware"
	"garagesite/pkg/models"
	"garagesite/pkg/schema"
	"garagesite/pkg/services"
	"garagesite/pkg/validation"
)

const maxBodyBytes = 64 << 10

const (
	msgLeadReceived    = "Thanks! We received your request and will call you shortly."
	msgFormSubmitted   = "Form submitted successfully"
	msgPartial         = "Your request was received, but we could not send your confirmation email."
	msgInvalidJSON     = "Invalid JSON format"
	msgValidation      = "Validation failed"
	msgGenericFailure  = "Something went wrong. Please try again or call us."
	msgRequestTimedOut = "The request took too long. Please try again or call us."
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	leadService services.LeadService
	profile     *schema.Profile
	recaptcha   models.RecaptchaConfig
	timeout     time.Duration
	logger      *zap.Logger
}

// HandlersConfig carries what the handlers need besides the lead service.
type HandlersConfig struct {
	Profile          *schema.Profile
	RecaptchaSiteKey string
	RecaptchaEnabled bool
	RequestTimeout   time.Duration
	Logger           *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(leadService services.LeadService, cfg HandlersConfig) *Handlers {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		leadService: leadService,
		profile:     cfg.Profile,
		recaptcha: models.RecaptchaConfig{
			SiteKey: cfg.RecaptchaSiteKey,
			Enabled: cfg.RecaptchaEnabled && cfg.RecaptchaSiteKey != "",
		},
		timeout: cfg.RequestTimeout,
		logger:  logger,
	}
}

// HealthCheck handler for monitoring
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// HandleLead processes the short quote form.
func (h *Handlers) HandleLead(c *gin.Context) {
	var req models.LeadRequest
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	if err := c.ShouldBindJSON(&req); err != nil {
		if fields := validation.FieldErrors(err); fields != nil {
			c.JSON(http.StatusBadRequest, models.LeadResponse{
				Message:          msgValidation,
				ValidationErrors: fields,
			})
			return
		}
		h.log(c).Info("invalid lead body", zap.Error(err))
		c.JSON(http.StatusBadRequest, models.LeadResponse{Message: msgInvalidJSON})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	sub, err := h.leadService.SubmitLead(ctx, req, c.ClientIP())
	if err != nil {
		status, msg, fields := h.failure(c, "lead submission failed", err)
		c.JSON(status, models.LeadResponse{Message: msg, ValidationErrors: fields})
		return
	}

	resp := models.LeadResponse{OK: true, Message: msgLeadReceived, LeadID: sub.LeadID}
	if sub.Partial() {
		resp.Partial = true
		resp.Message = msgPartial
	}
	c.JSON(http.StatusOK, resp)
}

// HandleSubmitForm processes the full contact form.
func (h *Handlers) HandleSubmitForm(c *gin.Context) {
	var req models.SubmitFormRequest

	// Read the request body
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes))
	if err != nil {
		h.log(c).Info("error reading request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, models.SubmitFormResponse{Message: "Error reading request"})
		return
	}
	if err := json.Unmarshal(body, &req); err != nil {
		h.log(c).Info("error parsing submit-form body", zap.Error(err))
		c.JSON(http.StatusBadRequest, models.SubmitFormResponse{Message: msgInvalidJSON})
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	sub, err := h.leadService.SubmitForm(ctx, req, c.ClientIP())
	if err != nil {
		status, msg, _ := h.failure(c, "form submission failed", err)
		c.JSON(status, models.SubmitFormResponse{Message: msg})
		return
	}

	resp := models.SubmitFormResponse{Success: true, Message: msgFormSubmitted, LeadID: sub.LeadID}
	if sub.Partial() {
		resp.Partial = true
		resp.Message = msgPartial
	}
	c.JSON(http.StatusOK, resp)
}

// HandleRecaptchaConfig tells the browser which site key to execute with.
func (h *Handlers) HandleRecaptchaConfig(c *gin.Context) {
	c.JSON(http.StatusOK, h.recaptcha)
}

// HandleSchema serves the profile's JSON-LD by kind.
func (h *Handlers) HandleSchema(c *gin.Context) {
	doc, err := SchemaDoc(h.profile, c.Param("kind"))
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"message": err.Error()})
		return
	}
	js, err := schema.Marshal(doc)
	if err != nil {
		logging.LogError(h.log(c), "error encoding schema", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgGenericFailure})
		return
	}
	c.Data(http.StatusOK, "application/ld+json; charset=utf-8", []byte(js))
}

// SchemaDoc builds the document served for kind.
func SchemaDoc(p *schema.Profile, kind string) (any, error) {
	switch kind {
	case "local-business":
		return schema.LocalBusiness(p,
			schema.WithType("HomeAndConstructionBusiness"),
			schema.WithAggregateRating(),
			schema.WithServiceArea(),
			schema.WithOffers(),
		), nil
	case "faq":
		doc, ok := schema.FAQPage(p.FAQs)
		if !ok {
			return nil, apperr.NotFound("no FAQs configured")
		}
		return doc, nil
	case "reviews":
		return schema.Reviews(p), nil
	case "services":
		return schema.Services(p), nil
	default:
		return nil, apperr.NotFound("unknown schema kind: " + kind)
	}
}

func (h *Handlers) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

// failure logs err and picks the status, the user-facing message and any
// field errors. Messages of server-side errors are never passed through.
func (h *Handlers) failure(c *gin.Context, msg string, err error) (int, string, map[string]string) {
	logging.LogError(h.log(c), msg, err)

	status := apperr.HTTPStatus(err)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return status, msgRequestTimedOut, nil
	case status >= http.StatusInternalServerError:
		if ae, ok := apperr.As(err); ok && ae.Category == apperr.CategoryServer {
			return status, ae.Message, nil
		}
		return status, msgGenericFailure, nil
	}

	ae, ok := apperr.As(err)
	if !ok {
		return status, msgGenericFailure, nil
	}
	fields, _ := ae.Details["validationErrors"].(map[string]string)
	return status, ae.Message, fields
}

func (h *Handlers) log(c *gin.Context) *zap.Logger {
	return h.logger.With(
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.String("path", c.Request.URL.Path),
	)
}
