package services

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"garagesite/pkg/clients/airtable"
	"garagesite/pkg/clients/twilio"
	"garagesite/pkg/models"
	"garagesite/pkg/utils"
)

// LeadEvent is handed to notifiers once the lead has been emailed.
type LeadEvent struct {
	LeadID     string
	Source     string
	Lead       models.LeadFormData
	UserInfo   *models.UserInfo
	ReceivedAt time.Time
}

// Notifier is a best-effort side effect of a successful submission. Errors
// are logged, never returned to the visitor.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, ev LeadEvent) error
}

// maxSMSBytes keeps an alert within two concatenated SMS segments.
const maxSMSBytes = 320

// SMSNotifier texts the business about emergency requests.
type SMSNotifier struct {
	client twilio.Client
	to     string
}

func NewSMSNotifier(client twilio.Client, to string) *SMSNotifier {
	return &SMSNotifier{client: client, to: to}
}

func (n *SMSNotifier) Name() string { return "sms" }

func (n *SMSNotifier) Notify(ctx context.Context, ev LeadEvent) error {
	if !ev.Lead.Emergency {
		return nil
	}
	body := fmt.Sprintf("EMERGENCY lead: %s %s - %s", ev.Lead.Name, ev.Lead.Phone, ev.Lead.Summary())
	_, err := n.client.SendSMS(ctx, n.to, truncate(body, maxSMSBytes))
	return err
}

// truncate shortens s to at most max bytes, ending in "...", without
// splitting a multi-byte character.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max - len("...")
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// CRMNotifier records leads in an Airtable table, once per phone number.
type CRMNotifier struct {
	client airtable.Client
	table  string
	logger *zap.Logger
}

func NewCRMNotifier(client airtable.Client, table string, logger *zap.Logger) *CRMNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CRMNotifier{client: client, table: table, logger: logger}
}

func (n *CRMNotifier) Name() string { return "crm" }

func (n *CRMNotifier) Notify(ctx context.Context, ev LeadEvent) error {
	hash := utils.ContactHash(ev.Lead.Phone)

	exists, err := n.client.RecordExists(ctx, n.table, "hash", hash)
	if err != nil {
		return fmt.Errorf("error checking %s table: %w", n.table, err)
	}
	if exists {
		n.logger.Info("skipping crm record, contact already exists",
			zap.String("lead_id", ev.LeadID), zap.String("hash", hash[:12]))
		return nil
	}

	record := map[string]any{
		"Lead ID":   ev.LeadID,
		"Name":      ev.Lead.Name,
		"Email":     ev.Lead.Email,
		"Phone":     ev.Lead.Phone,
		"Request":   ev.Lead.Summary(),
		"ZIP":       ev.Lead.ZipCode,
		"Emergency": ev.Lead.Emergency,
		"Source":    ev.Source,
		"Received":  ev.ReceivedAt.UTC().Format(time.RFC3339),
		"hash":      hash,
	}
	if ev.UserInfo != nil {
		record["Page"] = ev.UserInfo.PageURL
		record["UTM Source"] = ev.UserInfo.UTMSource
		record["UTM Campaign"] = ev.UserInfo.UTMCampaign
		record["GCLID"] = ev.UserInfo.GCLID
	}

	if _, err := n.client.CreateRecord(ctx, n.table, record); err != nil {
		return fmt.Errorf("error creating crm record: %w", err)
	}
	return nil
}
