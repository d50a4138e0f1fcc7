package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"garagesite/pkg/apiclient"
	"garagesite/pkg/models"
)

type leadFlags struct {
	url     string
	timeout time.Duration
	req     models.LeadRequest
}

func newLeadCmd() *cobra.Command {
	f := &leadFlags{}

	cmd := &cobra.Command{
		Use:   "lead",
		Short: "Submit a test lead to a running server and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), f.timeout)
			defer cancel()

			client := apiclient.New(f.url, apiclient.WithTimeout(f.timeout))
			res := apiclient.Post[models.LeadResponse](ctx, client, "/api/lead", f.req,
				apiclient.WithRetry(false))

			out, err := json.MarshalIndent(res, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			if !res.OK() {
				return fmt.Errorf("lead rejected: %s", res.Error.Message)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.url, "url", "http://localhost:8080", "Base URL of the server")
	flags.DurationVar(&f.timeout, "timeout", 30*time.Second, "Request timeout")
	flags.StringVar(&f.req.Name, "name", "", "Customer name (required)")
	flags.StringVar(&f.req.Email, "email", "", "Customer email (required)")
	flags.StringVar(&f.req.Phone, "phone", "", "Customer phone (required)")
	flags.StringVar(&f.req.Issue, "issue", "", "What needs fixing (required)")
	flags.StringVar(&f.req.ZipCode, "zip", "", "ZIP code (required)")
	flags.StringVar(&f.req.RecaptchaToken, "recaptcha-token", "", "reCAPTCHA token, if the server verifies")
	for _, name := range []string{"name", "email", "phone", "issue", "zip"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
