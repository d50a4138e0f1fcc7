package cli

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"garagesite/pkg/api"
	"garagesite/pkg/schema"
)

func newSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema [local-business|faq|reviews|services]",
		Short: "Print the JSON-LD markup generated from the business profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := "local-business"
			if len(args) == 1 {
				kind = args[0]
			}

			profile, err := schema.LoadProfile(a.cfg.BusinessProfilePath)
			if err != nil {
				return err
			}
			doc, err := api.SchemaDoc(profile, kind)
			if err != nil {
				return err
			}
			js, err := schema.Marshal(doc)
			if err != nil {
				return err
			}

			var out bytes.Buffer
			if err := json.Indent(&out, []byte(js), "", "  "); err != nil {
				return fmt.Errorf("error formatting json-ld: %w", err)
			}
			out.WriteByte('\n')
			_, err = cmd.OutOrStdout().Write(out.Bytes())
			return err
		},
	}
}
