package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	iacerrors "github.com/veldtec/iacscan/internal/errors"
	"github.com/veldtec/iacscan/internal/sanitizer"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <payload.json>",
		Short: "Scan an arbitrary JSON payload for residual sensitive data",
		Long: `Validate runs the privacy validator over any JSON document and reports
every forbidden field name, GUID, resource ID path and connection string it
finds. Pass "-" to read from stdin.

The exit code is non-zero when violations are found, so it can gate a
pipeline stage.`,
		Example: `  iacscan validate payload.json
  some-tool --emit-json | iacscan validate -`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	var data []byte
	var err error
	if args[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return err
	}

	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return iacerrors.Wrap(iacerrors.ErrorTypeParse, "payload is not valid JSON", err)
	}

	result := sanitizer.Validate(payload)
	if result.Valid {
		fmt.Println("payload is clean")
		return nil
	}

	for _, v := range result.Violations {
		fmt.Printf("%s\t%s\t%s\n", v.Rule, v.Path, v.Detail)
	}
	return iacerrors.NewPrivacyViolation(len(result.Violations))
}
