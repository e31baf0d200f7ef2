package cmd

import (
	"fmt"
	"io"

	"github.com/openstay/openstay-release/internal/output"
)

const (
	formatDefault = ""
	formatJSON    = "json"
	formatTable   = "table"
)

func validateOutputFormat() error {
	switch flagOutput {
	case formatDefault, formatJSON, formatTable:
		return nil
	default:
		return fmt.Errorf("unknown output format %q", flagOutput)
	}
}

// writeVariables writes vars in the requested format.
func writeVariables(w io.Writer, title string, vars map[string]string) error {
	if flagShowVariable != "" {
		return output.WriteVariable(w, vars, flagShowVariable)
	}

	switch flagOutput {
	case formatJSON:
		return output.WriteJSON(w, vars)
	case formatTable:
		output.WriteVariablesTable(w, title, vars)
		return nil
	case formatDefault:
		return output.WriteAll(w, vars)
	default:
		return fmt.Errorf("unknown output format %q", flagOutput)
	}
}
