package tools

import (
	"encoding/json"
	"fmt"
)

// ParseParams parses JSON-RPC params into the target struct.
func ParseParams(params interface{}, target interface{}) error {
	if params == nil {
		return fmt.Errorf("missing required parameters")
	}

	paramsBytes, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("failed to marshal parameters: %w", err)
	}

	if err := json.Unmarshal(paramsBytes, target); err != nil {
		return fmt.Errorf("failed to parse parameters: %w", err)
	}

	return nil
}
