package epic

import (
	"encoding/json"
	"fmt"
	"strings"
)

// decodeJSONBlock extracts the JSON object from an agent reply and decodes
// it into v. Agents are asked for bare JSON but routinely wrap it in prose
// or markdown fences, so everything outside the outermost braces is
// ignored.
func decodeJSONBlock(output string, v any) error {
	s := strings.TrimSpace(output)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("no JSON object in agent output")
	}
	if err := json.Unmarshal([]byte(s[start:end+1]), v); err != nil {
		return fmt.Errorf("decode agent JSON: %w", err)
	}
	return nil
}
