package llm

import (
	"fmt"
	"strings"
)

// ExtractJSONObject pulls the JSON object out of a model reply that may wrap
// it in markdown fences or prose. It takes the outermost braces verbatim;
// anything malformed inside fails at validation, not here.
func ExtractJSONObject(content string) ([]byte, error) {
	s := strings.TrimSpace(content)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no json object in model reply (%d bytes)", len(content))
	}
	return []byte(s[start : end+1]), nil
}
