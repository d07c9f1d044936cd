package sessions

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// formatMessage renders one transcript message as a single preview line
// with a role prefix. Unrenderable messages come back empty.
func formatMessage(messageType, messageJSON string) string {
	// DuckDB's to_json can hand back a quoted JSON string.
	if strings.HasPrefix(messageJSON, `"`) && strings.HasSuffix(messageJSON, `"`) {
		var unquoted string
		if err := json.Unmarshal([]byte(messageJSON), &unquoted); err == nil {
			messageJSON = unquoted
		}
	}

	var message map[string]interface{}
	if err := json.Unmarshal([]byte(messageJSON), &message); err != nil {
		return ""
	}
	contentRaw, ok := message["content"]
	if !ok {
		return ""
	}

	var rolePrefix string
	switch messageType {
	case "user":
		rolePrefix = "[User] "
	case "assistant":
		rolePrefix = "[Assistant] "
	default:
		rolePrefix = fmt.Sprintf("[%s] ", messageType)
	}

	switch content := contentRaw.(type) {
	case string:
		return rolePrefix + truncate(content, 50)

	case []interface{}:
		var parts []string
		for _, item := range content {
			itemMap, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			switch itemMap["type"] {
			case "text":
				if text, ok := itemMap["text"].(string); ok && text != "" {
					if !strings.Contains(text, "system-reminder") {
						parts = append(parts, truncate(text, 50))
					}
				}
			case "tool_use":
				parts = append(parts, formatToolUse(itemMap))
			case "tool_result":
				if result, ok := itemMap["content"].(string); ok {
					parts = append(parts, "-> "+truncate(result, 40))
				}
			}
		}
		if len(parts) > 0 {
			return rolePrefix + strings.Join(parts, " | ")
		}
	}

	return ""
}

// formatToolUse compacts a tool call into its name and the most telling
// piece of its input.
func formatToolUse(item map[string]interface{}) string {
	toolName := "unknown"
	if name, ok := item["name"].(string); ok {
		toolName = name
	}

	var inputStr string
	if input, ok := item["input"].(map[string]interface{}); ok {
		if cmd, ok := input["command"].(string); ok {
			inputStr = truncate(cmd, 30)
		} else if path, ok := input["file_path"].(string); ok {
			inputStr = filepath.Base(path)
		} else if pattern, ok := input["pattern"].(string); ok {
			inputStr = truncate(pattern, 20)
		} else {
			inputBytes, _ := json.Marshal(input)
			inputStr = truncate(string(inputBytes), 30)
		}
	}

	if inputStr != "" {
		return fmt.Sprintf("[tool] %s: %s", toolName, inputStr)
	}
	return fmt.Sprintf("[tool] %s", toolName)
}

// truncate collapses whitespace and caps the string at maxLen runes.
func truncate(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
