package ocr

import (
	"strings"

	"github.com/tidwall/gjson"
)

const codeFence = "```"

// ExtractJSONObject pulls the first JSON object out of model output, which
// may wrap it in a markdown fence or surround it with prose.
func ExtractJSONObject(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	if block, ok := fenced(raw); ok {
		raw = block
	}
	if gjson.Valid(raw) && gjson.Parse(raw).IsObject() {
		return raw, true
	}
	return balancedObject(raw)
}

func fenced(raw string) (string, bool) {
	start := strings.Index(raw, codeFence)
	if start == -1 {
		return "", false
	}
	rest := raw[start+len(codeFence):]
	end := strings.Index(rest, codeFence)
	if end == -1 {
		return "", false
	}
	block := strings.TrimLeft(rest[:end], "\r\n")
	// drop a language tag such as "json"
	if idx := strings.IndexAny(block, "\r\n"); idx != -1 {
		if first := strings.TrimSpace(block[:idx]); first != "" && !strings.ContainsAny(first, "[{") {
			block = block[idx+1:]
		}
	} else if strings.HasPrefix(block, "json") {
		block = strings.TrimPrefix(block, "json")
	}
	block = strings.TrimSpace(block)
	return block, block != ""
}

// balancedObject scans for the first brace-balanced object, skipping braces
// inside strings.
func balancedObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	if start == -1 {
		return "", false
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				obj := s[start : i+1]
				if gjson.Valid(obj) {
					return obj, true
				}
				return "", false
			}
		}
	}
	return "", false
}
