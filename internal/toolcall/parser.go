package toolcall

import (
	"encoding/json"
	"strings"
)

type toolInvocation struct {
	Tool      string `json:"tool"`
	Arguments struct {
		SQL       string `json:"sql"`
		Rationale string `json:"rationale"`
	} `json:"arguments"`
}

// Parse interprets one raw model output. Precedence: the first balanced
// JSON object naming the execute_sql tool with a non-empty sql argument
// wins; later invocations are ignored. Output with no recognizable block,
// or with an unterminated block, falls back to a plain reply over the
// whole text.
func Parse(raw string) Decision {
	for _, candidate := range scanObjects(raw) {
		var inv toolInvocation
		if err := json.Unmarshal([]byte(candidate), &inv); err != nil {
			continue
		}
		if inv.Tool != ToolName {
			continue
		}
		sql := strings.TrimSpace(inv.Arguments.SQL)
		if sql == "" {
			continue
		}
		return RunQuery{SQL: sql, Rationale: inv.Arguments.Rationale}
	}
	return Respond{Text: strings.TrimSpace(raw)}
}

// scanObjects returns every balanced top-level-or-nested JSON object in s,
// ordered by opening position. Unterminated objects are dropped.
func scanObjects(s string) []string {
	var objects []string
	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		if end, ok := matchObject(s, i); ok {
			objects = append(objects, s[i:end+1])
		}
	}
	return objects
}

// matchObject finds the closing brace for the object opening at start,
// honoring string literals and escapes.
func matchObject(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
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
				return i, true
			}
		}
	}
	return 0, false
}
