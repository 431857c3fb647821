package unifiedllm

import (
	"strings"

	"github.com/tidwall/gjson"
)

// DefaultResponsePath is used by the "other" adapter when none is configured.
const DefaultResponsePath = "data.choices[0].message.content"

// ExtractResponsePath reads the value at a dotted/bracketed path such as
// data.choices[0].message.content or a["b.c"] from a JSON body. A missing
// path, a null value or a non-JSON body yields "". Strings are returned as-is;
// any other value is returned as its JSON text.
func ExtractResponsePath(body []byte, path string) string {
	if len(body) == 0 || !gjson.ValidBytes(body) {
		return ""
	}
	res := gjson.GetBytes(body, responsePathToGJSON(path))
	switch {
	case !res.Exists(), res.Type == gjson.Null:
		return ""
	case res.Type == gjson.String:
		return res.Str
	default:
		return res.String()
	}
}

// responsePathToGJSON rewrites bracket segments as dotted ones and escapes
// every segment so keys are matched literally.
func responsePathToGJSON(path string) string {
	var segs []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			segs = append(segs, escapePathComponent(cur.String()))
			cur.Reset()
		}
	}

	for i := 0; i < len(path); i++ {
		switch c := path[i]; c {
		case '.':
			flush()
		case '[':
			flush()
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				cur.WriteString(path[i:])
				i = len(path)
				continue
			}
			segs = append(segs, escapePathComponent(unquote(path[i+1:i+end])))
			i += end
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return strings.Join(segs, ".")
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

// escapePathComponent escapes characters that gjson and sjson treat as syntax.
func escapePathComponent(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\', '.', '*', '?', '|', '#', '@', '!', ':':
			sb.WriteByte('\\')
		}
		sb.WriteByte(s[i])
	}
	return sb.String()
}
