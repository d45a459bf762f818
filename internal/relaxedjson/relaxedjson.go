// Package relaxedjson decodes the JavaScript-flavored pricing documents that
// the legacy endpoints still serve: object literals with unquoted keys,
// optionally wrapped in a callback(...) invocation.
package relaxedjson

import (
	"fmt"
	"regexp"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

// callbackPattern matches a JavaScript callback("...") wrapper around a
// pricing payload. Dot matches newlines so single-line minified bodies and
// bodies with comment headers both work; the greedy prefix pins the capture
// to the last callback invocation in the document.
var callbackPattern = regexp.MustCompile(`(?ms)\A.*callback\((.*?)\);?$`)

// CallbackPayload extracts the object literal passed to the callback(...)
// wrapper of a JavaScript pricing document.
func CallbackPayload(body []byte) ([]byte, error) {
	m := callbackPattern.FindSubmatch(body)
	if m == nil {
		return nil, fmt.Errorf("no callback(...) wrapper found")
	}
	return m[1], nil
}

// Decode parses a JavaScript object literal into v. The accepted syntax is a
// superset of JSON: unquoted keys, single-quoted strings, trailing commas
// and comments all pass.
func Decode(data []byte, v interface{}) error {
	return json5.Unmarshal(normalizeQuotes(data), v)
}

// normalizeQuotes rewrites single-quoted string literals into double-quoted
// ones. The decoder underneath accepts unquoted keys, trailing commas and
// comments natively but only double-quoted strings. Escaped single quotes
// drop their backslash and embedded double quotes gain one; double-quoted
// strings and comment bodies pass through untouched.
func normalizeQuotes(data []byte) []byte {
	out := make([]byte, 0, len(data))
	i := 0
	for i < len(data) {
		switch data[i] {
		case '"':
			out = append(out, data[i])
			i++
			for i < len(data) {
				out = append(out, data[i])
				if data[i] == '\\' && i+1 < len(data) {
					out = append(out, data[i+1])
					i += 2
					continue
				}
				if data[i] == '"' {
					i++
					break
				}
				i++
			}
		case '\'':
			out = append(out, '"')
			i++
			for i < len(data) && data[i] != '\'' {
				switch data[i] {
				case '\\':
					if i+1 < len(data) && data[i+1] == '\'' {
						out = append(out, '\'')
						i += 2
						continue
					}
					out = append(out, data[i])
					i++
					if i < len(data) {
						out = append(out, data[i])
						i++
					}
				case '"':
					out = append(out, '\\', '"')
					i++
				default:
					out = append(out, data[i])
					i++
				}
			}
			if i < len(data) {
				out = append(out, '"')
				i++
			}
		case '/':
			if i+1 < len(data) && data[i+1] == '/' {
				for i < len(data) && data[i] != '\n' {
					out = append(out, data[i])
					i++
				}
			} else if i+1 < len(data) && data[i+1] == '*' {
				out = append(out, '/', '*')
				i += 2
				for i < len(data) {
					if data[i] == '*' && i+1 < len(data) && data[i+1] == '/' {
						out = append(out, '*', '/')
						i += 2
						break
					}
					out = append(out, data[i])
					i++
				}
			} else {
				out = append(out, data[i])
				i++
			}
		default:
			out = append(out, data[i])
			i++
		}
	}
	return out
}
