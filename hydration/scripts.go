package hydration

import (
	"strings"

	"golang.org/x/net/html"
)

// Scripts returns the text of every inline script element in doc,
// skipping scripts loaded from a src attribute.
func Scripts(doc string) []string {
	var (
		out      []string
		buf      strings.Builder
		inScript bool
		external bool
	)

	z := html.NewTokenizer(strings.NewReader(doc))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if inScript && !external && buf.Len() > 0 {
				out = append(out, buf.String())
			}
			return out
		case html.StartTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "script" {
				continue
			}
			inScript, external = true, false
			buf.Reset()
			for hasAttr {
				var key []byte
				key, _, hasAttr = z.TagAttr()
				if string(key) == "src" {
					external = true
				}
			}
		case html.TextToken:
			if inScript && !external {
				buf.Write(z.Text())
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			if string(name) == "script" && inScript {
				if !external && buf.Len() > 0 {
					out = append(out, buf.String())
				}
				inScript = false
			}
		}
	}
}

const pushCall = ".push("

// Fragments returns the candidate JSON documents in a script: the whole
// script when it is a bare JSON document, and the array argument of each
// push call. Each fragment starts at its JSON value; trailing text is left
// for the decoder to ignore.
func Fragments(script string) []string {
	s := strings.TrimSpace(script)
	var out []string
	if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
		out = append(out, s)
	}

	for i := 0; ; {
		j := strings.Index(s[i:], pushCall)
		if j < 0 {
			break
		}
		start := i + j + len(pushCall)
		k := start
		for k < len(s) && isSpace(s[k]) {
			k++
		}
		if k < len(s) && s[k] == '[' {
			out = append(out, s[k:])
		}
		i = start
	}
	return out
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
