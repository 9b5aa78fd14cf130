package http

import (
	"bytes"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
)

// minDetectConfidence is the lowest chardet confidence trusted for decoding.
const minDetectConfidence = 50

// prescanLimit is how much of the body is searched for a <meta> charset.
const prescanLimit = 1024

// Decode converts body to UTF-8 text. It prefers the charset declared in
// contentType, then a BOM or <meta> declaration, then plain UTF-8, then
// statistical detection. When none of these apply the body is decoded as
// UTF-8 with invalid sequences replaced by U+FFFD and degraded is true.
func Decode(body []byte, contentType string) (text, name string, degraded bool) {
	enc, name, certain := charset.DetermineEncoding(body, contentType)
	if !certain {
		// DetermineEncoding reports its own fallbacks the same way as a
		// declared utf-8 or windows-1252, so the declaration is read here.
		enc, name = metaCharset(body)
		if enc == nil || name == "utf-8" {
			if utf8.Valid(body) {
				return string(body), "utf-8", false
			}
			enc, name = detect(body)
		}
	}

	if enc == nil {
		return strings.ToValidUTF8(string(body), "\uFFFD"), "utf-8", true
	}
	if name == "utf-8" {
		if !utf8.Valid(body) {
			return strings.ToValidUTF8(string(body), "\uFFFD"), "utf-8", true
		}
		return strings.TrimPrefix(string(body), "\uFEFF"), name, false
	}
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return strings.ToValidUTF8(string(body), "\uFFFD"), "utf-8", true
	}
	return strings.TrimPrefix(string(out), "\uFEFF"), name, false
}

// metaCharset returns the encoding named by a <meta charset> or
// <meta http-equiv="Content-Type"> tag near the start of body.
func metaCharset(body []byte) (encoding.Encoding, string) {
	if len(body) > prescanLimit {
		body = body[:prescanLimit]
	}
	z := html.NewTokenizer(bytes.NewReader(body))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return nil, ""
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if string(name) != "meta" {
				continue
			}
			var cs, content string
			var contentType bool
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				switch string(key) {
				case "charset":
					cs = string(val)
				case "content":
					content = string(val)
				case "http-equiv":
					contentType = strings.EqualFold(string(val), "content-type")
				}
			}
			if cs == "" && contentType {
				cs = contentCharset(content)
			}
			if cs == "" {
				continue
			}
			if enc, name := charset.Lookup(cs); enc != nil {
				return enc, name
			}
		}
	}
}

// contentCharset extracts the charset parameter of a Content-Type value.
func contentCharset(content string) string {
	_, params, err := mime.ParseMediaType(content)
	if err != nil {
		return ""
	}
	return params["charset"]
}

func detect(body []byte) (encoding.Encoding, string) {
	res, err := chardet.NewHtmlDetector().DetectBest(body)
	if err != nil || res.Confidence < minDetectConfidence {
		return nil, ""
	}
	enc, name := charset.Lookup(res.Charset)
	if enc == nil || name == "utf-8" {
		// A UTF-8 guess for bytes already known to be invalid UTF-8 is no help.
		return nil, ""
	}
	return enc, name
}
