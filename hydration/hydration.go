// Package hydration recovers conversations from JSON payloads embedded in
// script elements by client-rendered share pages.
package hydration

import (
	"html"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/chatshare"
	"github.com/fwojciec/chatshare/clean"
)

// contentKeys are the message body fields, in priority order.
var contentKeys = []string{"content", "message", "value", "text"}

// Ensure Strategy implements chatshare.Strategy at compile time.
var _ chatshare.Strategy = (*Strategy)(nil)

// Strategy walks every embedded JSON payload looking for objects that
// carry a role and a message body.
type Strategy struct {
	// Normalizer cleans message text. Defaults to clean.Default().
	Normalizer *clean.Normalizer
}

// Name returns "json".
func (s *Strategy) Name() string { return "json" }

// ExtractTurns returns the distinct (role, text) pairs found in doc's
// inline scripts, in first-seen order. Fragments that fail to parse are
// skipped.
func (s *Strategy) ExtractTurns(doc string) ([]chatshare.Turn, error) {
	norm := s.Normalizer
	if norm == nil {
		norm = clean.Default()
	}
	w := &walker{norm: norm, seen: make(map[uint64]struct{})}

	for _, script := range Scripts(doc) {
		for _, frag := range Fragments(script) {
			v, err := Parse(frag)
			if err != nil {
				continue
			}
			w.walk(v, 0)
		}
	}
	return w.turns, nil
}

type walker struct {
	norm  *clean.Normalizer
	seen  map[uint64]struct{}
	turns []chatshare.Turn
}

// walk visits v and its descendants. depth counts levels across nested
// string payloads too, so re-parsed strings share the MaxDepth bound.
func (w *walker) walk(v *Value, depth int) {
	if depth > MaxDepth {
		return
	}
	switch v.Kind {
	case Object:
		w.visit(v)
		for _, m := range v.Members {
			w.walk(m.Value, depth+1)
		}
	case Array:
		for _, item := range v.Items {
			w.walk(item, depth+1)
		}
	case String:
		w.walkString(v.Str, depth)
	}
}

// visit emits a turn when obj has a role and a non-empty body.
func (w *walker) visit(obj *Value) {
	role, ok := roleOf(obj)
	if !ok {
		return
	}
	for _, key := range contentKeys {
		field := obj.Get(key)
		if field == nil {
			continue
		}
		text := w.norm.Clean(html.UnescapeString(Coalesce(field).String()))
		if text != "" {
			w.emit(role, text)
			return
		}
	}
}

func roleOf(obj *Value) (chatshare.Role, bool) {
	if r, ok := obj.Get("author").Get("role").StringValue(); ok {
		return chatshare.ParseRole(r), true
	}
	if r, ok := obj.Get("role").StringValue(); ok {
		return chatshare.ParseRole(r), true
	}
	return "", false
}

func (w *walker) emit(role chatshare.Role, text string) {
	key := xxhash.Sum64String(string(role) + "\x00" + text)
	if _, dup := w.seen[key]; dup {
		return
	}
	w.seen[key] = struct{}{}
	w.turns = append(w.turns, chatshare.Turn{Role: role, Text: text, Signal: chatshare.SignalJSONField})
}

// walkString parses strings that embed serialized payloads: whole JSON
// documents and streamed "id:JSON" lines.
func (w *walker) walkString(s string, depth int) {
	t := strings.TrimSpace(s)
	if len(t) < 2 {
		return
	}
	if t[0] == '{' || t[0] == '[' {
		if v, err := Parse(t); err == nil {
			w.walk(v, depth+1)
		}
		return
	}
	if !strings.Contains(t, ":") {
		return
	}
	for _, line := range strings.Split(t, "\n") {
		i := strings.IndexByte(line, ':')
		if i <= 0 || !isStreamID(line[:i]) {
			continue
		}
		rest := strings.TrimSpace(line[i+1:])
		if rest == "" || (rest[0] != '{' && rest[0] != '[') {
			continue
		}
		if v, err := Parse(rest); err == nil {
			w.walk(v, depth+1)
		}
	}
}

func isStreamID(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
