// Package render substitutes {name} and {{name}} placeholders in message templates.
//
// Placeholders are matched case-insensitively against a declared set of variables.
// Unknown placeholders are left as written. The template is scanned once, so a value
// that itself contains braces is never expanded again.
package render

import (
	"sort"
	"strings"
)

// LookupFunc resolves a lower-cased variable name.
type LookupFunc func(name string) (string, bool)

// Registry declares the variables available for subjects of type S.
type Registry[S any] struct {
	resolvers map[string]func(S) string
}

func NewRegistry[S any]() *Registry[S] {
	return &Registry[S]{resolvers: make(map[string]func(S) string)}
}

// Register adds or replaces a variable. Names are stored lower-cased.
func (r *Registry[S]) Register(name string, fn func(S) string) *Registry[S] {
	r.resolvers[strings.ToLower(name)] = fn
	return r
}

// Extend returns a copy of r holding every variable of r plus the ones added afterwards.
func (r *Registry[S]) Extend() *Registry[S] {
	out := NewRegistry[S]()
	for k, v := range r.resolvers {
		out.resolvers[k] = v
	}
	return out
}

// Names returns the declared variable names in sorted order.
func (r *Registry[S]) Names() []string {
	names := make([]string, 0, len(r.resolvers))
	for k := range r.resolvers {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (r *Registry[S]) Render(tmpl string, subject S) string {
	return Execute(tmpl, func(name string) (string, bool) {
		fn, ok := r.resolvers[name]
		if !ok {
			return "", false
		}
		return fn(subject), true
	})
}

// Map renders against a plain key/value map. Keys are matched case-insensitively.
func Map(tmpl string, vars map[string]string) string {
	lower := make(map[string]string, len(vars))
	for k, v := range vars {
		lower[strings.ToLower(k)] = v
	}
	return Execute(tmpl, func(name string) (string, bool) {
		v, ok := lower[name]
		return v, ok
	})
}

// Execute is the tokenizer shared by Registry and Map.
func Execute(tmpl string, lookup LookupFunc) string {
	var b strings.Builder
	b.Grow(len(tmpl))

	i := 0
	for i < len(tmpl) {
		c := tmpl[i]
		if c != '{' {
			b.WriteByte(c)
			i++
			continue
		}

		if i+1 < len(tmpl) && tmpl[i+1] == '{' {
			end := scanName(tmpl, i+2)
			if end > i+2 && end+1 < len(tmpl) && tmpl[end] == '}' && tmpl[end+1] == '}' {
				writeToken(&b, tmpl[i:end+2], tmpl[i+2:end], lookup)
				i = end + 2
				continue
			}
		}

		end := scanName(tmpl, i+1)
		if end > i+1 && end < len(tmpl) && tmpl[end] == '}' {
			writeToken(&b, tmpl[i:end+1], tmpl[i+1:end], lookup)
			i = end + 1
			continue
		}

		b.WriteByte(c)
		i++
	}
	return b.String()
}

func writeToken(b *strings.Builder, raw, name string, lookup LookupFunc) {
	if v, ok := lookup(strings.ToLower(name)); ok {
		b.WriteString(v)
		return
	}
	b.WriteString(raw)
}

func scanName(s string, from int) int {
	i := from
	for i < len(s) && isNameByte(s[i]) {
		i++
	}
	return i
}

func isNameByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}
