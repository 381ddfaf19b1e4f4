// Package dns merges mail-related TXT records so that records published by
// one provider never clobber another provider's values.
package dns

import (
	"strings"
)

const spfVersion = "v=spf1"

// DefaultSPFAll is the qualifier used when a new SPF record is created.
const DefaultSPFAll = "~all"

// IsSPF reports whether a TXT value is an SPF record. Surrounding quotes are
// ignored.
func IsSPF(value string) bool {
	fields := strings.Fields(Unquote(value))
	return len(fields) > 0 && strings.EqualFold(fields[0], spfVersion)
}

// Includes returns the domains of all include mechanisms of an SPF record.
func Includes(spf string) []string {
	var out []string
	for _, term := range strings.Fields(Unquote(spf)) {
		if d, ok := includeDomain(term); ok {
			out = append(out, d)
		}
	}
	return out
}

// MergeSPF adds "include:<include>" to an SPF record.
//
// The include is placed before the trailing all mechanism, or appended when
// the record has none. A record that already includes the domain is
// returned normalized but otherwise unchanged. An empty or non-SPF existing
// value yields a fresh "v=spf1 include:<include> ~all".
func MergeSPF(existing, include string) string {
	include = strings.TrimSpace(include)
	if !IsSPF(existing) {
		return strings.Join([]string{spfVersion, "include:" + include, DefaultSPFAll}, " ")
	}

	terms := strings.Fields(Unquote(existing))
	terms[0] = spfVersion
	for _, term := range terms[1:] {
		if d, ok := includeDomain(term); ok && strings.EqualFold(d, include) {
			return strings.Join(terms, " ")
		}
	}

	merged := make([]string, 0, len(terms)+1)
	inserted := false
	for _, term := range terms {
		if !inserted && isAll(term) {
			merged = append(merged, "include:"+include)
			inserted = true
		}
		merged = append(merged, term)
	}
	if !inserted {
		merged = append(merged, "include:"+include)
	}
	return strings.Join(merged, " ")
}

// MergeTXT returns the TXT rrset values with record added.
//
// When record is an SPF record it replaces every SPF value in the set, since
// a domain may publish only one. Non-SPF values are kept in order. Values
// are returned quoted, the way LiveDNS stores TXT data.
func MergeTXT(values []string, record string) []string {
	spf := IsSPF(record)
	want := Unquote(record)

	out := make([]string, 0, len(values)+1)
	for _, v := range values {
		if spf && IsSPF(v) {
			continue
		}
		if Unquote(v) == want {
			continue
		}
		out = append(out, Quote(v))
	}
	return append(out, Quote(want))
}

// FindSPF returns the first SPF value of a TXT rrset.
func FindSPF(values []string) (string, bool) {
	for _, v := range values {
		if IsSPF(v) {
			return Unquote(v), true
		}
	}
	return "", false
}

// Quote wraps a TXT value in double quotes unless it already is.
func Quote(value string) string {
	value = strings.TrimSpace(value)
	if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
		return value
	}
	return `"` + value + `"`
}

// Unquote strips one pair of surrounding double quotes.
func Unquote(value string) string {
	value = strings.TrimSpace(value)
	if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
		return value[1 : len(value)-1]
	}
	return value
}

// RelativeName converts a record name to one relative to zone, as LiveDNS
// expects. "mailjet._domainkey.example.com." in zone "example.com" becomes
// "mailjet._domainkey" and the zone apex becomes "@".
func RelativeName(name, zone string) string {
	name = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".")
	zone = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(zone)), ".")

	switch {
	case name == "" || name == "@" || name == zone:
		return "@"
	case strings.HasSuffix(name, "."+zone):
		return strings.TrimSuffix(name, "."+zone)
	default:
		return name
	}
}

func includeDomain(term string) (string, bool) {
	t := strings.TrimLeft(term, "+")
	if len(t) > len("include:") && strings.EqualFold(t[:len("include:")], "include:") {
		return t[len("include:"):], true
	}
	return "", false
}

func isAll(term string) bool {
	t := strings.ToLower(term)
	if t != "" && strings.ContainsRune("+-~?", rune(t[0])) {
		t = t[1:]
	}
	return t == "all"
}
