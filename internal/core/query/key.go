package query

import (
	"net/url"
	"sort"
	"strings"
)

// Key addresses one cache entry. Two keys built from the same family, scope
// and parameters are equal regardless of parameter order.
type Key struct {
	family    string
	canonical string
}

// NewKey builds the canonical key "family/scope?a=1&b=2" with parameters
// sorted by name. Empty parameter maps produce "family/scope".
func NewKey(family, scope string, params map[string]string) Key {
	var b strings.Builder
	b.WriteString(family)
	b.WriteByte('/')
	b.WriteString(scope)

	if len(params) > 0 {
		names := make([]string, 0, len(params))
		for name := range params {
			names = append(names, name)
		}
		sort.Strings(names)

		b.WriteByte('?')
		for i, name := range names {
			if i > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(name))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(params[name]))
		}
	}

	return Key{family: family, canonical: b.String()}
}

// Family returns the resource family used for bulk invalidation.
func (k Key) Family() string { return k.family }

func (k Key) String() string { return k.canonical }
