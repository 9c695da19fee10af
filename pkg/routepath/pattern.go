package routepath

import (
	"fmt"
	"regexp"
	"strings"
)

// Params maps parameter names to the path segments they captured.
type Params map[string]string

// Pattern is a compiled route template.
type Pattern struct {
	// Template is the normalized source template.
	Template string

	// Exact reports whether the pattern must consume the whole path.
	Exact bool

	// Params are the parameter names in left-to-right template order.
	// Duplicates are kept; len(Params) equals the number of capture groups.
	Params []string

	re *regexp.Regexp
}

// Compile builds a Pattern from a route template.
//
// Each ":name" placeholder (a run of characters other than "/" and "?")
// becomes a single-segment capture. Every other character is matched
// literally, including "?", so templates may carry a query string.
func Compile(template string, exact bool) (*Pattern, error) {
	template = Clean(template)

	var (
		b      strings.Builder
		params []string
	)
	b.WriteString("^")

	body := template
	if !exact {
		// The continuation group supplies the separating slash.
		body = strings.TrimSuffix(body, "/")
	}

	for i := 0; i < len(body); {
		if body[i] != ':' {
			j := strings.IndexByte(body[i:], ':')
			if j < 0 {
				j = len(body) - i
			}
			b.WriteString(regexp.QuoteMeta(body[i : i+j]))
			i += j
			continue
		}

		j := i + 1
		for j < len(body) && body[j] != '/' && body[j] != '?' {
			j++
		}
		if j == i+1 {
			// A lone ":" is literal text.
			b.WriteString(":")
			i = j
			continue
		}
		params = append(params, body[i+1:j])
		b.WriteString("([^/]+)")
		i = j
	}

	if exact {
		b.WriteString("$")
	} else {
		b.WriteString("(?:/.*)?$")
	}

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, fmt.Errorf("routepath: compile %q: %w", template, err)
	}

	return &Pattern{
		Template: template,
		Exact:    exact,
		Params:   params,
		re:       re,
	}, nil
}

// MustCompile is like Compile but panics if the template cannot be compiled.
func MustCompile(template string, exact bool) *Pattern {
	p, err := Compile(template, exact)
	if err != nil {
		panic(err)
	}
	return p
}

// Match applies the pattern to path. On success it returns the captured
// parameters zipped with the parameter names; when a name repeats, the
// rightmost capture wins. A capture that did not participate maps to "".
func (p *Pattern) Match(path string) (Params, bool) {
	if p == nil || p.re == nil {
		return nil, false
	}

	path = Clean(path)
	m := p.re.FindStringSubmatchIndex(path)
	if m == nil {
		return nil, false
	}

	params := make(Params, len(p.Params))
	for i, name := range p.Params {
		start, end := m[2*(i+1)], m[2*(i+1)+1]
		if start < 0 {
			params[name] = ""
			continue
		}
		params[name] = path[start:end]
	}
	return params, true
}

// Matches reports whether path matches the pattern.
func (p *Pattern) Matches(path string) bool {
	if p == nil || p.re == nil {
		return false
	}
	return p.re.MatchString(Clean(path))
}

// String returns the regular expression the pattern compiled to.
func (p *Pattern) String() string {
	if p == nil || p.re == nil {
		return ""
	}
	return p.re.String()
}

// Match is the function form of Pattern.Match.
func Match(path string, p *Pattern) (Params, bool) {
	return p.Match(path)
}
