package pagegraph

import (
	"net/url"
	"strings"

	"github.com/pagegraph-tools/pagegraph/pkg/errors"
)

// ResourceFilter selects resource requests in the manner of adblock
// network filters, reduced to what a recording can answer:
//
//	"pixel"                          substring of the request URL
//	"||cdn.example.com^"             the host and its subdomains
//	"||example.com^$script"          with options
//	"$image,third-party"             options only
//
// Options after "$" are a comma list of request types (script, image,
// stylesheet, ...) matched against the type recorded on the resource's
// request start edges, plus the party constraints "first-party" and
// "third-party", judged against the page's root URL. Domain grouping
// uses the last two host labels; hosts under multi-label public
// suffixes need explicit host anchors.
type ResourceFilter struct {
	pattern    string
	hostAnchor bool
	types      map[string]bool
	party      party
}

type party int

const (
	anyParty party = iota
	firstParty
	thirdParty
)

// ParseResourceFilter parses a filter pattern. A pattern with no body
// and no options is an INVALID_INPUT error.
func ParseResourceFilter(pattern string) (*ResourceFilter, error) {
	body, opts, _ := strings.Cut(pattern, "$")

	f := &ResourceFilter{}
	if strings.HasPrefix(body, "||") {
		f.hostAnchor = true
		body = strings.TrimSuffix(strings.TrimPrefix(body, "||"), "^")
	}
	f.pattern = body

	for _, opt := range strings.Split(opts, ",") {
		switch opt = strings.TrimSpace(opt); opt {
		case "":
		case "first-party":
			f.party = firstParty
		case "third-party":
			f.party = thirdParty
		default:
			if f.types == nil {
				f.types = make(map[string]bool)
			}
			f.types[opt] = true
		}
	}

	if f.pattern == "" && f.types == nil && f.party == anyParty {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty filter pattern %q", pattern)
	}
	return f, nil
}

// ResourcesMatchingFilter returns every Resource node whose request
// matches the given filter pattern, in source-document order. Resources
// with unparseable URLs never match. See [ResourceFilter] for the
// pattern syntax.
//
// Party constraints need the page's root URL; its absence or ambiguity
// fails the query the way [Graph.RootURL] does.
func (g *Graph) ResourcesMatchingFilter(pattern string) ([]*Node, error) {
	f, err := ParseResourceFilter(pattern)
	if err != nil {
		return nil, err
	}

	var rootDomain string
	if f.party != anyParty {
		rootURL, err := g.RootURL()
		if err != nil {
			return nil, err
		}
		u, err := url.Parse(rootURL)
		if err != nil || u.Hostname() == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "root URL %q has no host", rootURL)
		}
		rootDomain = baseDomain(u.Hostname())
	}

	var out []*Node
	for _, n := range g.Nodes() {
		res, ok := n.Type.(Resource)
		if !ok {
			continue
		}
		u, err := url.Parse(res.URL)
		if err != nil || u.Hostname() == "" {
			continue
		}

		if f.hostAnchor {
			if !hostMatches(u.Hostname(), f.pattern) {
				continue
			}
		} else if f.pattern != "" && !strings.Contains(res.URL, f.pattern) {
			continue
		}

		if len(f.types) > 0 {
			rt, err := g.resourceRequestType(n.ID)
			if err != nil {
				return nil, err
			}
			if !f.types[rt] {
				continue
			}
		}

		if f.party != anyParty {
			same := baseDomain(u.Hostname()) == rootDomain
			if (f.party == firstParty) != same {
				continue
			}
		}

		out = append(out, n)
	}
	return out, nil
}

// resourceRequestType returns the type the resource was requested with,
// from its incoming request start edges. Every fetch of one resource
// carries the same type; disagreement is an INVALID_INPUT error. A
// resource with no request start edge returns "".
func (g *Graph) resourceRequestType(id NodeID) (string, error) {
	edges, err := g.IncidentEdges(id, Incoming)
	if err != nil {
		return "", err
	}

	var rt string
	seen := false
	for _, e := range edges {
		rs, ok := e.Type.(RequestStart)
		if !ok {
			continue
		}
		if seen && rs.RequestType != rt {
			return "", errors.New(errors.ErrCodeInvalidInput,
				"resource %q requested with conflicting request types (%q, %q)", id, rt, rs.RequestType)
		}
		rt, seen = rs.RequestType, true
	}
	return rt, nil
}

// hostMatches reports whether host is anchor or one of its subdomains.
func hostMatches(host, anchor string) bool {
	return host == anchor || strings.HasSuffix(host, "."+anchor)
}

// baseDomain returns the last two labels of a host, the grouping used
// for first/third-party decisions.
func baseDomain(host string) string {
	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host
	}
	return strings.Join(labels[len(labels)-2:], ".")
}
