// internal/pagination/pagination.go
//
// Page/limit parsing and limit policy.
//
// Context
// -------
// List endpoints read two query keys, "page" and "limit" by default, or
// "<prefix>_page" and "<prefix>_limit" when several paginated lists share
// one query string.  Resolution:
//
//  1. split the raw query into key/value pairs
//  2. parse the two known keys; a bad value is InvalidQueryParameter
//  3. absent page  -> default page (normally 1)
//     absent limit -> default limit
//  4. present limit -> Constraint.Limit(requested, default)
//
// The caller turns the result into LIMIT/OFFSET with
// offset = (page - 1) * limit (see Window.Offset).
//
// Notes
// -----
//   - Limit rejects "0".  Page clamps "0" up to 1.  The asymmetry is kept
//     on purpose; clients that send page=0 get the first page.
//   - Everything here is immutable after construction and safe to share.
package pagination

import (
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/yanizio/adept-rest/internal/resterr"
)

// Limit is a positive page size.
type Limit uint64

// Page is a 1-based page index.
type Page uint64

// FirstPage is the default page.
const FirstPage Page = 1

var errZeroLimit = errors.New("limit must be a positive integer")

// ParseLimit parses a limit value for query key name.
func ParseLimit(name, raw string) (Limit, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, resterr.InvalidQueryParameter(name, err)
	}
	if n == 0 {
		return 0, resterr.InvalidQueryParameter(name, errZeroLimit)
	}
	return Limit(n), nil
}

// ParsePage parses a page value for query key name.  Zero becomes 1.
func ParsePage(name, raw string) (Page, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, resterr.InvalidQueryParameter(name, err)
	}
	return PageOf(n), nil
}

// PageOf converts n, clamping 0 to the first page.
func PageOf(n uint64) Page {
	if n == 0 {
		return FirstPage
	}
	return Page(n)
}

// -----------------------------------------------------------------------------
// Param names
// -----------------------------------------------------------------------------

// ParamNames are the query keys for page and limit.
type ParamNames struct {
	Page  string
	Limit string
}

// NewParamNames returns the unprefixed defaults.
func NewParamNames() ParamNames {
	return ParamNames{Page: "page", Limit: "limit"}
}

// NewPrefixed returns "<prefix>_page" and "<prefix>_limit".  Trailing
// underscores on prefix are trimmed; an empty prefix yields the defaults.
func NewPrefixed(prefix string) ParamNames {
	p := strings.TrimRight(prefix, "_")
	if p == "" {
		return NewParamNames()
	}
	return ParamNames{Page: p + "_page", Limit: p + "_limit"}
}

// -----------------------------------------------------------------------------
// Resolution
// -----------------------------------------------------------------------------

// ParseQuery performs steps 1-2: it returns nil for a key that is absent.
// The first occurrence of a key wins.
func ParseQuery(names ParamNames, rawQuery string) (*Page, *Limit, error) {
	var (
		page  *Page
		limit *Limit
	)
	for _, pair := range strings.Split(rawQuery, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			continue
		}
		switch key {
		case names.Page:
			if page != nil {
				continue
			}
			val, err := unescape(names.Page, v)
			if err != nil {
				return nil, nil, err
			}
			p, err := ParsePage(names.Page, val)
			if err != nil {
				return nil, nil, err
			}
			page = &p
		case names.Limit:
			if limit != nil {
				continue
			}
			val, err := unescape(names.Limit, v)
			if err != nil {
				return nil, nil, err
			}
			l, err := ParseLimit(names.Limit, val)
			if err != nil {
				return nil, nil, err
			}
			limit = &l
		}
	}
	return page, limit, nil
}

func unescape(name, v string) (string, error) {
	s, err := url.QueryUnescape(v)
	if err != nil {
		return "", resterr.InvalidQueryParameter(name, err)
	}
	return s, nil
}

// Resolve performs steps 1-4.
func Resolve(names ParamNames, rawQuery string, defaultPage Page, defaultLimit Limit, c Constraint) (Page, Limit, error) {
	page, limit, err := ParseQuery(names, rawQuery)
	if err != nil {
		return 0, 0, err
	}

	p := PageOf(uint64(defaultPage))
	if page != nil {
		p = *page
	}
	l := defaultLimit
	if limit != nil {
		l = c.Limit(*limit, defaultLimit)
	}
	return p, l, nil
}
