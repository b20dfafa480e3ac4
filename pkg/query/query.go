// Package query builds MongoDB find queries from request parameters.
//
// A Descriptor is an immutable value: every stage returns a new Descriptor,
// so partial pipelines can be shared or reused freely. Stages compose in a
// fixed order:
//
//	d := query.New().
//	    Filtering(r.URL.Query()).
//	    Sorting(r.URL.Query()).
//	    Pagination(r.URL.Query())
//
//	cur, err := col.Find(ctx, d.Filter(), d.FindOptions())
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// DefaultLimit is the page size applied when the request has no limit.
	DefaultLimit = 16

	defaultSortField = "created_at"
)

// reserved parameter keys are stripped before filtering.
var reserved = map[string]bool{"page": true, "sort": true, "limit": true}

// comparison operators accepted in field[op]=value parameters.
var operators = map[string]string{
	"gte":   "$gte",
	"gt":    "$gt",
	"lt":    "$lt",
	"lte":   "$lte",
	"regex": "$regex",
}

// Descriptor is a fully-value-typed find query: filter, sort, and paging.
// The zero value matches everything with no sort and no paging.
type Descriptor struct {
	filter    bson.M
	sort      bson.D
	skip      int64
	limit     int64
	paginated bool
	err       error
}

// New returns an empty Descriptor.
func New() Descriptor {
	return Descriptor{filter: bson.M{}}
}

// Filtering strips the reserved keys (page, sort, limit) and turns the
// remaining parameters into predicates. A plain key becomes an equality
// match; field[op] with op in gte/gt/lt/lte/regex becomes the
// corresponding Mongo comparison operator. An unrecognised operator is a
// construction error carried in the returned Descriptor.
func (d Descriptor) Filtering(params url.Values) Descriptor {
	if d.err != nil {
		return d
	}

	filter := make(bson.M, len(params))
	for key := range params {
		if reserved[key] {
			continue
		}
		value := params.Get(key)

		field, op, ok, err := splitOperator(key)
		if err != nil {
			d.err = err
			return d
		}
		if !ok {
			filter[field] = coerce(value)
			continue
		}

		pred, merge := filter[field].(bson.M)
		if !merge {
			pred = bson.M{}
			filter[field] = pred
		}
		if op == "$regex" {
			pred[op] = value
		} else {
			pred[op] = coerce(value)
		}
	}

	d.filter = filter
	return d
}

// Sorting applies the sort key. When the sort parameter is present its
// comma-separated field list is collapsed into a single token — for
// "price,-title" the key is the one field "price-title" ascending. That is
// the behaviour the deployed clients were written against, so it is kept
// verbatim; whether independent multi-field sort was intended is an open
// question for the product owner. Without a sort parameter the newest
// documents come first.
func (d Descriptor) Sorting(params url.Values) Descriptor {
	if d.err != nil {
		return d
	}

	raw := params.Get("sort")
	if raw == "" {
		d.sort = bson.D{{Key: defaultSortField, Value: -1}}
		return d
	}

	token := strings.Join(strings.Split(raw, ","), "")
	if strings.HasPrefix(token, "-") {
		d.sort = bson.D{{Key: strings.TrimPrefix(token, "-"), Value: -1}}
	} else {
		d.sort = bson.D{{Key: token, Value: 1}}
	}
	return d
}

// Pagination computes skip and limit. Missing or non-numeric page/limit
// fall back to 1 and DefaultLimit; zero or negative values pass through
// arithmetically and are left for the driver to reject.
func (d Descriptor) Pagination(params url.Values) Descriptor {
	if d.err != nil {
		return d
	}

	page := coerceInt(params.Get("page"), 1)
	limit := coerceInt(params.Get("limit"), DefaultLimit)

	d.skip = (page - 1) * limit
	d.limit = limit
	d.paginated = true
	return d
}

// Filter returns the composed filter document.
func (d Descriptor) Filter() bson.M {
	if d.filter == nil {
		return bson.M{}
	}
	return d.filter
}

// FindOptions returns driver options carrying the sort and paging stages.
func (d Descriptor) FindOptions() *options.FindOptions {
	opts := options.Find()
	if d.sort != nil {
		opts.SetSort(d.sort)
	}
	if d.paginated {
		opts.SetSkip(d.skip)
		opts.SetLimit(d.limit)
	}
	return opts
}

// Skip returns the computed skip offset.
func (d Descriptor) Skip() int64 { return d.skip }

// Limit returns the computed page size.
func (d Descriptor) Limit() int64 { return d.limit }

// Err reports a query-construction failure from any earlier stage.
func (d Descriptor) Err() error { return d.err }

// splitOperator parses "field[op]" keys. ok is false for plain keys.
func splitOperator(key string) (field, op string, ok bool, err error) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		return key, "", false, nil
	}
	if open == 0 || !strings.HasSuffix(key, "]") {
		return "", "", false, fmt.Errorf("query: malformed filter key %q", key)
	}

	field = key[:open]
	name := key[open+1 : len(key)-1]
	mongoOp, known := operators[name]
	if !known {
		return "", "", false, fmt.Errorf("query: unknown filter operator %q in key %q", name, key)
	}
	return field, mongoOp, true, nil
}

// coerce converts numeric-looking values so range comparisons behave
// numerically, mirroring the schema casting of the upstream service.
func coerce(value string) interface{} {
	if n, err := strconv.ParseFloat(value, 64); err == nil {
		return n
	}
	return value
}

func coerceInt(raw string, fallback int64) int64 {
	if raw == "" {
		return fallback
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
