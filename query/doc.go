/*
Package query implements the filter grammar used by scan-based lookups and the
types shared by streaming queries.

Filters map a field name, optionally followed by a lookup suffix, to a value:

	query.Filters{
	    "flavor":        "vanilla", // equality
	    "amount__gte":   30,
	    "created__lt":   time.Now(),
	    "topping__in":   []string{"nuts", "sprinkles"},
	}

Supported suffixes are __eq, __not, __gt, __gte, __lt, __lte, __in and
__exclude. Any other suffix fails with errors.UnsupportedLookupError.

Ordering lookups only compare numbers with numbers and dates with dates.
Dates may be time.Time, strfmt.DateTime, strfmt.Date or strings parseable by
strfmt.ParseDateTime. A record that lacks the field, or holds a value of
another kind, simply does not match.
*/
package query
