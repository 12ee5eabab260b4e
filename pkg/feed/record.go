package feed

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Record is one raw feed record, keyed by the feed's positional field names.
type Record map[string]any

// Listing is the projection of a Record onto the fields ingestion uses.
type Listing struct {
	Name             string
	DateRange        string
	Location         string
	OrganizationName string
	EventURL         string
	Description      string
	ExternalKey      string
}

// Project extracts a Listing from r. idField names the field holding the
// upstream record id.
func (r Record) Project(idField string) Listing {
	return Listing{
		Name:             r.String("p3"),
		DateRange:        r.String("p4"),
		Location:         r.String("p6"),
		OrganizationName: r.String("p9"),
		EventURL:         r.String("p18"),
		Description:      r.String("p30"),
		ExternalKey:      r.String(idField),
	}
}

// String returns field k rendered as a string. Missing and null fields are
// empty.
func (r Record) String(k string) string {
	switch v := r[k].(type) {
	case string:
		return v
	case json.Number:
		s := v.String()
		if strings.ContainsAny(s, "eE") {
			if f, err := v.Float64(); err == nil {
				return strconv.FormatFloat(f, 'f', -1, 64)
			}
		}
		return s
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}
