package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultSubject is used when a hit carries no subject or category.
const DefaultSubject = "general"

// ErrMissingID is returned for hits without an identifier.
var ErrMissingID = errors.New("corpus: record has no id")

// Text is one free-text field of a record.
type Text struct {
	Field string
	Value string
}

// Record is a corpus document with all defaults applied.
type Record struct {
	ID      string
	Year    int
	Subject string
	Texts   []Text
}

// Reject is a hit that could not be turned into a Record.
type Reject struct {
	ID  string
	Err error
}

// Hit is a raw search result.
type Hit map[string]any

// FromHit converts a raw hit, reading text fields in the given order. Missing
// years default to now's year and missing subjects to DefaultSubject.
func FromHit(hit Hit, fields []string, now time.Time) (Record, error) {
	id := firstString(hit, "objectID", "id")
	if id == "" {
		return Record{}, ErrMissingID
	}

	info, _ := hit["paper_info"].(map[string]any)

	year, ok := toInt(hit["year"])
	if !ok && info != nil {
		year, ok = toInt(info["year"])
	}
	if !ok || year <= 0 {
		year = now.Year()
	}

	subject := firstString(hit, "subject", "category")
	if subject == "" && info != nil {
		subject = firstString(info, "subject", "category")
	}
	if subject == "" {
		subject = DefaultSubject
	}

	rec := Record{ID: id, Year: year, Subject: subject}
	for _, f := range fields {
		v, ok := hit[f].(string)
		if !ok {
			continue
		}
		if LooksLikeHTML(v) {
			v = StripHTML(v)
		}
		if strings.TrimSpace(v) == "" {
			continue
		}
		rec.Texts = append(rec.Texts, Text{Field: f, Value: v})
	}
	return rec, nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := m[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		case json.Number:
			return v.String()
		}
	}
	return ""
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	}
	return 0, false
}

// Result is one fetched page.
type Result struct {
	Records []Record
	Rejects []Reject
}

// Len is the number of hits the page contained, valid or not.
func (r Result) Len() int { return len(r.Records) + len(r.Rejects) }

// convert turns raw hits into a Result.
func convert(hits []Hit, fields []string, now time.Time) Result {
	var res Result
	for i, h := range hits {
		rec, err := FromHit(h, fields, now)
		if err != nil {
			id := firstString(h, "objectID", "id")
			if id == "" {
				id = fmt.Sprintf("#%d", i)
			}
			res.Rejects = append(res.Rejects, Reject{ID: id, Err: err})
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res
}
