package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"poupa/internal/core"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// parsePeriod reads ?period=YYYY-MM or ?year=&month=. Without either the
// month containing now is used. A lone year or month is rejected.
func parsePeriod(q url.Values, now time.Time) (core.Period, error) {
	if v := strings.TrimSpace(q.Get("period")); v != "" {
		p, err := core.ParsePeriod(v)
		if err != nil {
			return core.Period{}, badRequest("invalid period %q", v)
		}
		return p, nil
	}

	year := strings.TrimSpace(q.Get("year"))
	month := strings.TrimSpace(q.Get("month"))
	if year == "" && month == "" {
		return core.DateOf(now).Period(), nil
	}
	if year == "" || month == "" {
		return core.Period{}, badRequest("year and month must be given together")
	}

	y, err := strconv.Atoi(year)
	if err != nil {
		return core.Period{}, badRequest("invalid year %q", year)
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return core.Period{}, badRequest("invalid month %q", month)
	}
	p, err := core.NewPeriod(y, time.Month(m))
	if err != nil {
		return core.Period{}, badRequest("invalid period %04d-%02d", y, m)
	}
	return p, nil
}

// hasPeriod reports whether the query names a month at all.
func hasPeriod(q url.Values) bool {
	return q.Get("period") != "" || q.Get("year") != "" || q.Get("month") != ""
}

// decodeJSON reads exactly one JSON value into dst. Unknown fields and
// trailing data are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("empty body")
		}
		return badRequest("invalid JSON body: %v", err)
	}
	if dec.More() {
		return badRequest("unexpected data after JSON body")
	}
	return nil
}

// sanitizeInput drops control characters other than tab and newlines.
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
