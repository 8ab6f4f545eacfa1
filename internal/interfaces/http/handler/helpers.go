package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

// parseDateQuery reads a query parameter as either a calendar date or an
// RFC 3339 timestamp. A bare date resolves to midnight UTC.
func parseDateQuery(c *gin.Context, name string, fallback time.Time) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid %s: expected YYYY-MM-DD or RFC 3339", name)
}

// dateRangeQuery reads the from/to query parameters. A bare date in "to"
// is widened to cover the whole day.
func dateRangeQuery(c *gin.Context, defaultFrom, defaultTo time.Time) (time.Time, time.Time, error) {
	from, err := parseDateQuery(c, "from", defaultFrom)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseDateQuery(c, "to", defaultTo)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if raw := c.Query("to"); raw != "" {
		if _, dateOnly := time.Parse(dateLayout, raw); dateOnly == nil {
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
	}
	if !to.IsZero() && !from.IsZero() && to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("to must not be before from")
	}
	return from, to, nil
}
