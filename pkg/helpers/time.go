package helpers

import (
	"context"
	"fmt"
	"strings"
	"time"

	mailtpl "github.com/medli/medli-api/pkg/mailer/templates"
)

const emailTimeLayout = "02 January 2006, 15:04 MST"

// LocalizeTimesIfPossible rewrites data["Time"] into the timezone of data["IP"].
// Data is left untouched when the IP is missing or cannot be resolved.
func LocalizeTimesIfPossible(ctx context.Context, resolver mailtpl.GeoResolver, data map[string]any) {
	if resolver == nil || data == nil {
		return
	}
	ipVal, ok := data["IP"]
	if !ok || ipVal == nil || fmt.Sprintf("%v", ipVal) == "" {
		return
	}
	v, ok := data["TimeAt"]
	if !ok {
		return
	}
	t, ok := parseTimeAny(v)
	if !ok {
		return
	}
	g, err := resolver.Lookup(ctx, fmt.Sprintf("%v", ipVal))
	if err != nil || strings.TrimSpace(g.Timezone) == "" {
		return
	}
	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return
	}
	data["Time"] = t.In(loc).Format(emailTimeLayout)
	if _, has := data["Location"]; !has || fmt.Sprintf("%v", data["Location"]) == "" {
		data["Location"] = mailtpl.FormatGeo(g)
	}
}

func parseTimeAny(v any) (time.Time, bool) {
	if t, ok := v.(time.Time); ok {
		return t, !t.IsZero()
	}
	s := fmt.Sprintf("%v", v)
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05 -0700 MST",
		"2006-01-02 15:04:05 -0700",
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, !t.IsZero()
		}
	}
	return time.Time{}, false
}
