package models

import (
	"fmt"
	"strings"
	"time"
)

// ParseDate acepta DD/MM/YYYY (formato de la planilla) o YYYY-MM-DD (inputs del front).
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{DateLayout, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("fecha inválida %q (DD/MM/YYYY)", s)
}

// DateRange es un rango de días inclusivo; un extremo cero no limita.
type DateRange struct {
	From time.Time
	To   time.Time
}

// ParseDateRange interpreta desde/hasta; hasta incluye todo el día.
func ParseDateRange(from, to string) (DateRange, error) {
	var r DateRange
	if from != "" {
		t, err := ParseDate(from)
		if err != nil {
			return r, err
		}
		r.From = t
	}
	if to != "" {
		t, err := ParseDate(to)
		if err != nil {
			return r, err
		}
		r.To = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return r, fmt.Errorf("hasta es anterior a desde")
	}
	return r, nil
}

func (r DateRange) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}
