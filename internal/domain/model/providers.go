package model

import (
	"fmt"
	"sort"
	"strings"

	"chucky-bot/internal/domain"
)

// WeatherReport is the subset of a current-weather response the bot reads.
// Code is always numeric even when the provider sent it as a string.
type WeatherReport struct {
	Code        int
	Message     string
	Description string
}

// Artist is a SoundCloud search hit with its track titles in listing order.
type Artist struct {
	Name   string
	Tracks []string
}

type Tweet struct {
	ID   string
	Text string
}

type MailReceipt struct {
	ID string
}

// Criterion is one free-form StackExchange search criterion, e.g. title or tag.
type Criterion struct {
	Key   string
	Value string
}

// StackFilter keeps criteria in the order the caller gave them.
type StackFilter []Criterion

// ParseStackFilter reads "key=value" pairs; a value may span several words,
// e.g. "title=Update Django tag=django".
func ParseStackFilter(s string) (StackFilter, error) {
	var f StackFilter
	for _, tok := range strings.Fields(s) {
		if k, v, ok := strings.Cut(tok, "="); ok && k != "" {
			f = append(f, Criterion{Key: strings.ToLower(k), Value: v})
			continue
		}
		if len(f) == 0 {
			return nil, fmt.Errorf("%w: expected key=value, got %q", domain.ErrInvalidArgument, tok)
		}
		last := &f[len(f)-1]
		last.Value = strings.TrimSpace(last.Value + " " + tok)
	}
	if len(f) == 0 {
		return nil, fmt.Errorf("%w: empty filter", domain.ErrInvalidArgument)
	}
	return f, nil
}

// StackFilterFromMap is used by the JSON API; criteria come out sorted by key.
func StackFilterFromMap(m map[string]string) StackFilter {
	f := make(StackFilter, 0, len(m))
	for k, v := range m {
		f = append(f, Criterion{Key: strings.ToLower(k), Value: v})
	}
	sort.Slice(f, func(i, j int) bool { return f[i].Key < f[j].Key })
	return f
}
