package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinOrNone(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		want  string
	}{
		{
			name:  "nil slice returns (none)",
			items: nil,
			want:  "(none)",
		},
		{
			name:  "empty slice returns (none)",
			items: []string{},
			want:  "(none)",
		},
		{
			name:  "single item returns item",
			items: []string{"eth0"},
			want:  "eth0",
		},
		{
			name:  "multiple items joined with comma",
			items: []string{"eth0", "wlan0", "lo"},
			want:  "eth0, wlan0, lo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JoinOrNone(tt.items)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJoinOrDefault(t *testing.T) {
	tests := []struct {
		name  string
		items []string
		def   string
		want  string
	}{
		{
			name:  "empty slice returns default",
			items: []string{},
			def:   "N/A",
			want:  "N/A",
		},
		{
			name:  "empty slice with empty default",
			items: []string{},
			def:   "",
			want:  "",
		},
		{
			name:  "items returned regardless of default",
			items: []string{"a", "b"},
			def:   "default",
			want:  "a, b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JoinOrDefault(tt.items, tt.def)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPluralize(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		singular string
		plural   string
		want     string
	}{
		{
			name:     "zero returns plural",
			count:    0,
			singular: "check",
			plural:   "checks",
			want:     "checks",
		},
		{
			name:     "one returns singular",
			count:    1,
			singular: "check",
			plural:   "checks",
			want:     "check",
		},
		{
			name:     "two returns plural",
			count:    2,
			singular: "check",
			plural:   "checks",
			want:     "checks",
		},
		{
			name:     "negative returns plural",
			count:    -1,
			singular: "check",
			plural:   "checks",
			want:     "checks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Pluralize(tt.count, tt.singular, tt.plural)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		s    string
		max  int
		want string
	}{
		{
			name: "short string unchanged",
			s:    "bash",
			max:  10,
			want: "bash",
		},
		{
			name: "exact length unchanged",
			s:    "chromium",
			max:  8,
			want: "chromium",
		},
		{
			name: "long string gets ellipsis",
			s:    "kworker/u16:2-events_unbound",
			max:  12,
			want: "kworker/u16…",
		},
		{
			name: "zero width yields empty",
			s:    "bash",
			max:  0,
			want: "",
		},
		{
			name: "width one yields bare ellipsis",
			s:    "bash",
			max:  1,
			want: "…",
		},
		{
			name: "multibyte runes counted not bytes",
			s:    "프로세스모니터",
			max:  4,
			want: "프로세…",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.s, tt.max)
			assert.Equal(t, tt.want, got)
		})
	}
}

