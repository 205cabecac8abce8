package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewStayRange_TruncatesToDate(t *testing.T) {
	r := NewStayRange(
		time.Date(2026, 6, 1, 15, 30, 0, 0, time.UTC),
		time.Date(2026, 6, 5, 11, 0, 0, 0, time.UTC),
	)

	assert.Equal(t, date(2026, 6, 1), r.CheckIn)
	assert.Equal(t, date(2026, 6, 5), r.CheckOut)
	assert.Equal(t, 4, r.Nights())
}

func TestStayRange_IsValid(t *testing.T) {
	assert.True(t, StayRange{CheckIn: date(2026, 6, 1), CheckOut: date(2026, 6, 2)}.IsValid())
	assert.False(t, StayRange{CheckIn: date(2026, 6, 1), CheckOut: date(2026, 6, 1)}.IsValid())
	assert.False(t, StayRange{CheckIn: date(2026, 6, 2), CheckOut: date(2026, 6, 1)}.IsValid())
}

func TestStayRange_Overlaps(t *testing.T) {
	base := StayRange{CheckIn: date(2026, 6, 10), CheckOut: date(2026, 6, 15)}

	tests := []struct {
		name  string
		other StayRange
		want  bool
	}{
		{"inside", StayRange{date(2026, 6, 11), date(2026, 6, 13)}, true},
		{"covers", StayRange{date(2026, 6, 1), date(2026, 6, 30)}, true},
		{"left overlap", StayRange{date(2026, 6, 8), date(2026, 6, 11)}, true},
		{"right overlap", StayRange{date(2026, 6, 14), date(2026, 6, 20)}, true},
		{"same range", base, true},
		{"before", StayRange{date(2026, 6, 1), date(2026, 6, 5)}, false},
		{"after", StayRange{date(2026, 6, 20), date(2026, 6, 25)}, false},
		// Выезд одного в день заезда другого - не конфликт
		{"touching left", StayRange{date(2026, 6, 5), date(2026, 6, 10)}, false},
		{"touching right", StayRange{date(2026, 6, 15), date(2026, 6, 20)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, base.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(base))
		})
	}
}

func TestDateOnly(t *testing.T) {
	got := DateOnly(time.Date(2026, 3, 15, 23, 59, 59, 999, time.UTC))
	assert.Equal(t, date(2026, 3, 15), got)
}
