package converter

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRoundAmount_HalfAwayFromZero(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"100.005", "100.01"},
		{"100.004", "100.00"},
		{"2.675", "2.68"},
		{"0.125", "0.13"},
		{"1.115", "1.12"},
		{"-1.005", "-1.01"},
		{"-0.004", "0.00"},
		{"1000.5", "1000.50"},
		{"750.25", "750.25"},
		{"7", "7.00"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := FormatAmount(RoundAmount(decimal.RequireFromString(tt.in)))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransformer_Status(t *testing.T) {
	tr := NewTransformer()
	assert.Equal(t, "PAID", tr.Status("paid"))
	assert.Equal(t, "PART PAID", tr.Status("Part paid"))
	assert.Equal(t, "", tr.Status(""))
}

func TestTransformer_Client(t *testing.T) {
	tr := NewTransformer()
	tests := map[string]string{
		"acme corp":  "Acme Corp",
		"ACME CORP":  "Acme Corp",
		"demo  inc":  "Demo  Inc",
		"sample llc": "Sample Llc",
		"":           "",
	}
	for in, want := range tests {
		assert.Equal(t, want, tr.Client(in), in)
	}
}

func TestDaysOld(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 10, DaysOld(base, base.AddDate(0, 0, 10)))
	assert.Equal(t, 0, DaysOld(base, base.Add(23*time.Hour)))
	assert.Equal(t, 1, DaysOld(base, base.Add(25*time.Hour)))
	// Future dates floor towards negative infinity.
	assert.Equal(t, -1, DaysOld(base, base.Add(-time.Hour)))
	assert.Equal(t, -2, DaysOld(base, base.Add(-25*time.Hour)))
	assert.Equal(t, -1, DaysOld(base, base.Add(-24*time.Hour)))
}

func TestDaysOld_CountsWallClockDaysAcrossDST(t *testing.T) {
	est := time.FixedZone("EST", -5*3600)
	edt := time.FixedZone("EDT", -4*3600)

	issued := time.Date(2024, 3, 1, 0, 0, 0, 0, est)
	now := time.Date(2024, 4, 1, 0, 30, 0, 0, edt)

	assert.Equal(t, 31, DaysOld(issued, now))
}
