package settlement

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestParseDiscount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Discount
		wantErr error
	}{
		{
			name:  "Empty input is a zero discount",
			input: "",
			want:  Absolute(decimal.Zero),
		},
		{
			name:  "Whitespace only is a zero discount",
			input: "   ",
			want:  Absolute(decimal.Zero),
		},
		{
			name:  "Plain number is an absolute amount",
			input: "12.50",
			want:  Absolute(dec("12.50")),
		},
		{
			name:  "Percent suffix is a percentage",
			input: "10%",
			want:  Percentage(dec("10")),
		},
		{
			name:  "Percent with inner whitespace",
			input: " 7.5 %",
			want:  Percentage(dec("7.5")),
		},
		{
			name:    "Negative absolute is rejected",
			input:   "-5",
			wantErr: ErrInvalidDiscount,
		},
		{
			name:    "Negative percentage is rejected",
			input:   "-10%",
			wantErr: ErrInvalidDiscount,
		},
		{
			name:    "Garbage is rejected",
			input:   "ten",
			wantErr: ErrInvalidDiscount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDiscount(tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseDiscount(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if got.Kind != tt.want.Kind || !got.Value.Equal(tt.want.Value) {
				t.Errorf("ParseDiscount(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestDiscountResolve(t *testing.T) {
	tests := []struct {
		name      string
		discount  Discount
		lineTotal string
		want      string
	}{
		{
			name:      "Absolute within line total",
			discount:  Absolute(dec("20")),
			lineTotal: "100",
			want:      "20",
		},
		{
			name:      "Absolute clamps to line total",
			discount:  Absolute(dec("150")),
			lineTotal: "100",
			want:      "100",
		},
		{
			name:      "Percentage of line total",
			discount:  Percentage(dec("10")),
			lineTotal: "250",
			want:      "25",
		},
		{
			name:      "Percentage over 100 clamps",
			discount:  Percentage(dec("120")),
			lineTotal: "80",
			want:      "80",
		},
		{
			name:      "Negative value resolves to zero",
			discount:  Absolute(dec("-5")),
			lineTotal: "100",
			want:      "0",
		},
		{
			name:      "Zero line total",
			discount:  Percentage(dec("50")),
			lineTotal: "0",
			want:      "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.discount.Resolve(dec(tt.lineTotal))
			if !got.Equal(dec(tt.want)) {
				t.Errorf("Resolve(%s) = %s, want %s", tt.lineTotal, got, tt.want)
			}
		})
	}
}
