package core

import "testing"

func TestMoneyFormat(t *testing.T) {
	tests := []struct {
		name   string
		amount int64
		want   string
	}{
		{name: "zero", amount: 0, want: "0 COP"},
		{name: "under one group", amount: 999, want: "999 COP"},
		{name: "exactly one group boundary", amount: 1000, want: "1.000 COP"},
		{name: "two groups", amount: 400000, want: "400.000 COP"},
		{name: "three groups", amount: 1234567, want: "1.234.567 COP"},
		{name: "negative stays grouped", amount: -150000, want: "-150.000 COP"},
		{name: "small negative", amount: -7, want: "-7 COP"},
		{name: "negative group boundary", amount: -1000000, want: "-1.000.000 COP"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := (Money{Amount: tt.amount}).Format(); got != tt.want {
				t.Errorf("Money{%d}.Format() = %q, want %q", tt.amount, got, tt.want)
			}
		})
	}
}

func TestFormatCOP(t *testing.T) {
	t.Run("nil renders as zero", func(t *testing.T) {
		if got := FormatCOP(nil); got != "0 COP" {
			t.Errorf("FormatCOP(nil) = %q, want %q", got, "0 COP")
		}
	})

	t.Run("present value", func(t *testing.T) {
		n := int64(5000)
		if got := FormatCOP(&n); got != "5.000 COP" {
			t.Errorf("FormatCOP(&5000) = %q, want %q", got, "5.000 COP")
		}
	})
}
