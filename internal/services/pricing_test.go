package services

import (
	"reflect"
	"testing"
)

func TestParsePrice(t *testing.T) {
	cases := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{"1.220,50", 1220.50, false},
		{"220,00", 220.00, false},
		{"220.50", 220.50, false},
		{"1.234.567,89", 1234567.89, false},
		{"322685", 322685, false},
		{"0", 0, false},
		{"", 0, false},
		{"  149,90  ", 149.90, false},
		{"abc", 0, true},
		{"12,34,56", 0, true},
	}
	for _, tc := range cases {
		got, err := ParsePrice(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParsePrice(%q): expected error, got %v", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePrice(%q): unexpected error: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParsePrice(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestExtractBaseSKU(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"BYK-25K-303760-M41-R15", "303760"},
		{"BYK-24Y-126443-M41", "126443"},
		{"BYK-25Y-304177", "BYK-25Y-304177"},
		{"194938-M41-R15", "194938"},
		{"322685", "322685"},
		{"12-M41-R15", "12-M41-R15"}, // leading token too short
		{"", ""},
	}
	for _, tc := range cases {
		if got := ExtractBaseSKU(tc.in); got != tc.want {
			t.Errorf("ExtractBaseSKU(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeSKUVariants(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"S00004064", []string{"S00004064", "00004064", "4064"}},
		{"00004064", []string{"00004064", "4064"}},
		{"303760", []string{"303760"}},
		{"BYK-25K-303760", []string{"BYK-25K-303760"}},
		{"", nil},
	}
	for _, tc := range cases {
		if got := NormalizeSKUVariants(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("NormalizeSKUVariants(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestBrandFromSKU(t *testing.T) {
	if got := BrandFromSKU("BYK-25K-303760"); got != "BYK" {
		t.Errorf("BrandFromSKU = %q, want BYK", got)
	}
	if got := BrandFromSKU("322685"); got != "322685" {
		t.Errorf("BrandFromSKU undashed = %q, want 322685", got)
	}
	if got := BrandFromSKU(""); got != "" {
		t.Errorf("BrandFromSKU empty = %q, want empty", got)
	}
}
