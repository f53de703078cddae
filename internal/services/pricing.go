package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParsePrice parses a source money token into a float64. The sources mix
// plain decimal-point numbers with the Turkish convention of thousands
// dots and a decimal comma:
//
//	"1.220,50" -> 1220.50
//	"220,00"   -> 220.00
//	"220.50"   -> 220.50
//
// An empty token parses to 0 without error (missing data). Anything else
// that fails to parse returns 0 with a non-nil error so the caller can
// record an anomaly; garbage must never pass silently.
func ParsePrice(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}

	hasDot := strings.Contains(s, ".")
	hasComma := strings.Contains(s, ",")
	switch {
	case hasDot && hasComma:
		// Turkish format: dots are thousands separators.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case hasComma:
		s = strings.ReplaceAll(s, ",", ".")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("unparseable price %q: %w", raw, err)
	}
	return d.InexactFloat64(), nil
}

// ExtractBaseSKU recovers the canonical product code from a sold-item
// variant SKU by stripping size/color suffixes:
//
//	"BYK-25K-303760-M41-R15" -> "303760"
//	"BYK-24Y-126443-M41-R15" -> "126443"
//	"BYK-25Y-304177"         -> "BYK-25Y-304177" (already a base code)
//	"194938-M41-R15"         -> "194938"
//	"322685"                 -> "322685"
//
// The leading-numeric rule requires at least five digits so short numeric
// tokens don't false-positive.
func ExtractBaseSKU(variantSKU string) string {
	sku := strings.TrimSpace(variantSKU)
	if sku == "" {
		return ""
	}
	parts := strings.Split(sku, "-")

	if strings.HasPrefix(sku, "BYK-") {
		switch {
		case len(parts) >= 5:
			return parts[2]
		case len(parts) == 4:
			return parts[2]
		case len(parts) == 3:
			// Catalog-form base code already.
			return sku
		}
	}

	if len(parts) >= 3 {
		first := parts[0]
		if len(first) >= 5 && isNumeric(first) {
			return first
		}
	}
	return sku
}

// NormalizeSKUVariants returns the alternate spellings of a SKU the
// catalog may use, in deterministic order, original first:
//
//	"S00004064" -> ["S00004064", "00004064", "4064"]
//	"00004064"  -> ["00004064", "4064"]
//	"303760"    -> ["303760"]
func NormalizeSKUVariants(sku string) []string {
	if sku == "" {
		return nil
	}
	variants := []string{sku}
	add := func(v string) {
		for _, existing := range variants {
			if existing == v {
				return
			}
		}
		variants = append(variants, v)
	}

	if strings.HasPrefix(sku, "S") {
		withoutS := sku[1:]
		add(withoutS)
		if isNumeric(withoutS) {
			add(stripLeadingZeros(withoutS))
		}
	}
	if isNumeric(sku) {
		add(stripLeadingZeros(sku))
	}
	return variants
}

// BrandFromSKU extracts the brand token used for fallback ratio lookup:
// the segment before the first dash, or the whole SKU when undashed.
func BrandFromSKU(sku string) string {
	if sku == "" {
		return ""
	}
	if idx := strings.IndexByte(sku, '-'); idx >= 0 {
		return sku[:idx]
	}
	return sku
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func stripLeadingZeros(s string) string {
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}
