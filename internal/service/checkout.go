package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"bagvo/internal/model"
)

// Address document keys, canonical name first, followed by legacy aliases.
var (
	fullNameKeys     = []string{"fullName", "name"}
	phoneKeys        = []string{"phone", "mobile"}
	addressLine1Keys = []string{"addressLine1", "addressLine", "street"}
	pincodeKeys      = []string{"pincode", "zip"}
)

// mapAddress converts a saved address document into the order's address snapshot.
func mapAddress(data map[string]any) model.ShippingAddress {
	return model.ShippingAddress{
		FullName:     firstValue(data, fullNameKeys...),
		Phone:        firstValue(data, phoneKeys...),
		AddressLine1: firstValue(data, addressLine1Keys...),
		AddressLine2: firstValue(data, "addressLine2"),
		City:         firstValue(data, "city"),
		State:        firstValue(data, "state"),
		Pincode:      firstValue(data, pincodeKeys...),
		Landmark:     firstValue(data, "landmark"),
	}
}

func firstValue(data map[string]any, keys ...string) string {
	for _, key := range keys {
		if v := stringValue(data[key]); v != "" {
			return v
		}
	}
	return ""
}

// stringValue renders scalars as trimmed strings. Numbers keep their integer form
// so a pincode stored as 560001 stays "560001".
func stringValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return ""
	}
}

// normalizePaymentMethod maps free-form input onto a canonical method.
// The second result is false when no keyword matched; raw is then returned trimmed.
func normalizePaymentMethod(raw string) (string, bool) {
	key := strings.ToLower(raw)
	key = strings.NewReplacer(" ", "", "-", "").Replace(key)

	switch {
	case strings.Contains(key, "cod"), strings.Contains(key, "cashondelivery"):
		return model.PaymentMethodCOD, true
	case strings.Contains(key, "netbanking"), strings.Contains(key, "net_banking"):
		return model.PaymentMethodNetBanking, true
	case strings.Contains(key, "upi"):
		return model.PaymentMethodUPI, true
	case strings.Contains(key, "wallet"):
		return model.PaymentMethodWallet, true
	case strings.Contains(key, "card"), strings.Contains(key, "credit"), strings.Contains(key, "debit"):
		return model.PaymentMethodCard, true
	}
	return strings.TrimSpace(raw), false
}

const maxVariantDepth = 8

// flattenVariants expands entries that are themselves JSON-encoded arrays,
// e.g. `["Red","Blue"]` or `["[\"Red\"]"]`, into a flat list of trimmed values.
func flattenVariants(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = appendVariant(out, v, 0)
	}
	return out
}

func appendVariant(out []string, v any, depth int) []string {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return out
		}
		if depth < maxVariantDepth && strings.HasPrefix(s, "[") {
			var nested []any
			if err := json.Unmarshal([]byte(s), &nested); err == nil {
				for _, n := range nested {
					out = appendVariant(out, n, depth+1)
				}
				return out
			}
		}
		return append(out, s)
	case []any:
		if depth >= maxVariantDepth {
			return out
		}
		for _, n := range t {
			out = appendVariant(out, n, depth+1)
		}
		return out
	case nil:
		return out
	default:
		return append(out, fmt.Sprint(t))
	}
}

// variantOffered reports whether selected is among options, ignoring case.
// Products without any listed options accept every selection.
func variantOffered(selected string, options []string) bool {
	selected = strings.TrimSpace(selected)
	if selected == "" {
		return true
	}

	flat := flattenVariants(options)
	if len(flat) == 0 {
		return true
	}
	for _, o := range flat {
		if strings.EqualFold(o, selected) {
			return true
		}
	}
	return false
}
