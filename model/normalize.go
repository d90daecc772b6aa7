package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Normalize maps a raw extraction onto the fixed contract schema. It never
// fails: anything missing or of an unexpected type becomes nil.
func Normalize(raw RawExtraction) NormalizedContract {
	return NormalizedContract{
		Title:                  raw.firstString("title", "document_title"),
		PropertyAddress:        raw.firstString("property_address", "address"),
		ClientName:             raw.firstString("client_name", "buyer_name"),
		ClientEmail:            raw.firstString("client_email", "buyer_email"),
		BuyerName:              raw.firstString("buyer_name"),
		BuyerEmail:             raw.firstString("buyer_email"),
		SellerName:             raw.firstString("seller_name"),
		SellerEmail:            raw.firstString("seller_email"),
		PurchasePrice:          raw.firstString("purchase_price", "price"),
		ClosingDate:            raw.firstString("closing_date"),
		InspectionDate:         raw.firstString("inspection_date"),
		InspectionResponseDate: raw.firstString("inspection_response_date"),
		LoanContingencyDate:    raw.firstString("loan_contingency_date"),
		AppraisalDate:          raw.firstString("appraisal_date"),
		FinalWalkthroughDate:   raw.firstString("final_walkthrough_date"),
		Summary:                raw.firstString("executive_summary", "summary"),
		RiskItems:              raw.riskItems("risk_items", "risks"),
	}
}

// firstString returns the first key holding a usable scalar, rendered as a
// string. Numbers keep their integral form (450000, not 4.5e+05).
func (r RawExtraction) firstString(keys ...string) *string {
	for _, k := range keys {
		if s, ok := scalarString(r[k]); ok {
			return &s
		}
	}
	return nil
}

func (r RawExtraction) riskItems(keys ...string) []RiskItem {
	items := []RiskItem{}
	for _, k := range keys {
		list, ok := r[k].([]any)
		if !ok {
			continue
		}
		for _, entry := range list {
			obj, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			desc, ok := obj["description"].(string)
			if !ok || strings.TrimSpace(desc) == "" {
				continue
			}
			severity, _ := obj["severity"].(string)
			severity = strings.TrimSpace(severity)
			if severity == "" {
				severity = SeverityInfo
			}
			items = append(items, RiskItem{Severity: severity, Description: strings.TrimSpace(desc)})
		}
		return items
	}
	return items
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return "", false
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	default:
		return "", false
	}
}
