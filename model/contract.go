package model

import (
	"time"
)

// Contract is the owner-scoped database record of a tracked contract. The
// parser only ever writes Summary, SummaryPath and UpdatedAt.
type Contract struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Summary     *string   `json:"summary"`
	SummaryPath *string   `json:"summary_path"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RawExtraction is the untyped payload returned by whichever parser
// succeeded. Nothing about its shape is trusted.
type RawExtraction map[string]any

// RiskItem is a single flagged issue found in a contract.
type RiskItem struct {
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// NormalizedContract has a fixed set of keys. Absent values serialize as
// null, never as missing keys.
type NormalizedContract struct {
	Title                  *string    `json:"title"`
	PropertyAddress        *string    `json:"property_address"`
	ClientName             *string    `json:"client_name"`
	ClientEmail            *string    `json:"client_email"`
	BuyerName              *string    `json:"buyer_name"`
	BuyerEmail             *string    `json:"buyer_email"`
	SellerName             *string    `json:"seller_name"`
	SellerEmail            *string    `json:"seller_email"`
	PurchasePrice          *string    `json:"purchase_price"`
	ClosingDate            *string    `json:"closing_date"`
	InspectionDate         *string    `json:"inspection_date"`
	InspectionResponseDate *string    `json:"inspection_response_date"`
	LoanContingencyDate    *string    `json:"loan_contingency_date"`
	AppraisalDate          *string    `json:"appraisal_date"`
	FinalWalkthroughDate   *string    `json:"final_walkthrough_date"`
	Summary                *string    `json:"summary"`
	RiskItems              []RiskItem `json:"risk_items"`
}

// Parser path names recorded in diagnostics.
const (
	ParserPrimary        = "primary"
	ParserVisionFallback = "vision-fallback"
)

// SeverityInfo is assigned to risk items that arrive without a severity.
const SeverityInfo = "info"

// ParserDiagnostics records which extraction path produced a result and why.
type ParserDiagnostics struct {
	Parser               string  `json:"parser"`
	UsedFallback         bool    `json:"used_fallback"`
	PrimaryError         *string `json:"primary_error"`
	ImageConversionError *string `json:"image_conversion_error"`
	ImagesUsed           int     `json:"images_used"`
}

// SummaryArtifact is the JSON document persisted for every successful parse.
type SummaryArtifact struct {
	GeneratedAt    time.Time          `json:"generated_at"`
	ParsedContract NormalizedContract `json:"parsed_contract"`
	Diagnostics    ParserDiagnostics  `json:"diagnostics"`
}
