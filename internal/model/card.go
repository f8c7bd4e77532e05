// Package model holds the shared value types for card extraction.
package model

// SourceKind tags where a raw document came from. Segmentation strategy
// is selected by this tag.
type SourceKind string

const (
	SourceWeb SourceKind = "web"
	SourcePDF SourceKind = "pdf"
)

// RawDocument is the engine input: a text payload plus its source kind.
// The engine never mutates it.
type RawDocument struct {
	Text string
	Kind SourceKind
}

// FieldID identifies one schema field of a CardRecord.
type FieldID string

const (
	FieldCardName       FieldID = "card_name"
	FieldIssuingBank    FieldID = "issuing_bank"
	FieldJoiningFee     FieldID = "joining_fee"
	FieldAnnualFee      FieldID = "annual_fee"
	FieldRewards        FieldID = "rewards"
	FieldCashback       FieldID = "cashback"
	FieldOffers         FieldID = "offers"
	FieldTravelBenefits FieldID = "travel_benefits"
	FieldInsurance      FieldID = "insurance"
	FieldLoungeAccess   FieldID = "lounge_access"
	FieldForeignTxnFee  FieldID = "foreign_transaction_fee"
)

// AllFields returns every schema field in output column order.
// card_name is always first.
func AllFields() []FieldID {
	return []FieldID{
		FieldCardName,
		FieldIssuingBank,
		FieldJoiningFee,
		FieldAnnualFee,
		FieldRewards,
		FieldCashback,
		FieldOffers,
		FieldTravelBenefits,
		FieldInsurance,
		FieldLoungeAccess,
		FieldForeignTxnFee,
	}
}

// CardRecord is the structured output for one card. Every schema field is
// present in the JSON shape; optional fields marshal as null when absent.
// Records are built once by the assembler and never mutated afterwards.
type CardRecord struct {
	CardName       string  `json:"card_name"`
	IssuingBank    *string `json:"issuing_bank"`
	JoiningFee     *string `json:"joining_fee"`
	AnnualFee      *string `json:"annual_fee"`
	Rewards        *string `json:"rewards"`
	Cashback       *string `json:"cashback"`
	Offers         *string `json:"offers"`
	TravelBenefits *string `json:"travel_benefits"`
	Insurance      *string `json:"insurance"`
	LoungeAccess   *string `json:"lounge_access"`
	ForeignTxnFee  *string `json:"foreign_transaction_fee"`
}

// Field returns the value for the given schema field, or nil when absent.
// card_name comes back as a non-nil pointer since it is always set.
func (r *CardRecord) Field(f FieldID) *string {
	switch f {
	case FieldCardName:
		return &r.CardName
	case FieldIssuingBank:
		return r.IssuingBank
	case FieldJoiningFee:
		return r.JoiningFee
	case FieldAnnualFee:
		return r.AnnualFee
	case FieldRewards:
		return r.Rewards
	case FieldCashback:
		return r.Cashback
	case FieldOffers:
		return r.Offers
	case FieldTravelBenefits:
		return r.TravelBenefits
	case FieldInsurance:
		return r.Insurance
	case FieldLoungeAccess:
		return r.LoungeAccess
	case FieldForeignTxnFee:
		return r.ForeignTxnFee
	}
	return nil
}

// NewCardRecord builds a record from resolved field values. The card_name
// entry must be present and non-nil; callers enforce that before calling.
func NewCardRecord(fields map[FieldID]*string) *CardRecord {
	r := &CardRecord{}
	if v := fields[FieldCardName]; v != nil {
		r.CardName = *v
	}
	r.IssuingBank = fields[FieldIssuingBank]
	r.JoiningFee = fields[FieldJoiningFee]
	r.AnnualFee = fields[FieldAnnualFee]
	r.Rewards = fields[FieldRewards]
	r.Cashback = fields[FieldCashback]
	r.Offers = fields[FieldOffers]
	r.TravelBenefits = fields[FieldTravelBenefits]
	r.Insurance = fields[FieldInsurance]
	r.LoungeAccess = fields[FieldLoungeAccess]
	r.ForeignTxnFee = fields[FieldForeignTxnFee]
	return r
}
