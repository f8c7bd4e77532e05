package extract

import (
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/cardsift/cardsift/internal/model"
)

// Tier ranks the specificity of the pattern that produced a candidate.
// Higher wins during resolution.
type Tier int

const (
	// TierFallback is a bare token with no labeling context.
	TierFallback Tier = iota
	// TierKeyword is a match found near a field-related keyword.
	TierKeyword
	// TierLabeled is a match keyed to an explicit field label ("Annual Fee: $95").
	TierLabeled
)

func (t Tier) String() string {
	switch t {
	case TierLabeled:
		return "labeled"
	case TierKeyword:
		return "keyword"
	default:
		return "fallback"
	}
}

// parseTier maps a rule-file tier name to a Tier.
func parseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "labeled", "high":
		return TierLabeled, nil
	case "keyword", "medium":
		return TierKeyword, nil
	case "fallback", "low":
		return TierFallback, nil
	}
	return 0, eris.Errorf("rules: unknown tier %q", s)
}

// Rule is one declarative extraction pattern: which field it feeds, how
// specific it is, and the regex that produces candidate values. The first
// capture group is the candidate; with no groups the whole match is used.
// Rules are compiled once and shared read-only across extraction runs.
type Rule struct {
	Field   model.FieldID
	ID      string
	Tier    Tier
	Pattern string

	re *regexp.Regexp
}

// Candidate is one possible value for one field within a segment, tagged
// with the tier and identity of the rule that produced it.
type Candidate struct {
	Field model.FieldID
	Value string
	Tier  Tier
	Rule  string
	Pos   int // byte offset of the match within the segment
}

// RuleSet is an ordered, immutable collection of compiled rules indexed by
// field. Safe for concurrent use.
type RuleSet struct {
	rules   []Rule
	byField map[model.FieldID][]*Rule
}

// NewRuleSet compiles the given rules. Rule order within a field is
// preserved: earlier rules are consulted first and their candidates carry
// their declared tier.
func NewRuleSet(rules []Rule) (*RuleSet, error) {
	rs := &RuleSet{
		rules:   make([]Rule, len(rules)),
		byField: make(map[model.FieldID][]*Rule),
	}
	copy(rs.rules, rules)
	for i := range rs.rules {
		r := &rs.rules[i]
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, eris.Wrapf(err, "rules: compile %s", r.ID)
		}
		r.re = re
		rs.byField[r.Field] = append(rs.byField[r.Field], r)
	}
	return rs, nil
}

// Candidates runs every rule for the given field over the segment text and
// returns all matches in rule order. A rule may match zero, one, or many
// times; each match becomes one candidate at the rule's tier.
func (rs *RuleSet) Candidates(segText string, field model.FieldID) []Candidate {
	var out []Candidate
	for _, r := range rs.byField[field] {
		for _, loc := range r.re.FindAllStringSubmatchIndex(segText, -1) {
			start, end := loc[0], loc[1]
			if len(loc) >= 4 && loc[2] >= 0 {
				start, end = loc[2], loc[3]
			}
			val := cleanValue(segText[start:end])
			if val == "" {
				continue
			}
			out = append(out, Candidate{
				Field: field,
				Value: val,
				Tier:  r.Tier,
				Rule:  r.ID,
				Pos:   start,
			})
		}
	}
	return out
}

// HasFieldSignal reports whether any non-name rule matches the text. The
// segment detector uses this to reject boundary hypotheses that produce
// empty shards.
func (rs *RuleSet) HasFieldSignal(text string) bool {
	for _, f := range model.AllFields() {
		if f == model.FieldCardName {
			continue
		}
		for _, r := range rs.byField[f] {
			if r.re.MatchString(text) {
				return true
			}
		}
	}
	return false
}

var innerWSRe = regexp.MustCompile(`\s+`)

// cleanValue trims a captured value and collapses internal whitespace.
// Punctuation and currency symbols are kept as extracted.
func cleanValue(s string) string {
	return strings.TrimSpace(innerWSRe.ReplaceAllString(s, " "))
}

// feeValue matches a fee amount as it appears in source text: an optional
// currency symbol and digits, or a waiver word. Kept as a string fragment so
// fee rules stay readable.
const feeValue = `([₹$€£]\s?[\d,]+(?:\.\d+)?|[\d,]+(?:\.\d+)?|free|nil|waived|zero|none)`

// defaultRules is the built-in rule table, ordered most to least specific
// per field. Narrative fields capture the containing line rather than a bare
// keyword. Values keep their original formatting; nothing is parsed into
// numbers.
var defaultRules = []Rule{
	// card_name
	{Field: model.FieldCardName, ID: "name_titled", Tier: TierLabeled,
		Pattern: `\b((?:[A-Z][A-Za-z0-9&'’.-]*[ ]){0,5}(?:Credit|Platinum|Gold|Silver|Titanium|Rewards|Cashback|Signature|Infinite|World|Premier|Travel|Business|Student|Secured)[ ]Card)\b`},
	{Field: model.FieldCardName, ID: "name_allcaps", Tier: TierKeyword,
		Pattern: `\b([A-Z][A-Z0-9&' -]{2,60}?(?:CREDIT )?CARD)\b`},
	{Field: model.FieldCardName, ID: "name_line", Tier: TierFallback,
		Pattern: `(?im)^([A-Za-z][\w&'’. -]{2,70}[ ][Cc]ard)[ ]?$`},

	// issuing_bank
	{Field: model.FieldIssuingBank, ID: "bank_labeled", Tier: TierLabeled,
		Pattern: `(?i)(?:issued[ ]by|issuer|issuing[ ]bank)[:\s]+([A-Z][\w&'. ]{2,50})`},
	{Field: model.FieldIssuingBank, ID: "bank_suffix", Tier: TierKeyword,
		Pattern: `\b([A-Z][\w&'.]*(?:[ ][A-Z][\w&'.]*){0,4}[ ]Bank)\b`},
	{Field: model.FieldIssuingBank, ID: "bank_known", Tier: TierFallback,
		Pattern: `\b(American Express|HDFC|ICICI|Axis|SBI|Citi|HSBC|Barclays|Chase|Capital One|Discover)\b`},

	// joining_fee
	{Field: model.FieldJoiningFee, ID: "join_labeled", Tier: TierLabeled,
		Pattern: `(?i)(?:joining|one[- ]?time|enrollment|membership)[ ]fee[:\s]*` + feeValue},
	{Field: model.FieldJoiningFee, ID: "join_keyword", Tier: TierKeyword,
		Pattern: `(?i)joining[:\s]*([₹$€£][\d,]+(?:\.\d+)?)`},

	// annual_fee
	{Field: model.FieldAnnualFee, ID: "annual_labeled", Tier: TierLabeled,
		Pattern: `(?i)(?:annual|yearly|renewal)[ ]fee[:\s]*` + feeValue},
	{Field: model.FieldAnnualFee, ID: "annual_keyword", Tier: TierKeyword,
		Pattern: `(?i)annual[:\s]*([₹$€£][\d,]+(?:\.\d+)?)`},
	{Field: model.FieldAnnualFee, ID: "annual_nearby", Tier: TierFallback,
		Pattern: `(?i)fee[^\n]{0,40}?([₹$€£][\d,]+(?:\.\d+)?)`},

	// rewards. Labeled rules require an explicit colon so that card names
	// like "Platinum Rewards Card" never read as a rewards label; line
	// fallbacks require the keyword to lead the line (or its bullet) so a
	// passing mention inside another field's sentence does not capture it.
	{Field: model.FieldRewards, ID: "rewards_labeled", Tier: TierLabeled,
		Pattern: `(?i)(?:rewards?|reward[ ]points|miles)[ ]?:[ ]?([^\n]+)`},
	{Field: model.FieldRewards, ID: "rewards_multiplier", Tier: TierKeyword,
		Pattern: `(?i)(\d+[x][ ]?[\w ,]+?(?:on|for)[ ][\w ,&]+)`},
	{Field: model.FieldRewards, ID: "rewards_earn", Tier: TierKeyword,
		Pattern: `(?i)earn[^\n]*?(\d+%[^\n.]*|\d+[x][^\n.]*)`},
	{Field: model.FieldRewards, ID: "rewards_line", Tier: TierFallback,
		Pattern: `(?im)^[-•*– ]*(rewards?\b[^\n]*)$`},

	// cashback
	{Field: model.FieldCashback, ID: "cashback_labeled", Tier: TierLabeled,
		Pattern: `(?i)cash[ ]?back[ ]?:[ ]?([^\n]+)`},
	{Field: model.FieldCashback, ID: "cashback_pct", Tier: TierKeyword,
		Pattern: `(?i)(\d+(?:\.\d+)?%[ ]?cash[ ]?back)`},
	{Field: model.FieldCashback, ID: "cashback_line", Tier: TierFallback,
		Pattern: `(?im)^[-•*– ]*(cash[ ]?back\b[^\n]*)$`},

	// offers
	{Field: model.FieldOffers, ID: "offers_labeled", Tier: TierLabeled,
		Pattern: `(?i)(?:welcome[ ])?offers?[ ]?:[ ]?([^\n]+)`},
	{Field: model.FieldOffers, ID: "offers_benefit", Tier: TierLabeled,
		Pattern: `(?i)benefits?[ ]?:[ ]?([^\n]+)`},
	{Field: model.FieldOffers, ID: "offers_bonus", Tier: TierKeyword,
		Pattern: `(?i)([\d,]+[ ]bonus[ ]points[^\n]*|[\d,]+[ ]welcome[ ]points[^\n]*)`},
	{Field: model.FieldOffers, ID: "offers_comp", Tier: TierFallback,
		Pattern: `(?i)(complimentary[ ][^\n]+)`},

	// travel_benefits
	{Field: model.FieldTravelBenefits, ID: "travel_labeled", Tier: TierLabeled,
		Pattern: `(?i)travel(?:[ ]benefits)?[ ]?:[ ]?([^\n]+)`},
	{Field: model.FieldTravelBenefits, ID: "travel_line", Tier: TierFallback,
		Pattern: `(?im)^[-•*– ]*(travel\b[^\n]*)$`},

	// insurance
	{Field: model.FieldInsurance, ID: "insurance_labeled", Tier: TierLabeled,
		Pattern: `(?i)insurance(?:[ ]cover(?:age)?)?[ ]?:[ ]?([^\n]+)`},
	{Field: model.FieldInsurance, ID: "insurance_line", Tier: TierFallback,
		Pattern: `(?im)^[-•*– ]*(insurance\b[^\n]*)$`},

	// lounge_access
	{Field: model.FieldLoungeAccess, ID: "lounge_labeled", Tier: TierLabeled,
		Pattern: `(?i)lounge(?:[ ]access)?[ ]?:[ ]?([^\n]+)`},
	{Field: model.FieldLoungeAccess, ID: "lounge_line", Tier: TierFallback,
		Pattern: `(?im)^[-•*– ]*((?:airport[ ])?lounge\b[^\n]*)$`},

	// foreign_transaction_fee
	{Field: model.FieldForeignTxnFee, ID: "ftf_labeled", Tier: TierLabeled,
		Pattern: `(?i)foreign[ ](?:transaction|currency)[ ](?:fee|markup)[:\s]*([₹$€£]?[\d.,]+%?|free|none|nil|waived|zero)`},
}

// DefaultRuleSet returns the built-in rules compiled. The table is static,
// so compilation cannot fail at runtime.
func DefaultRuleSet() *RuleSet {
	rs, err := NewRuleSet(defaultRules)
	if err != nil {
		panic(err)
	}
	return rs
}

// rulesFile is the YAML shape for user-supplied rules.
type rulesFile struct {
	Rules []struct {
		Field   string `yaml:"field"`
		ID      string `yaml:"id"`
		Tier    string `yaml:"tier"`
		Pattern string `yaml:"pattern"`
	} `yaml:"rules"`
}

// LoadRuleSet reads extra rules from a YAML file and merges them ahead of
// the built-ins so they take precedence within their field.
func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "rules: read file")
	}
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "rules: unmarshal")
	}

	extra := make([]Rule, 0, len(f.Rules))
	known := make(map[model.FieldID]bool)
	for _, fid := range model.AllFields() {
		known[fid] = true
	}
	for _, r := range f.Rules {
		fid := model.FieldID(r.Field)
		if !known[fid] {
			return nil, eris.Errorf("rules: unknown field %q", r.Field)
		}
		tier, err := parseTier(r.Tier)
		if err != nil {
			return nil, err
		}
		extra = append(extra, Rule{Field: fid, ID: r.ID, Tier: tier, Pattern: r.Pattern})
	}

	return NewRuleSet(append(extra, defaultRules...))
}
