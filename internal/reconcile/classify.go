package reconcile

import "strings"

var defaultCompanyKeywords = []string{
	"company",
	"corporation",
	"corp",
	"entity",
	"business",
	"organization",
	"llc",
	"inc",
	"address",
	"state_of_incorporation",
	"jurisdiction",
	"incorporation",
	"ein",
	"tax_id",
	"registered_agent",
	"registered_office",
	"ceo",
	"officer",
	"founder",
	"signatory",
	"email",
	"phone",
	"website",
}

var defaultDocumentKeywords = []string{
	"date",
	"effective",
	"amount",
	"price",
	"purchase",
	"investment",
	"investor",
	"valuation",
	"cap",
	"discount",
	"term",
	"signature",
	"shares",
	"number_of_shares",
	"consideration",
	"closing",
	"maturity",
	"interest",
	"salary",
	"fee",
	"deadline",
	"expiration",
	"holder",
	"recipient",
	"counterparty",
}

// Classifier decides the scope of a field from keywords found in its key.
// Keywords are matched against whole tokens of the normalized key; a
// multi-word keyword such as "tax_id" must appear as consecutive tokens.
type Classifier struct {
	company  [][]string
	document [][]string
}

// DefaultClassifier holds the built-in keyword lists.
var DefaultClassifier = NewClassifier(defaultCompanyKeywords, defaultDocumentKeywords)

// NewClassifier builds a Classifier. Keywords are normalized the same way as
// field keys, without alias folding.
func NewClassifier(company, document []string) *Classifier {
	return &Classifier{
		company:  tokenizeAll(company),
		document: tokenizeAll(document),
	}
}

// Classify returns the scope for a field. Document keywords win over company
// keywords: "company_signature_date" is a document field. A field matching
// neither list is a document field.
func (c *Classifier) Classify(key, label string) Scope {
	tokens := tokens(NormalizeKey(key))
	if len(tokens) == 0 {
		tokens = labelTokens(label)
	}
	if containsAny(tokens, c.document) {
		return ScopeDocument
	}
	if containsAny(tokens, c.company) {
		return ScopeCompany
	}
	return ScopeDocument
}

// Classify uses DefaultClassifier.
func Classify(key, label string) Scope {
	return DefaultClassifier.Classify(key, label)
}

func tokenizeAll(keywords []string) [][]string {
	out := make([][]string, 0, len(keywords))
	for _, k := range keywords {
		if t := labelTokens(k); len(t) > 0 {
			out = append(out, t)
		}
	}
	return out
}

// labelTokens splits without alias folding, so "ceo" stays "ceo".
func labelTokens(s string) []string {
	s = strings.ToLower(s)
	return strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

func tokens(key string) []string {
	if key == "" {
		return nil
	}
	return strings.Split(key, "_")
}

func containsAny(haystack []string, needles [][]string) bool {
	for _, n := range needles {
		if containsSeq(haystack, n) {
			return true
		}
	}
	return false
}

func containsSeq(haystack, needle []string) bool {
	if len(needle) == 0 || len(needle) > len(haystack) {
		return false
	}
outer:
	for i := 0; i+len(needle) <= len(haystack); i++ {
		for j, t := range needle {
			if haystack[i+j] != t {
				continue outer
			}
		}
		return true
	}
	return false
}
