package reconcile

import (
	"strings"
	"unicode"
)

var bracketPairs = map[rune]rune{
	'[': ']',
	'{': '}',
	'<': '>',
	'(': ')',
	'«': '»',
}

// aliases folds common spellings of the same company attribute onto one key.
// Targets must already be in normalized form and must not appear as sources.
var aliases = map[string]string{
	"company":                          "company_name",
	"company_legal_name":               "company_name",
	"legal_name_of_company":            "company_name",
	"company_full_name":                "company_name",
	"name_of_company":                  "company_name",
	"name_of_the_company":              "company_name",
	"entity_name":                      "company_name",
	"legal_entity_name":                "company_name",
	"corporation_name":                 "company_name",
	"address_of_company":               "company_address",
	"company_principal_address":        "company_address",
	"principal_office_address":         "company_address",
	"company_mailing_address":          "company_address",
	"incorporation_state":              "state_of_incorporation",
	"company_state_of_incorporation":   "state_of_incorporation",
	"jurisdiction_of_incorporation":    "state_of_incorporation",
	"company_jurisdiction":             "state_of_incorporation",
	"ein":                              "company_ein",
	"employer_identification_number":   "company_ein",
	"tax_id":                           "company_ein",
	"federal_tax_id":                   "company_ein",
	"tax_identification_number":        "company_ein",
	"company_tax_id":                   "company_ein",
	"ceo":                              "company_ceo_name",
	"ceo_name":                         "company_ceo_name",
	"chief_executive_officer":          "company_ceo_name",
	"name_of_chief_executive_officer":  "company_ceo_name",
	"company_signatory":                "company_signatory_name",
	"authorized_signatory":             "company_signatory_name",
	"authorized_signatory_name":        "company_signatory_name",
	"company_authorized_signatory":     "company_signatory_name",
	"title_of_authorized_signatory":    "company_signatory_title",
	"company_mail":                     "company_email",
	"company_e_mail":                   "company_email",
	"company_telephone":                "company_phone",
	"company_phone_number":             "company_phone",
	"company_site":                     "company_website",
	"company_url":                      "company_website",
	"company_web_site":                 "company_website",
}

// NormalizeKey maps a raw placeholder identifier or label onto the canonical
// key space: lower snake case, no surrounding brackets, aliases folded.
//
//	NormalizeKey("[Company Name]")  == "company_name"
//	NormalizeKey("{{companyName}}") == "company_name"
//	NormalizeKey("Tax ID")          == "company_ein"
//
// NormalizeKey is idempotent.
func NormalizeKey(s string) string {
	s = stripBrackets(strings.TrimSpace(s))
	if s == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(s) + 4)
	var prev rune
	pendingSep := false
	for i, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if i > 0 && unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
				pendingSep = true
			}
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
		default:
			pendingSep = true
		}
		prev = r
	}

	key := b.String()
	if canonical, ok := aliases[key]; ok {
		return canonical
	}
	return key
}

func stripBrackets(s string) string {
	for {
		s = strings.TrimPrefix(s, "$")
		s = strings.TrimSpace(s)
		rs := []rune(s)
		if len(rs) < 2 {
			return s
		}
		closing, ok := bracketPairs[rs[0]]
		if !ok || rs[len(rs)-1] != closing {
			return s
		}
		s = string(rs[1 : len(rs)-1])
	}
}

// Humanize turns a canonical key back into a display label.
func Humanize(key string) string {
	parts := strings.Split(key, "_")
	out := parts[:0]
	for _, p := range parts {
		if p == "" {
			continue
		}
		rs := []rune(p)
		rs[0] = unicode.ToUpper(rs[0])
		out = append(out, string(rs))
	}
	return strings.Join(out, " ")
}
