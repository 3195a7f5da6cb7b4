package classifier

import (
	"regexp"
	"strings"

	"github.com/billfoldhq/billfold-backend/pkg/enums"
)

// Input carries the extracted text fragments the scorer looks at. OrgName is
// the organization's own display name; everything else comes from the OCR pass.
type Input struct {
	OrgName              string
	VendorName           string
	Notes                string
	LineItemDescriptions []string
}

type Result struct {
	Type       enums.InvoiceType `json:"type"`
	Confidence float64           `json:"confidence"`
}

const (
	defaultConfidence = 0.4
	tieConfidence     = 0.5
	maxConfidence     = 0.95

	phraseWeight  = 2
	blockWeight   = 5
	vendorWeight  = 3
	tokenMinLen   = 3
	presenceRatio = 0.6
)

var purchaseIndicators = []string{
	"bill to",
	"billed to",
	"ship to",
	"sold to",
	"invoice to",
	"purchase order",
	"payment due",
}

var paymentIndicators = []string{
	"from:",
	"issued by",
	"seller:",
	"vendor:",
	"remit to",
	"pay to",
}

var (
	billToBlockRe = regexp.MustCompile(`bill(?:ed)? to:?\s*(.*?)(?:ship to|invoice|$)`)
	fromBlockRe   = regexp.MustCompile(`(?:^|\s)from:?\s*([^\n]+)`)
)

// Classify scores the extracted text as a PURCHASE (the organization is the
// buyer) or PAYMENT (the organization is the seller) invoice. It is a keyword
// heuristic and advisory only; callers surface the result for confirmation
// rather than trusting it.
func Classify(in Input) Result {
	orgName := strings.ToLower(strings.TrimSpace(in.OrgName))
	orgTokens := significantTokens(orgName)

	text := buildSearchText(in)

	if orgName == "" || !orgPresent(text, orgName, orgTokens) {
		return Result{Type: enums.InvoiceTypePurchase, Confidence: defaultConfidence}
	}

	purchaseScore := scoreIndicators(text, purchaseIndicators, orgName)
	paymentScore := scoreIndicators(text, paymentIndicators, orgName)

	if block := captureBlock(billToBlockRe, text); block != "" && tokenOverlap(block, orgTokens) >= presenceRatio {
		purchaseScore += blockWeight
	}
	if block := captureBlock(fromBlockRe, text); block != "" && tokenOverlap(block, orgTokens) >= presenceRatio {
		paymentScore += blockWeight
	}

	vendor := strings.ToLower(strings.TrimSpace(in.VendorName))
	if vendor != "" && (strings.Contains(vendor, orgName) || tokenOverlap(vendor, orgTokens) >= presenceRatio) {
		paymentScore += vendorWeight
	}

	switch {
	case purchaseScore > paymentScore:
		return Result{Type: enums.InvoiceTypePurchase, Confidence: confidence(purchaseScore - paymentScore)}
	case paymentScore > purchaseScore:
		return Result{Type: enums.InvoiceTypePayment, Confidence: confidence(paymentScore - purchaseScore)}
	default:
		return Result{Type: enums.InvoiceTypePurchase, Confidence: tieConfidence}
	}
}

func buildSearchText(in Input) string {
	parts := make([]string, 0, len(in.LineItemDescriptions)+2)
	if in.VendorName != "" {
		parts = append(parts, in.VendorName)
	}
	if in.Notes != "" {
		parts = append(parts, in.Notes)
	}
	parts = append(parts, in.LineItemDescriptions...)
	return strings.ToLower(strings.Join(parts, "\n"))
}

func significantTokens(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !isWordRune(r)
	})
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) >= tokenMinLen {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

func isWordRune(r rune) bool {
	return r == '-' || r == '&' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

func orgPresent(text, orgName string, orgTokens []string) bool {
	if strings.Contains(text, orgName) {
		return true
	}
	if len(orgTokens) == 0 {
		return false
	}
	found := 0
	for _, tok := range orgTokens {
		if strings.Contains(text, tok) {
			found++
		}
	}
	return float64(found)/float64(len(orgTokens)) >= presenceRatio
}

func scoreIndicators(text string, indicators []string, orgName string) int {
	score := 0
	for _, ind := range indicators {
		// The concatenated forms rarely match real documents verbatim; this
		// is a known weak heuristic carried as-is.
		if strings.Contains(text, ind+orgName) ||
			strings.Contains(text, ind+" "+orgName) ||
			strings.Contains(text, ind+": "+orgName) {
			score += phraseWeight
		}
	}
	return score
}

func captureBlock(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func tokenOverlap(block string, orgTokens []string) float64 {
	if len(orgTokens) == 0 {
		return 0
	}
	found := 0
	for _, tok := range orgTokens {
		if strings.Contains(block, tok) {
			found++
		}
	}
	return float64(found) / float64(len(orgTokens))
}

func confidence(diff int) float64 {
	c := 0.5 + 0.05*float64(diff)
	if c > maxConfidence {
		return maxConfidence
	}
	return c
}
