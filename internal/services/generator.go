package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/GregMSThompson/regexflow/internal/dto"
	"github.com/GregMSThompson/regexflow/internal/models"
	"github.com/GregMSThompson/regexflow/pkg/helpers"
	"github.com/GregMSThompson/regexflow/pkg/logger"
)

const (
	sourceHeuristic = "heuristic"
	sourceVertex    = "vertex"
)

var bankKeywords = []string{"HDFC", "ICICI", "SBI", "AXIS", "KOTAK", "PNB", "BOB", "CANARA", "UNION", "INDUSIND", "YES", "IDFC", "RBL"}

var (
	nonLetters    = regexp.MustCompile(`[^a-zA-Z]`)
	datePattern   = regexp.MustCompile(`\d{1,2}[-/]\d{1,2}[-/]\d{2,4}`)
	accountMasked = regexp.MustCompile(`[*xX]{2,}\d{3,}`)
	refCandidate  = regexp.MustCompile(`\b[A-Z0-9]*[0-9][A-Z0-9]*\b`)
	amountPattern = regexp.MustCompile(`(?i)(?:Rs\.?|INR)?\s*[0-9][0-9,]*(?:\.[0-9]+)?`)
	merchantSpan  = regexp.MustCompile(`(?i)\b(?:to|at|from)\s+([A-Za-z0-9 ]+?)\s+(?:on|dated|ref)\b`)
	whitespaceRun = regexp.MustCompile(`\s+`)
	codeFence     = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")
)

// Placeholders survive QuoteMeta and never match the scanners above.
const (
	phAmount   = "\x00amount\x00"
	phBalance  = "\x00balance\x00"
	phDate     = "\x00date\x00"
	phAccount  = "\x00account\x00"
	phRef      = "\x00ref\x00"
	phMerchant = "\x00merchant\x00"
)

var placeholderGroups = []struct{ token, group string }{
	{phAmount, `(?:Rs\.?|INR)?\s*(?<amount>[0-9,]+(?:\.[0-9]+)?)`},
	{phBalance, `(?:Rs\.?|INR)?\s*(?<balance>[0-9,]+(?:\.[0-9]+)?)`},
	{phDate, `(?<date>\d{1,2}[-/]\d{1,2}[-/]\d{2,4})`},
	{phAccount, `(?<accountId>[*xX]{2,}\d{3,})`},
	{phRef, `(?<referenceNumber>[A-Z0-9]{10,})`},
	{phMerchant, `(?:to|at|from)\s+(?<merchantOrPayee>[A-Za-z0-9\s]+?)`},
}

const suggestionPrompt = `You write regular expressions for bank SMS templates.
Reply with a single .NET-style regular expression and nothing else.
Use named groups from this list where the message contains them: amount, balance, date, accountId, merchantOrPayee, mode, referenceNumber.
Match variable parts loosely and literal words exactly.`

type suggestionClient interface {
	GenerateContent(ctx context.Context, req dto.VertexGenerateRequest) (dto.VertexGenerateResponse, error)
}

type patternMatcher interface {
	Validate(pattern string) error
	Matches(pattern, text string) bool
}

type generatorService struct {
	engine patternMatcher
	vertex suggestionClient
}

// NewGeneratorService builds the template generator. vertex may be nil, in which case
// only the heuristic is used.
func NewGeneratorService(engine patternMatcher, vertex suggestionClient) *generatorService {
	return &generatorService{engine: engine, vertex: vertex}
}

// Generate proposes draft template fields for an unparsed SMS. A model suggestion is kept
// only when it compiles and matches the message; otherwise the heuristic pattern is used.
func (s *generatorService) Generate(ctx context.Context, smsText, senderHeader string) dto.GeneratedTemplate {
	log := logger.FromContext(ctx)

	if strings.TrimSpace(smsText) == "" {
		return dto.GeneratedTemplate{Success: false, ErrorMessage: "SMS text is required", SampleSms: smsText}
	}

	bank := detectBankName(smsText, senderHeader)
	smsType := detectSmsType(smsText)
	out := dto.GeneratedTemplate{
		Success:     true,
		BankName:    bank,
		SmsType:     smsType,
		Description: fmt.Sprintf("Auto-generated template for %s %s transactions", bank, strings.ToLower(string(smsType))),
		SampleSms:   smsText,
	}

	if pattern, ok := s.suggest(ctx, smsText); ok {
		out.Pattern = pattern
		out.Source = sourceVertex
		log.Info("template generated", "source", sourceVertex, "bank", bank)
		return out
	}

	pattern := heuristicPattern(smsText)
	if err := s.engine.Validate(pattern); err != nil {
		log.Warn("heuristic pattern invalid", "error", err)
		return dto.GeneratedTemplate{Success: false, ErrorMessage: "Failed to generate template: " + err.Error(), SampleSms: smsText}
	}
	out.Pattern = pattern
	out.Source = sourceHeuristic
	log.Info("template generated", "source", sourceHeuristic, "bank", bank)
	return out
}

func (s *generatorService) suggest(ctx context.Context, smsText string) (string, bool) {
	if s.vertex == nil {
		return "", false
	}
	log := logger.FromContext(ctx)

	resp, err := s.vertex.GenerateContent(ctx, dto.VertexGenerateRequest{
		System:          suggestionPrompt,
		UserMessage:     smsText,
		Temperature:     helpers.Ptr(float32(0)),
		MaxOutputTokens: helpers.Ptr(int32(512)),
	})
	if err != nil {
		log.Warn("vertex suggestion failed", "error", err)
		return "", false
	}

	pattern := strings.TrimSpace(resp.Text)
	if m := codeFence.FindStringSubmatch(pattern); m != nil {
		pattern = strings.TrimSpace(m[1])
	}
	if pattern == "" || s.engine.Validate(pattern) != nil || !s.engine.Matches(pattern, smsText) {
		log.Info("vertex suggestion discarded", "pattern", pattern)
		return "", false
	}
	return pattern, true
}

func detectBankName(smsText, senderHeader string) string {
	letters := strings.ToUpper(nonLetters.ReplaceAllString(senderHeader, ""))
	if len(letters) >= 2 {
		return capitalize(letters)
	}

	upper := strings.ToUpper(smsText)
	for _, bank := range bankKeywords {
		if strings.Contains(upper, bank) {
			return bank
		}
	}

	if letters != "" {
		return capitalize(letters)
	}
	return "UnknownBank"
}

// detectSmsType checks credit keywords first, then debit, then bill; DEBIT is the fallback.
func detectSmsType(smsText string) models.SmsType {
	upper := strings.ToUpper(smsText)
	containsAny := func(words ...string) bool {
		for _, w := range words {
			if strings.Contains(upper, w) {
				return true
			}
		}
		return false
	}

	switch {
	case containsAny("CREDITED", "CREDIT", "RECEIVED", "DEPOSITED"):
		return models.SmsCredit
	case containsAny("DEBITED", "DEBIT", "PAID", "PURCHASE", "WITHDRAWN", "SPENT"):
		return models.SmsDebit
	case containsAny("BILL", "PAYMENT", "UTILITY"):
		return models.SmsBill
	default:
		return models.SmsDebit
	}
}

// heuristicPattern turns a sample SMS into a pattern by replacing recognisable values with
// named groups, escaping the remaining literal text and loosening whitespace.
func heuristicPattern(smsText string) string {
	work := smsText

	if m := merchantSpan.FindStringSubmatchIndex(work); m != nil {
		// Replace "to <merchant>" but keep the trailing keyword literal.
		work = work[:m[0]] + phMerchant + work[m[3]:]
	}
	work = datePattern.ReplaceAllString(work, phDate)
	work = accountMasked.ReplaceAllString(work, phAccount)
	work = refCandidate.ReplaceAllStringFunc(work, func(tok string) string {
		if len(tok) < 10 {
			return tok
		}
		return phRef
	})
	work = replaceFirstAmount(work, phAmount)
	work = replaceFirstAmount(work, phBalance)

	work = regexp.QuoteMeta(work)
	work = whitespaceRun.ReplaceAllString(work, `\s+`)
	for _, p := range placeholderGroups {
		work = strings.ReplaceAll(work, p.token, p.group)
	}
	return "(?i)" + work
}

func replaceFirstAmount(text, token string) string {
	loc := amountPattern.FindStringIndex(text)
	if loc == nil {
		return text
	}
	start := loc[0]
	// Keep leading whitespace outside the group so it is loosened with the rest.
	for start < loc[1] && (text[start] == ' ' || text[start] == '\t' || text[start] == '\n') {
		start++
	}
	return text[:start] + token + text[loc[1]:]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
