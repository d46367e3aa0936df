// Package extract runs template patterns against SMS text and pulls out named fields.
package extract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dlclark/regexp2"
)

const DefaultTimeout = 5 * time.Second

// Constructs that blow up a backtracking engine on ordinary SMS input.
var dangerousConstructs = []string{
	"(.*)*",
	"(.+)+",
	"(a*)*",
	"(a+)+",
	"(a|a)*",
	"(a|ab)*",
}

var ErrEmptyPattern = errors.New("Regex pattern cannot be empty")

// PatternError is a malformed or unsafe pattern, or a fault while executing it.
type PatternError struct {
	Message string
	Err     error
}

func (e *PatternError) Error() string { return e.Message }
func (e *PatternError) Unwrap() error { return e.Err }

// Result of running a pattern. Fields is non-nil whenever Matched is true.
type Result struct {
	Matched bool
	Fields  map[string]string
	Elapsed time.Duration
}

type Engine struct {
	timeout time.Duration
}

func New(timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Engine{timeout: timeout}
}

// Validate checks that pattern is non-empty, compiles, and has no known catastrophic construct.
func (e *Engine) Validate(pattern string) error {
	_, err := e.compile(pattern)
	return err
}

func (e *Engine) compile(pattern string) (*regexp2.Regexp, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, ErrEmptyPattern
	}
	re, err := regexp2.Compile(pattern, regexp2.IgnoreCase)
	if err != nil {
		return nil, &PatternError{Message: "Invalid regex pattern: " + err.Error(), Err: err}
	}
	for _, c := range dangerousConstructs {
		if strings.Contains(pattern, c) {
			return nil, &PatternError{
				Message: "Pattern contains potentially dangerous construct that may cause catastrophic backtracking: " + c,
			}
		}
	}
	re.MatchTimeout = e.timeout
	return re, nil
}

// Test runs pattern against text. A pattern that executes without matching returns
// Matched=false and a nil error; only malformed patterns and runtime faults return an error.
func (e *Engine) Test(pattern, text string) (Result, error) {
	start := time.Now()
	re, err := e.compile(pattern)
	if err != nil {
		return Result{Elapsed: time.Since(start)}, err
	}

	m, err := re.FindStringMatch(text)
	elapsed := time.Since(start)
	if err != nil {
		msg := "Error executing regex: " + err.Error()
		if strings.Contains(err.Error(), "timeout") {
			msg = "Regex execution timed out - possible catastrophic backtracking"
		}
		return Result{Elapsed: elapsed}, &PatternError{Message: msg, Err: err}
	}
	if m == nil {
		return Result{Elapsed: elapsed}, nil
	}
	return Result{Matched: true, Fields: fields(m), Elapsed: elapsed}, nil
}

// Matches reports whether pattern finds a match in text. Errors count as no match.
func (e *Engine) Matches(pattern, text string) bool {
	res, err := e.Test(pattern, text)
	return err == nil && res.Matched
}

// Score ranks how much useful data pattern extracts from text; higher is better.
func (e *Engine) Score(pattern, text string) float64 {
	res, err := e.Test(pattern, text)
	if err != nil || !res.Matched {
		return 0
	}
	total := 0
	for _, v := range res.Fields {
		total += len(v)
	}
	score := float64(len(res.Fields))*10 + float64(total)*0.1
	bonus := map[string]float64{"amount": 20, "balance": 15, "bank": 10, "date": 5}
	for k, b := range bonus {
		if _, ok := res.Fields[k]; ok {
			score += b
		}
	}
	return score
}

// fields collects trimmed non-empty named captures. When the pattern has no named
// capture with a value, numbered groups are reported as group1..groupN instead.
func fields(m *regexp2.Match) map[string]string {
	out := make(map[string]string)
	groups := m.Groups()
	for _, g := range groups[1:] {
		if _, err := strconv.Atoi(g.Name); err == nil {
			continue
		}
		if v := captured(g); v != "" {
			out[g.Name] = v
		}
	}
	if len(out) > 0 {
		return out
	}
	for i, g := range groups[1:] {
		if v := captured(g); v != "" {
			out[fmt.Sprintf("group%d", i+1)] = v
		}
	}
	return out
}

func captured(g regexp2.Group) string {
	if len(g.Captures) == 0 {
		return ""
	}
	return strings.TrimSpace(g.String())
}
