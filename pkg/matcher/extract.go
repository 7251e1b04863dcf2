package matcher

import (
	"regexp"
	"strings"
	"unicode"
)

// Candidate mining is layered because no single rule generalizes across
// banks. Earlier layers are precise, later ones deliberately coarse so that
// training always has something to learn from.

var colonSegment = regexp.MustCompile(`:([^:]+):`)

// Positional patterns for transfer-code narrations: marker, id token, then
// the party name before a trailing code/number block.
var transferPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bNEFT[ -/]?(?:CR|DR)?[ -/][A-Z0-9]+[ -/]([A-Za-z][A-Za-z .&']{2,60}?)[ -/][A-Z0-9]*\d[A-Z0-9]*`),
	regexp.MustCompile(`(?i)\b(?:MMT/)?IMPS[ -/]\d+[ -/]([A-Za-z][A-Za-z .&']{2,60}?)(?:[ -/][A-Z0-9]+)?$`),
	regexp.MustCompile(`(?i)\bUPI/\d+/([A-Za-z][A-Za-z .&']{2,60}?)/`),
	regexp.MustCompile(`(?i)\bRTGS[ -/][A-Z0-9]+[ -/]([A-Za-z][A-Za-z .&']{2,60}?)(?:[ -/]|$)`),
	regexp.MustCompile(`(?i)\b(?:FT|CHQ)[ -/][A-Z0-9]*\d[A-Z0-9]*[ -/]([A-Za-z][A-Za-z .&']{2,60})`),
}

// Jargon and processing codes that never belong in a party name.
var extractStopwords = map[string]struct{}{
	"neft": {}, "imps": {}, "rtgs": {}, "upi": {}, "ft": {}, "chq": {},
	"cr": {}, "dr": {}, "dep": {}, "trf": {}, "tfr": {}, "txn": {},
	"ref": {}, "utr": {}, "pos": {}, "atm": {}, "inb": {}, "mmt": {},
	"pay": {}, "paytm": {}, "ok": {}, "mum": {}, "del": {}, "blr": {},
	"hdfc": {}, "icici": {}, "sbi": {}, "axis": {}, "utib": {}, "punb": {},
}

var (
	refCodePattern  = regexp.MustCompile(`(?i)\b(?:UTR|REF|TXN|CHQ|RRN)[ :#-]*[A-Z0-9]+\b`)
	mixedCodeToken  = regexp.MustCompile(`\b[A-Z]{2,5}\d{4,}\b`)
	longDigitRun    = regexp.MustCompile(`\d{6,}`)
	splitDelimiters = func(r rune) bool { return unicode.IsSpace(r) || r == '-' || r == ':' }
)

// ExtractCandidates runs every layer over the narration and returns the
// distinct candidates in layer order. Training learns all of them.
func ExtractCandidates(narration string) []string {
	var out []string
	seen := map[string]struct{}{}
	add := func(c string) {
		c = collapse(c)
		if !validCandidate(c) {
			return
		}
		key := strings.ToLower(c)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}

	for _, c := range colonCandidates(narration) {
		add(c)
	}
	for _, c := range transferCandidates(narration) {
		add(c)
	}
	for _, c := range tokenWindowCandidates(narration) {
		add(c)
	}
	if c := residueCandidate(narration); c != "" {
		add(c)
	}
	return out
}

// FirstCandidate short-circuits on the first layer that yields anything,
// which is the one suggestion shown to the user.
func FirstCandidate(narration string) string {
	layers := [][]string{
		colonCandidates(narration),
		transferCandidates(narration),
		tokenWindowCandidates(narration),
	}
	for _, layer := range layers {
		for _, c := range layer {
			c = collapse(c)
			if validCandidate(c) {
				return c
			}
		}
	}
	if c := collapse(residueCandidate(narration)); validCandidate(c) {
		return c
	}
	return ""
}

// Layer 1: text between two colons.
func colonCandidates(narration string) []string {
	var out []string
	for _, m := range colonSegment.FindAllStringSubmatch(narration, -1) {
		out = append(out, m[1])
	}
	return out
}

// Layer 2: transfer-code positional patterns, tried in sequence.
func transferCandidates(narration string) []string {
	var out []string
	for _, re := range transferPatterns {
		if m := re.FindStringSubmatch(narration); m != nil {
			out = append(out, m[1])
		}
	}
	return out
}

// Layer 3: drop noise tokens, then slide a 1-6 token window over what
// survives. Longer windows come first so the fullest phrase is preferred.
func tokenWindowCandidates(narration string) []string {
	tokens := strings.FieldsFunc(narration, splitDelimiters)
	var kept []string
	for _, tok := range tokens {
		if keepToken(tok) {
			kept = append(kept, tok)
		}
	}

	var out []string
	for size := 6; size >= 1; size-- {
		for start := 0; start+size <= len(kept); start++ {
			out = append(out, strings.Join(kept[start:start+size], " "))
		}
	}
	return out
}

func keepToken(tok string) bool {
	tok = strings.Trim(tok, ".,/()")
	if tok == "" || isNumeric(tok) {
		return false
	}
	if digitCount(tok) >= 10 {
		return false
	}
	if _, stop := extractStopwords[strings.ToLower(tok)]; stop {
		return false
	}
	// Alphanumeric reference codes like XYZ999 or A1B2C3.
	if digitCount(tok) >= 3 && tok == strings.ToUpper(tok) {
		return false
	}
	return true
}

// Layer 4: strip reference patterns and long digit runs from the whole
// narration and use the residue when enough text remains.
func residueCandidate(narration string) string {
	s := refCodePattern.ReplaceAllString(narration, " ")
	s = mixedCodeToken.ReplaceAllString(s, " ")
	s = longDigitRun.ReplaceAllString(s, " ")
	s = collapse(strings.Trim(s, " -/:."))
	if len(s) > 5 {
		return s
	}
	return ""
}

func validCandidate(c string) bool {
	if len(c) < 3 || len(c) > 100 {
		return false
	}
	first := rune(c[0])
	if !unicode.IsLetter(first) {
		return false
	}
	// A candidate made only of stopwords carries no signal.
	for _, w := range strings.Fields(strings.ToLower(c)) {
		if _, stop := extractStopwords[w]; !stop {
			return true
		}
	}
	return false
}

func collapse(s string) string {
	return strings.Join(strings.Fields(strings.TrimSpace(s)), " ")
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(s) > 0
}

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
