package matcher

import (
	"strings"
	"testing"
)

func TestColonDelimitedSegment(t *testing.T) {
	got := FirstCandidate("TRF:Sri Raja Rajeswari Hospital:INV 42")
	if got != "Sri Raja Rajeswari Hospital" {
		t.Errorf("FirstCandidate = %q", got)
	}
}

func TestTransferCodePatterns(t *testing.T) {
	cases := map[string]string{
		"NEFT CR-1234-ACME TRADERS-XYZ999": "ACME TRADERS",
		"UPI/512345678901/Kumar Medicals/OK": "Kumar Medicals",
	}
	for narration, want := range cases {
		got := FirstCandidate(narration)
		if got != want {
			t.Errorf("FirstCandidate(%q) = %q, want %q", narration, got, want)
		}
	}
}

func TestTokenWindowSkipsJargonAndNumbers(t *testing.T) {
	candidates := ExtractCandidates("IMPS 9876543210123 GUPTA HARDWARE MUM")
	joined := strings.Join(candidates, "|")
	if !strings.Contains(joined, "GUPTA HARDWARE") {
		t.Errorf("expected GUPTA HARDWARE among candidates, got %v", candidates)
	}
	for _, c := range candidates {
		if strings.Contains(c, "9876543210123") {
			t.Errorf("account-like token leaked into candidate %q", c)
		}
		if c == "IMPS" || c == "MUM" {
			t.Errorf("jargon token became a candidate: %q", c)
		}
	}
}

func TestResidueFallback(t *testing.T) {
	candidates := ExtractCandidates("SHARMA DISTRIBUTORS UTR 123456789012")
	found := false
	for _, c := range candidates {
		if strings.Contains(c, "SHARMA DISTRIBUTORS") {
			found = true
		}
		if strings.Contains(c, "123456789012") {
			t.Errorf("digit run survived in %q", c)
		}
	}
	if !found {
		t.Errorf("residue layer missing, candidates: %v", candidates)
	}
}

func TestCandidatesDistinctAndBounded(t *testing.T) {
	candidates := ExtractCandidates("NEFT CR-42A-RAVI AND SONS-XYZ999")
	seen := map[string]bool{}
	for _, c := range candidates {
		key := strings.ToLower(c)
		if seen[key] {
			t.Errorf("duplicate candidate %q", c)
		}
		seen[key] = true
		if len(c) < 3 || len(c) > 100 {
			t.Errorf("candidate length out of bounds: %q", c)
		}
	}
}

func TestNoCandidatesFromPureNoise(t *testing.T) {
	if got := FirstCandidate("1234567890 000123 9999"); got != "" {
		t.Errorf("expected no candidate, got %q", got)
	}
}
