package redact

import "regexp"

// rule matches a single secret pattern within one line. group selects which
// submatch gets replaced by the "[REDACTED:<kind>]" marker; 0 means the
// whole match.
type rule struct {
	kind       Kind
	confidence Confidence
	pattern    *regexp.Regexp
	group      int
}

// lineRules are evaluated against every non-excluded line, in order. The
// first rule to match a given span wins; later rules are still tried against
// the remainder of the line for additional, non-overlapping matches.
var lineRules = []rule{
	{
		kind:       KindAWSAccessKey,
		confidence: ConfidenceHigh,
		pattern:    regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),
	},
	{
		kind:       KindAWSSecretKey,
		confidence: ConfidenceHigh,
		pattern:    regexp.MustCompile(`(?i)aws_secret_access_key\s*[:=]\s*['"]?([A-Za-z0-9/+=]{40})['"]?`),
		group:      1,
	},
	{
		kind:       KindBearerToken,
		confidence: ConfidenceMedium,
		pattern:    regexp.MustCompile(`\bBearer\s+([A-Za-z0-9\-._~+/]{16,}=*)`),
		group:      1,
	},
	{
		kind:       KindGenericKey,
		confidence: ConfidenceLow,
		pattern:    regexp.MustCompile(`(?i)(?:api[_-]?key|secret|password|token)\s*[:=]\s*['"]?([A-Za-z0-9_\-+/=]{16,})['"]?`),
		group:      1,
	},
}

// privateKeyBegin and privateKeyEnd delimit a PEM private-key block, which
// spans multiple lines and is therefore handled as its own pass rather than
// a per-line rule.
var (
	privateKeyBegin = regexp.MustCompile(`-----BEGIN ([A-Z ]*PRIVATE KEY)-----`)
	privateKeyEnd   = regexp.MustCompile(`-----END ([A-Z ]*PRIVATE KEY)-----`)
)
