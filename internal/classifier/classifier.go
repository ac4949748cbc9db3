// Package classifier decides which emails are genuine newsletter content
// worth retaining. Scoring is a flat weighted-rule accumulator: each signal
// is a named predicate with a weight and a hit cap, so the rule set is data
// rather than control flow and verdict reasons fall out mechanically.
package classifier

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/mikey/newsletter-rag/internal/core"
)

// Default thresholds for the acceptance rule
const (
	DefaultNewsletterThreshold  = 0.4
	DefaultPromotionalThreshold = 0.5
	DefaultQualityThreshold     = 0.3
)

// promoBodyPrefix bounds how much body text the promotional content rules
// scan, in bytes
const promoBodyPrefix = 2000

// Config holds the classifier thresholds and pattern data
type Config struct {
	NewsletterThreshold  float64
	PromotionalThreshold float64
	QualityThreshold     float64
	Lists                Lists
}

// DefaultConfig returns a Config with default thresholds and the built-in
// pattern set
func DefaultConfig() Config {
	return Config{
		NewsletterThreshold:  DefaultNewsletterThreshold,
		PromotionalThreshold: DefaultPromotionalThreshold,
		QualityThreshold:     DefaultQualityThreshold,
		Lists:                DefaultLists(),
	}
}

// features are the normalized message fields the rules read. Absent fields
// stay zero-valued so malformed messages simply contribute no signal.
type features struct {
	senderEmail    string
	senderName     string
	domain         string
	subject        string
	body           string
	wordCount      int
	hasUnsubscribe bool
}

// rule is one scoring signal. Contribution is weight * min(hits, maxHits);
// a non-empty reason is recorded whenever the rule fires.
type rule struct {
	name    string
	weight  float64
	maxHits int
	match   func(f *features) (hits int, reason string)
}

// Classifier scores messages against its rule tables. It is stateless after
// construction and safe for concurrent use.
type Classifier struct {
	cfg Config

	blockedDomains   map[string]struct{}
	newsletterRules  []rule
	promotionalRules []rule
	qualityRules     []rule
}

// New creates a classifier from the given configuration. Pattern compilation
// errors are surfaced here rather than at classification time.
func New(cfg Config) (*Classifier, error) {
	c := &Classifier{
		cfg:            cfg,
		blockedDomains: domainSet(cfg.Lists.BlockedDomains),
	}

	senderNameRes, err := compilePatterns(cfg.Lists.SenderNamePatterns)
	if err != nil {
		return nil, fmt.Errorf("sender name patterns: %w", err)
	}
	subjectRes, err := compilePatterns(cfg.Lists.SubjectPatterns)
	if err != nil {
		return nil, fmt.Errorf("subject patterns: %w", err)
	}
	promoSubjectRes, err := compilePatterns(cfg.Lists.PromotionalSubjectPatterns)
	if err != nil {
		return nil, fmt.Errorf("promotional subject patterns: %w", err)
	}
	promoContentRes, err := compilePatterns(cfg.Lists.PromotionalContentPatterns)
	if err != nil {
		return nil, fmt.Errorf("promotional content patterns: %w", err)
	}
	qualitySubjectRes, err := compilePatterns(cfg.Lists.QualitySubjectPatterns)
	if err != nil {
		return nil, fmt.Errorf("quality subject patterns: %w", err)
	}
	priceRe, err := regexp.Compile(`\$\d+|%\s*off|\bsale\b|\bdeal\b`)
	if err != nil {
		return nil, fmt.Errorf("price pattern: %w", err)
	}

	newsletterDomains := domainSet(cfg.Lists.NewsletterDomains)
	qualityDomains := domainSet(cfg.Lists.QualityDomains)
	senderTokens := tokenSet(cfg.Lists.PromotionalSenderTokens)

	c.newsletterRules = []rule{
		{
			name: "unsubscribe-header", weight: 0.35, maxHits: 1,
			match: func(f *features) (int, string) {
				if !f.hasUnsubscribe {
					return 0, ""
				}
				return 1, "Has unsubscribe header"
			},
		},
		{
			name: "platform-domain", weight: 0.35, maxHits: 1,
			match: func(f *features) (int, string) {
				if _, ok := newsletterDomains[f.domain]; !ok {
					return 0, ""
				}
				return 1, "Newsletter platform: " + f.domain
			},
		},
		{
			name: "sender-name", weight: 0.20, maxHits: 1,
			match: func(f *features) (int, string) {
				if countMatches(senderNameRes, f.senderName) == 0 {
					return 0, ""
				}
				return 1, "Newsletter sender pattern"
			},
		},
		{
			name: "subject-cadence", weight: 0.25, maxHits: 1,
			match: func(f *features) (int, string) {
				if countMatches(subjectRes, f.subject) == 0 {
					return 0, ""
				}
				return 1, "Newsletter subject pattern"
			},
		},
	}

	c.promotionalRules = []rule{
		{
			name: "sender-token", weight: 0.30, maxHits: 1,
			match: func(f *features) (int, string) {
				for _, part := range splitSenderParts(f.senderEmail) {
					if _, ok := senderTokens[part]; ok {
						return 1, "Promotional sender: " + part
					}
				}
				return 0, ""
			},
		},
		{
			name: "subject-patterns", weight: 0.15, maxHits: 3,
			match: func(f *features) (int, string) {
				n := countMatches(promoSubjectRes, f.subject)
				if n == 0 {
					return 0, ""
				}
				return n, fmt.Sprintf("Promotional subject (%d patterns)", n)
			},
		},
		{
			name: "content-patterns", weight: 0.10, maxHits: 4,
			match: func(f *features) (int, string) {
				n := countMatches(promoContentRes, f.body)
				if n == 0 {
					return 0, ""
				}
				return n, "Promotional content"
			},
		},
		{
			name: "price-in-subject", weight: 0.25, maxHits: 1,
			match: func(f *features) (int, string) {
				if !priceRe.MatchString(f.subject) {
					return 0, ""
				}
				return 1, "Price or discount in subject"
			},
		},
	}

	c.qualityRules = []rule{
		{
			name: "publisher-domain", weight: 0.40, maxHits: 1,
			match: func(f *features) (int, string) {
				if _, ok := qualityDomains[f.domain]; !ok {
					return 0, ""
				}
				return 1, "Quality newsletter platform"
			},
		},
		{
			name: "subject-vocabulary", weight: 0.15, maxHits: 2,
			match: func(f *features) (int, string) {
				n := countMatches(qualitySubjectRes, f.subject)
				if n == 0 {
					return 0, ""
				}
				return n, "Quality subject"
			},
		},
		{
			name: "substantial-body", weight: 0.15, maxHits: 1,
			match: func(f *features) (int, string) {
				if f.wordCount <= 500 {
					return 0, ""
				}
				return 1, "Substantial content"
			},
		},
		{
			name: "decent-body", weight: 0.10, maxHits: 1,
			match: func(f *features) (int, string) {
				if f.wordCount <= 200 || f.wordCount > 500 {
					return 0, ""
				}
				return 1, "Decent content length"
			},
		},
		{
			// penalty, no reason recorded
			name: "thin-body", weight: -0.20, maxHits: 1,
			match: func(f *features) (int, string) {
				if f.wordCount >= 100 {
					return 0, ""
				}
				return 1, ""
			},
		},
	}

	return c, nil
}

// Classify scores a message and applies the acceptance rule. All three
// sub-scores are always computed so the reasons are complete even when an
// earlier score already disqualifies the message. Internal failures degrade
// to a maximally conservative verdict instead of aborting the batch.
func (c *Classifier) Classify(msg *core.Message) (verdict core.Verdict) {
	defer func() {
		if r := recover(); r != nil {
			verdict = core.Verdict{
				IsNewsletter:     false,
				IsPromotional:    true,
				IsWorthKeeping:   false,
				NewsletterScore:  0.0,
				PromotionalScore: 1.0,
				QualityScore:     0.0,
				Reasons:          []string{fmt.Sprintf("Error: %v", r)},
			}
		}
	}()

	f := newFeatures(msg)

	newsletterScore, nlReasons := runRules(c.newsletterRules, f)
	newsletterScore = clamp(newsletterScore, 0.0, 1.0)

	promotionalScore, promoReasons := c.scorePromotional(f)
	qualityScore, qualityReasons := runRules(c.qualityRules, f)
	qualityScore = clamp(qualityScore, 0.0, 1.0)

	reasons := make([]string, 0, len(nlReasons)+len(promoReasons)+len(qualityReasons))
	reasons = append(reasons, nlReasons...)
	reasons = append(reasons, promoReasons...)
	reasons = append(reasons, qualityReasons...)

	isNewsletter := newsletterScore >= c.cfg.NewsletterThreshold
	isPromotional := promotionalScore >= c.cfg.PromotionalThreshold

	return core.Verdict{
		IsNewsletter:     isNewsletter,
		IsPromotional:    isPromotional,
		IsWorthKeeping:   isNewsletter && !isPromotional && qualityScore >= c.cfg.QualityThreshold,
		NewsletterScore:  newsletterScore,
		PromotionalScore: promotionalScore,
		QualityScore:     qualityScore,
		Reasons:          reasons,
	}
}

// scorePromotional applies the block-list override before the additive
// rules. The override is a pre-check returning immediately, not a weighted
// term, so it cannot be double-counted.
func (c *Classifier) scorePromotional(f *features) (float64, []string) {
	if _, ok := c.blockedDomains[f.domain]; ok {
		return 1.0, []string{"Blocked sender domain"}
	}
	score, reasons := runRules(c.promotionalRules, f)
	return clamp(score, 0.0, 1.0), reasons
}

// Filter classifies a batch and returns only accepted messages, sorted by
// quality score descending. With qualityOnly false, any detected newsletter
// is kept regardless of quality.
func (c *Classifier) Filter(msgs []core.Message, qualityOnly bool) []core.ScoredMessage {
	results := make([]core.ScoredMessage, 0, len(msgs))
	for i := range msgs {
		verdict := c.Classify(&msgs[i])
		if qualityOnly {
			if !verdict.IsWorthKeeping {
				continue
			}
		} else if !verdict.IsNewsletter {
			continue
		}
		results = append(results, core.ScoredMessage{Message: msgs[i], Verdict: verdict})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Verdict.QualityScore > results[j].Verdict.QualityScore
	})
	return results
}

// runRules accumulates weighted contributions from every rule that fires
func runRules(rules []rule, f *features) (float64, []string) {
	score := 0.0
	var reasons []string
	for _, r := range rules {
		hits, reason := r.match(f)
		if hits <= 0 {
			continue
		}
		if r.maxHits > 0 && hits > r.maxHits {
			hits = r.maxHits
		}
		score += r.weight * float64(hits)
		if reason != "" {
			reasons = append(reasons, reason)
		}
	}
	return score, reasons
}

func newFeatures(msg *core.Message) *features {
	senderEmail := strings.ToLower(strings.TrimSpace(msg.SenderEmail))
	body := strings.ToLower(msg.BodyText)
	if len(body) > promoBodyPrefix {
		body = body[:promoBodyPrefix]
	}
	return &features{
		senderEmail:    senderEmail,
		senderName:     extractSenderName(msg.Sender),
		domain:         extractDomain(senderEmail),
		subject:        strings.ToLower(msg.Subject),
		body:           body,
		wordCount:      len(strings.Fields(msg.BodyText)),
		hasUnsubscribe: hasUnsubscribeHeader(msg.Headers),
	}
}

// hasUnsubscribeHeader checks for a List-Unsubscribe header. Header names
// are matched case-insensitively; nil or empty header sets are fine.
func hasUnsubscribeHeader(headers []core.Header) bool {
	for _, h := range headers {
		if strings.EqualFold(strings.TrimSpace(h.Name), "List-Unsubscribe") {
			return true
		}
	}
	return false
}

// extractDomain returns the lowercased domain of an email address, or ""
// when the address has no @.
func extractDomain(email string) string {
	idx := strings.LastIndex(email, "@")
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(strings.ToLower(email[idx+1:]), ">"))
}

// extractSenderName returns the lowercased display-name part of a sender
// field such as `Morning Brew <crew@morningbrew.com>`.
func extractSenderName(sender string) string {
	if idx := strings.Index(sender, "<"); idx >= 0 {
		sender = sender[:idx]
	}
	return strings.ToLower(strings.TrimSpace(sender))
}

// splitSenderParts splits an address into its local-part and domain tokens
func splitSenderParts(email string) []string {
	return strings.FieldsFunc(email, func(r rune) bool {
		switch r {
		case '@', '.', '-', '_':
			return true
		}
		return false
	})
}

// countMatches returns how many distinct patterns match the text
func countMatches(patterns []*regexp.Regexp, text string) int {
	if text == "" {
		return 0
	}
	n := 0
	for _, re := range patterns {
		if re.MatchString(text) {
			n++
		}
	}
	return n
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", p, err)
		}
		res = append(res, re)
	}
	return res, nil
}

func domainSet(domains []string) map[string]struct{} {
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		set[strings.ToLower(strings.TrimSpace(d))] = struct{}{}
	}
	return set
}

func tokenSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	return set
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
