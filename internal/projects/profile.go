package projects

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"
	"time"
)

// ClientSize is the coarse size band of the client company.
type ClientSize string

// Valid client sizes.
const (
	SizeStartup    ClientSize = "startup"
	SizeSmall      ClientSize = "pequena"
	SizeMedium     ClientSize = "media"
	SizeLarge      ClientSize = "grande"
	SizeEnterprise ClientSize = "enterprise"
)

var clientSizes = []ClientSize{SizeStartup, SizeSmall, SizeMedium, SizeLarge, SizeEnterprise}

// ParseClientSize validates s as a client size. An empty value is allowed.
func ParseClientSize(s string) (ClientSize, error) {
	v := ClientSize(strings.ToLower(strings.TrimSpace(s)))
	if v == "" || slices.Contains(clientSizes, v) {
		return v, nil
	}
	return "", fmt.Errorf("%w: unknown size %q", ErrValidation, s)
}

// DISCProfile is the behavioral profile used to tune narrative tone.
type DISCProfile string

// DISC profiles.
const (
	DISCDominance  DISCProfile = "D"
	DISCInfluence  DISCProfile = "I"
	DISCSteadiness DISCProfile = "S"
	DISCCompliance DISCProfile = "C"
)

// ParseDISCProfile validates s as a DISC letter. An empty value is allowed.
func ParseDISCProfile(s string) (DISCProfile, error) {
	v := DISCProfile(strings.ToUpper(strings.TrimSpace(s)))
	switch v {
	case "", DISCDominance, DISCInfluence, DISCSteadiness, DISCCompliance:
		return v, nil
	}
	return "", fmt.Errorf("%w: unknown disc_profile %q", ErrValidation, s)
}

var discKeywords = []struct {
	profile  DISCProfile
	keywords []string
}{
	{DISCDominance, []string{"tecnologia", "software", "technology"}},
	{DISCInfluence, []string{"marketing", "vendas", "sales"}},
	{DISCSteadiness, []string{"saúde", "saude", "educação", "educacao", "health", "education"}},
}

// InferDISC derives a DISC profile from industry keywords, falling back to C.
func InferDISC(industry string) DISCProfile {
	lower := strings.ToLower(industry)
	for _, rule := range discKeywords {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.profile
			}
		}
	}
	return DISCCompliance
}

// Enrichment holds externally sourced firmographic facts.
type Enrichment struct {
	Facts      map[string]string `json:"facts"`
	Sources    []string          `json:"sources"`
	EnrichedAt *time.Time        `json:"enriched_at"`
}

// Empty reports whether no enrichment has been recorded.
func (e Enrichment) Empty() bool {
	return e.EnrichedAt == nil && len(e.Facts) == 0
}

// ClientProfile describes the prospect a project is pitched to.
type ClientProfile struct {
	CompanyName    string      `json:"company_name"`
	Industry       string      `json:"industry"`
	Size           ClientSize  `json:"size,omitempty"`
	PainPoints     string      `json:"pain_points"`
	Goals          string      `json:"goals"`
	Website        string      `json:"website"`
	DISCProfile    DISCProfile `json:"disc_profile"`
	DecisionMakers []string    `json:"decision_makers"`
	Enrichment     Enrichment  `json:"enrichment"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// ProfileCommand carries the client-supplied profile fields.
type ProfileCommand struct {
	CompanyName    string   `json:"company_name"`
	Industry       string   `json:"industry"`
	Size           string   `json:"size"`
	PainPoints     string   `json:"pain_points"`
	Goals          string   `json:"goals"`
	Website        string   `json:"website"`
	DISCProfile    string   `json:"disc_profile"`
	DecisionMakers []string `json:"decision_makers"`
}

// NewClientProfile validates cmd and builds a profile with empty enrichment.
func NewClientProfile(cmd ProfileCommand, now time.Time) (ClientProfile, error) {
	company := strings.TrimSpace(cmd.CompanyName)
	if company == "" {
		return ClientProfile{}, fmt.Errorf("%w: company_name required", ErrValidation)
	}

	size, err := ParseClientSize(cmd.Size)
	if err != nil {
		return ClientProfile{}, err
	}

	disc, err := ParseDISCProfile(cmd.DISCProfile)
	if err != nil {
		return ClientProfile{}, err
	}
	industry := strings.TrimSpace(cmd.Industry)
	if disc == "" {
		disc = InferDISC(industry)
	}

	website, err := normalizeWebsite(cmd.Website)
	if err != nil {
		return ClientProfile{}, err
	}

	makers := make([]string, 0, len(cmd.DecisionMakers))
	for _, m := range cmd.DecisionMakers {
		if m = strings.TrimSpace(m); m != "" {
			makers = append(makers, m)
		}
	}

	return ClientProfile{
		CompanyName:    company,
		Industry:       industry,
		Size:           size,
		PainPoints:     strings.TrimSpace(cmd.PainPoints),
		Goals:          strings.TrimSpace(cmd.Goals),
		Website:        website,
		DISCProfile:    disc,
		DecisionMakers: makers,
		Enrichment:     Enrichment{Facts: map[string]string{}},
		UpdatedAt:      now,
	}, nil
}

func normalizeWebsite(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("%w: invalid website %q", ErrValidation, raw)
	}
	return u.String(), nil
}

func (p ClientProfile) clone() ClientProfile {
	p.DecisionMakers = slices.Clone(p.DecisionMakers)
	p.Enrichment.Facts = maps.Clone(p.Enrichment.Facts)
	p.Enrichment.Sources = slices.Clone(p.Enrichment.Sources)
	if p.Enrichment.EnrichedAt != nil {
		t := *p.Enrichment.EnrichedAt
		p.Enrichment.EnrichedAt = &t
	}
	return p
}
