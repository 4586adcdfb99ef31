package adminconfig

import (
	"regexp"
	"strings"
	"time"

	"github.com/nia/backend/internal/domain/shared"
)

// Kind identifies which AI pipeline a prompt template drives
type Kind string

const (
	KindExtraction     Kind = "extraction"     // Transcript -> structured lead fields
	KindRecommendation Kind = "recommendation" // Lead context -> next-best-action list
	KindQuestions      Kind = "questions"      // Lead context -> meeting preparation questions
	KindIntelligence   Kind = "intelligence"   // Meeting notes -> summary + action items
)

var placeholderPattern = regexp.MustCompile(`\{\{([a-z_]+)\}\}`)

// PromptTemplate is an admin-managed prompt with {{placeholder}} slots.
// At most one template per kind is active; the AI services fall back to a
// built-in default when none is.
type PromptTemplate struct {
	shared.BaseAggregateRoot
	Name   string
	Kind   Kind
	Body   string
	Active bool
}

// TableName returns the table name for GORM
func (PromptTemplate) TableName() string {
	return "prompt_templates"
}

// NewPromptTemplate creates an inactive template
func NewPromptTemplate(name string, kind Kind, body string) (*PromptTemplate, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_NAME", "Template name must be 1-100 characters")
	}
	if err := validateKind(kind); err != nil {
		return nil, err
	}
	if strings.TrimSpace(body) == "" {
		return nil, shared.NewDomainError("INVALID_BODY", "Template body cannot be empty")
	}
	return &PromptTemplate{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Kind:              kind,
		Body:              body,
	}, nil
}

// UpdateBody replaces the template body
func (t *PromptTemplate) UpdateBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return shared.NewDomainError("INVALID_BODY", "Template body cannot be empty")
	}
	t.Body = body
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
	return nil
}

// Activate marks the template active. The service layer deactivates the
// previous active template of the same kind.
func (t *PromptTemplate) Activate() {
	t.Active = true
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// Deactivate marks the template inactive
func (t *PromptTemplate) Deactivate() {
	t.Active = false
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// Placeholders lists the {{placeholder}} names the body references
func (t *PromptTemplate) Placeholders() []string {
	matches := placeholderPattern.FindAllStringSubmatch(t.Body, -1)
	seen := make(map[string]bool, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Render substitutes values into the body's placeholders. Unknown
// placeholders are left in place so a bad template is visible in preview.
func (t *PromptTemplate) Render(values map[string]string) string {
	return RenderTemplate(t.Body, values)
}

// RenderTemplate substitutes values into any template body
func RenderTemplate(body string, values map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(body, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		if v, ok := values[name]; ok {
			return v
		}
		return match
	})
}

// ParseKind validates a raw kind string from the API
func ParseKind(raw string) (Kind, error) {
	kind := Kind(raw)
	if err := validateKind(kind); err != nil {
		return "", err
	}
	return kind, nil
}

func validateKind(kind Kind) error {
	switch kind {
	case KindExtraction, KindRecommendation, KindQuestions, KindIntelligence:
		return nil
	}
	return shared.NewDomainError("INVALID_KIND", "Unknown template kind")
}
