package posting

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/stmtimport/internal/model"
)

// Rule fields.
const (
	FieldText     = "text"
	FieldCurrency = "currency"
)

// Rule operators.
const (
	OpContains = "contains"
	OpEquals   = "equals"
	OpPrefix   = "prefix"
)

// Rule suggests a counter account for transactions whose field matches
// keyword. Matching ignores case.
type Rule struct {
	Field      string `yaml:"field"`
	Op         string `yaml:"op"`
	Keyword    string `yaml:"keyword"`
	Account    string `yaml:"account"`
	VATCode    string `yaml:"vat_code,omitempty"`
	VATAccount string `yaml:"vat_account,omitempty"`
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads posting rules from a YAML file. A missing file yields no
// rules. Empty field and op default to text and contains.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}

	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	for i := range f.Rules {
		if f.Rules[i].Field == "" {
			f.Rules[i].Field = FieldText
		}
		if f.Rules[i].Op == "" {
			f.Rules[i].Op = OpContains
		}
	}
	return f.Rules, nil
}

// SaveRules writes rules to path.
func SaveRules(path string, rules []Rule) error {
	if rules == nil {
		rules = []Rule{}
	}
	data, err := yaml.Marshal(ruleFile{Rules: rules})
	if err != nil {
		return fmt.Errorf("marshaling rules: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}
	return nil
}

// Match returns the first rule that matches tx.
func Match(rules []Rule, tx model.CanonicalTransaction) (Rule, bool) {
	for _, r := range rules {
		if r.matches(tx) {
			return r, true
		}
	}
	return Rule{}, false
}

func (r Rule) matches(tx model.CanonicalTransaction) bool {
	kw := strings.ToLower(strings.TrimSpace(r.Keyword))
	if kw == "" {
		return false
	}

	var v string
	switch r.Field {
	case FieldText, "":
		v = tx.Label()
	case FieldCurrency:
		v = tx.Currency
	default:
		return false
	}
	v = strings.ToLower(strings.TrimSpace(v))

	switch r.Op {
	case OpContains, "":
		return strings.Contains(v, kw)
	case OpEquals:
		return v == kw
	case OpPrefix:
		return strings.HasPrefix(v, kw)
	}
	return false
}
