package config

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"finlens/internal/core"
)

type (
	// ruleFile maps a domain name to its table.
	ruleFile map[string]*ruleSetFile

	ruleSetFile struct {
		Default string      `yaml:"default"`
		Rules   []ruleEntry `yaml:"rules"`
	}

	ruleEntry struct {
		Label   string `yaml:"label"`
		Pattern string `yaml:"pattern"`
	}
)

// LoadRuleBook returns the built-in classifier tables, with any domain
// present in the YAML file at path replacing its built-in table. An empty
// path yields the built-in tables.
func LoadRuleBook(path string) (core.RuleBook, error) {
	book := core.DefaultRuleBook()
	if strings.TrimSpace(path) == "" {
		return book, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return book, fmt.Errorf("read classifier rules: %w", err)
	}
	return ParseRuleBook(data)
}

// ParseRuleBook decodes a rule file. File order is rule order. Top-level
// keys must name a classification domain.
func ParseRuleBook(data []byte) (core.RuleBook, error) {
	book := core.DefaultRuleBook()

	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return book, fmt.Errorf("decode classifier rules: %w", err)
	}

	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)

	var errs []error
	for _, name := range names {
		domain, err := core.ParseDomain(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		src := f[name]
		if src == nil {
			continue
		}
		dst := tableOf(&book, domain)
		rs, err := src.toRuleSet(dst.Default)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", domain, err))
			continue
		}
		*dst = rs
	}

	if len(errs) > 0 {
		return core.DefaultRuleBook(), errors.Join(errs...)
	}
	return book, nil
}

func tableOf(book *core.RuleBook, domain core.Domain) *core.RuleSet {
	switch domain {
	case core.IncomeDomain:
		return &book.Income
	case core.StatementDomain:
		return &book.Statement
	default:
		return &book.Expense
	}
}

func (f *ruleSetFile) toRuleSet(fallback string) (core.RuleSet, error) {
	rs := core.RuleSet{Default: strings.TrimSpace(f.Default)}
	if rs.Default == "" {
		rs.Default = fallback
	}
	for i, e := range f.Rules {
		rule, err := core.NewRule(e.Label, e.Pattern)
		if err != nil {
			return core.RuleSet{}, fmt.Errorf("rule %d: %w", i+1, err)
		}
		rs.Rules = append(rs.Rules, rule)
	}
	return rs, nil
}
