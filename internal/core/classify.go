package core

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	ExpenseDomain   Domain = "expense"
	IncomeDomain    Domain = "income"
	StatementDomain Domain = "statement"
)

// StatementIncomeLabel is the source given to every income transaction
// committed from an uploaded statement.
const StatementIncomeLabel = "Salary"

type (
	// Domain selects which rule table a text is classified against.
	Domain string

	// Rule maps any text matching Pattern to Label.
	Rule struct {
		Label   string
		Pattern *regexp.Regexp
	}

	// RuleSet is a priority-ordered rule table. The first matching rule wins;
	// Default is returned when nothing matches.
	RuleSet struct {
		Rules   []Rule
		Default string
	}

	// RuleBook holds one RuleSet per domain.
	RuleBook struct {
		Expense   RuleSet
		Income    RuleSet
		Statement RuleSet
	}

	Classifier struct {
		book RuleBook
	}
)

// ParseDomain accepts "expense", "income" or "statement".
func ParseDomain(s string) (Domain, error) {
	switch d := Domain(strings.ToLower(strings.TrimSpace(s))); d {
	case ExpenseDomain, IncomeDomain, StatementDomain:
		return d, nil
	default:
		return "", fmt.Errorf("unknown classification domain %q", s)
	}
}

// DomainOf returns the manual-entry domain for a record kind.
func DomainOf(k Kind) Domain {
	if k == Income {
		return IncomeDomain
	}
	return ExpenseDomain
}

// NewRule compiles pattern; it is matched against lower-cased text.
func NewRule(label, pattern string) (Rule, error) {
	if strings.TrimSpace(label) == "" {
		return Rule{}, ErrEmptyLabel
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, fmt.Errorf("compile rule %q: %w", label, err)
	}
	return Rule{Label: label, Pattern: re}, nil
}

func mustRule(label, pattern string) Rule {
	r, err := NewRule(label, pattern)
	if err != nil {
		panic(err)
	}
	return r
}

// Match returns the label of the first rule matching text.
func (rs RuleSet) Match(text string) string {
	lower := strings.ToLower(text)
	for _, r := range rs.Rules {
		if r.Pattern != nil && r.Pattern.MatchString(lower) {
			return r.Label
		}
	}
	return rs.Default
}

// Labels lists the rule labels in priority order followed by the default.
func (rs RuleSet) Labels() []string {
	out := make([]string, 0, len(rs.Rules)+1)
	seen := make(map[string]bool, len(rs.Rules)+1)
	for _, r := range rs.Rules {
		if !seen[r.Label] {
			seen[r.Label] = true
			out = append(out, r.Label)
		}
	}
	if rs.Default != "" && !seen[rs.Default] {
		out = append(out, rs.Default)
	}
	return out
}

// ExpenseRules is the default expense table. Order matters: a text
// mentioning both groceries and rent is classified as Groceries.
func ExpenseRules() RuleSet {
	return RuleSet{
		Rules: []Rule{
			mustRule("Groceries", `grocery|groceries|supermarket|mart`),
			mustRule("Food", `restaurant|food|cafe|dine`),
			mustRule("Travel", `uber|ola|travel|taxi|flight|train|bus`),
			mustRule("Rent", `rent`),
			mustRule("Shopping", `shopping|store|mall`),
			mustRule("Medical", `medical|pharma|hospital|clinic`),
			mustRule("Bills", `bill|electricity|water|utility|internet`),
			mustRule("Entertainment", `movie|entertainment|netflix|spotify|show`),
		},
		Default: DefaultExpenseLabel,
	}
}

// IncomeRules is the default income source table.
func IncomeRules() RuleSet {
	return RuleSet{
		Rules: []Rule{
			mustRule("Salary", `salary|payslip|ctc|net pay`),
			mustRule("Freelancing", `freelance|contract|gig`),
			mustRule("Investments Return", `dividend|interest|roi|return|capital gain`),
			mustRule("Business", `business|invoice|sales|revenue`),
			mustRule("Gift", `gift|present|donation`),
		},
		Default: DefaultIncomeLabel,
	}
}

// StatementRules guesses expense categories for transactions committed from
// an uploaded bank statement, keyed on merchant names in the description.
func StatementRules() RuleSet {
	return RuleSet{
		Rules: []Rule{
			mustRule("Food", `zomato|swiggy`),
			mustRule("Shopping", `amazon|flipkart`),
			mustRule("Cash", `atm|withdrawal`),
			mustRule("Housing", `rent`),
			mustRule("Utilities", `electricity|bill`),
		},
		Default: DefaultExpenseLabel,
	}
}

// DefaultRuleBook returns fresh copies of the built-in tables.
func DefaultRuleBook() RuleBook {
	return RuleBook{
		Expense:   ExpenseRules(),
		Income:    IncomeRules(),
		Statement: StatementRules(),
	}
}

func NewClassifier(book RuleBook) *Classifier {
	return &Classifier{book: book}
}

// RuleSet returns the table used for domain.
func (c *Classifier) RuleSet(domain Domain) RuleSet {
	switch domain {
	case IncomeDomain:
		return c.book.Income
	case StatementDomain:
		return c.book.Statement
	default:
		return c.book.Expense
	}
}

// Classify lower-cases text and returns the label of the first matching rule
// of the domain's table, or the table default.
func (c *Classifier) Classify(text string, domain Domain) string {
	return c.RuleSet(domain).Match(text)
}

// StatementLabel picks the label for a transaction committed from a statement.
func (c *Classifier) StatementLabel(description string, kind Kind) string {
	if kind == Income {
		return StatementIncomeLabel
	}
	return c.Classify(description, StatementDomain)
}

var defaultClassifier = NewClassifier(DefaultRuleBook())

// Classify uses the built-in rule tables.
func Classify(text string, domain Domain) string {
	return defaultClassifier.Classify(text, domain)
}
