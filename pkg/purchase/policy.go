package purchase

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// VATRule routes the VAT side of a purchase entry by expense account
// code prefix.
type VATRule struct {
	Prefix  string `yaml:"prefix"`
	Account string `yaml:"account"`
}

// PostingPolicy decides which accounts a purchase entry posts to. The
// defaults encode the French chart-of-accounts conventions; installations
// with a different chart override them from a YAML file.
type PostingPolicy struct {
	// Counter-account credited opposite the expense+VAT debits.
	PayableAccount    string `yaml:"payable_account"`    // invoice received
	UnreceivedAccount string `yaml:"unreceived_account"` // invoice not yet received
	AdvanceAccount    string `yaml:"advance_account"`    // advance payment

	// Cash/bank account credited on payment.
	BankAccount string `yaml:"bank_account"`

	// VAT routing: first matching prefix wins, else the default.
	VATRules          []VATRule `yaml:"vat_rules"`
	DefaultVATAccount string    `yaml:"default_vat_account"`
}

// DefaultPolicy returns the standard French routing: 401 trade payables,
// 408 invoices not received, 4091 supplier advances, 512 bank, 44562 VAT
// on fixed assets (class 2 accounts) and 44566 VAT on everything else.
func DefaultPolicy() PostingPolicy {
	return PostingPolicy{
		PayableAccount:    "401",
		UnreceivedAccount: "408",
		AdvanceAccount:    "4091",
		BankAccount:       "512",
		VATRules: []VATRule{
			{Prefix: "2", Account: "44562"},
		},
		DefaultVATAccount: "44566",
	}
}

// LoadPolicy reads a posting policy from a YAML file. Missing fields
// fall back to the defaults, so a file can override a single account.
func LoadPolicy(path string) (PostingPolicy, error) {
	policy := DefaultPolicy()

	data, err := os.ReadFile(path)
	if err != nil {
		return policy, fmt.Errorf("failed to read policy file: %w", err)
	}

	var override PostingPolicy
	if err := yaml.Unmarshal(data, &override); err != nil {
		return policy, fmt.Errorf("failed to parse policy file: %w", err)
	}

	if override.PayableAccount != "" {
		policy.PayableAccount = override.PayableAccount
	}
	if override.UnreceivedAccount != "" {
		policy.UnreceivedAccount = override.UnreceivedAccount
	}
	if override.AdvanceAccount != "" {
		policy.AdvanceAccount = override.AdvanceAccount
	}
	if override.BankAccount != "" {
		policy.BankAccount = override.BankAccount
	}
	if len(override.VATRules) > 0 {
		policy.VATRules = override.VATRules
	}
	if override.DefaultVATAccount != "" {
		policy.DefaultVATAccount = override.DefaultVATAccount
	}

	return policy, nil
}

// CounterAccount returns the account credited opposite a purchase:
// advances take precedence over not-yet-received invoices.
func (p PostingPolicy) CounterAccount(isAdvance, isInvoiceReceived bool) string {
	switch {
	case isAdvance:
		return p.AdvanceAccount
	case !isInvoiceReceived:
		return p.UnreceivedAccount
	default:
		return p.PayableAccount
	}
}

// VATAccount returns the VAT account for an expense account code.
func (p PostingPolicy) VATAccount(expenseCode string) string {
	for _, rule := range p.VATRules {
		if strings.HasPrefix(expenseCode, rule.Prefix) {
			return rule.Account
		}
	}
	return p.DefaultVATAccount
}
