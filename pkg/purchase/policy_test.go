package purchase

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPolicyRouting(t *testing.T) {
	policy := DefaultPolicy()

	assert.Equal(t, "401", policy.CounterAccount(false, true))
	assert.Equal(t, "408", policy.CounterAccount(false, false))
	assert.Equal(t, "4091", policy.CounterAccount(true, true))
	// Advance takes precedence over a missing invoice.
	assert.Equal(t, "4091", policy.CounterAccount(true, false))

	assert.Equal(t, "44566", policy.VATAccount("601"))
	assert.Equal(t, "44562", policy.VATAccount("215"))
	assert.Equal(t, "44566", policy.VATAccount("44566"))
}

func TestLoadPolicyOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.yaml")
	content := `
bank_account: "5121"
vat_rules:
  - prefix: "2"
    account: "44571"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	policy, err := LoadPolicy(path)
	require.NoError(t, err)

	// Overridden fields take effect, the rest keep their defaults.
	assert.Equal(t, "5121", policy.BankAccount)
	assert.Equal(t, "44571", policy.VATAccount("215"))
	assert.Equal(t, "401", policy.PayableAccount)
	assert.Equal(t, "44566", policy.VATAccount("601"))
}

func TestLoadPolicyMissingFile(t *testing.T) {
	_, err := LoadPolicy(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestDeriveAmounts(t *testing.T) {
	tests := []struct {
		ttc     float64
		rate    float64
		wantHT  float64
		wantVAT float64
	}{
		{120, 20, 100, 20},
		{100, 0, 100, 0},
		{55, 5.5, 52.13, 2.87},
		{107.5, 10, 97.73, 9.77},
		{0, 20, 0, 0},
	}
	for _, tt := range tests {
		ht, vat := DeriveAmounts(tt.ttc, tt.rate)
		assert.Equal(t, tt.wantHT, ht, "HT of %.2f at %.1f%%", tt.ttc, tt.rate)
		assert.Equal(t, tt.wantVAT, vat, "VAT of %.2f at %.1f%%", tt.ttc, tt.rate)
	}
}
