package payment

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestGetInstructions(t *testing.T) {
	t.Run("ReturnsTemplateForKnownMethod", func(t *testing.T) {
		instructions := GetInstructions(MethodGCash)
		assert.NotEmpty(t, instructions)

		found := false
		for _, instr := range instructions {
			if strings.Contains(instr, "{{amount}}") {
				found = true
				break
			}
		}
		assert.True(t, found, "GCash steps should mention the amount")
	})

	t.Run("DefaultForUnknown", func(t *testing.T) {
		instructions := GetInstructions("bank_transfer")
		assert.Equal(t, []string{"Follow the payment instructions shown on this page"}, instructions)
	})
}

func TestInjectVariables(t *testing.T) {
	t.Run("ReplacesPlaceholders", func(t *testing.T) {
		template := []string{"Pay {{amount}} for order {{order}}."}
		vars := InstructionVars{
			"amount": "₱1,150.00",
			"order":  "ORD-1",
		}

		assert.Equal(t, []string{"Pay ₱1,150.00 for order ORD-1."}, InjectVariables(template, vars))
	})

	t.Run("LeavesUnknownPlaceholders", func(t *testing.T) {
		result := InjectVariables([]string{"Pay {{amount}}"}, InstructionVars{})
		assert.Equal(t, "Pay {{amount}}", result[0])
	})
}

func TestInstructions(t *testing.T) {
	steps := Instructions(MethodCash, decimal.NewFromFloat(1250.5))
	assert.Contains(t, steps, "Prepare ₱1,250.50 in cash for the rider")
	for _, s := range steps {
		assert.NotContains(t, s, "{{")
	}
}

func TestNewPublicConfig(t *testing.T) {
	cfg := NewPublicConfig("pk_live_1", "live")
	assert.Equal(t, "pk_live_1", cfg.PublicKey)
	assert.Equal(t, "live", cfg.Mode)
	assert.Equal(t, OnlineMethods, cfg.Methods)
	for _, m := range cfg.Methods {
		assert.True(t, m.Online())
	}

	cfg.Methods[0] = MethodCash
	assert.Equal(t, MethodGCash, OnlineMethods[0])
	assert.Equal(t, "test", NewPublicConfig("", "").Mode)
}
