package payment

import (
	"strings"

	"ramyeon-storefront/internal/money"

	"github.com/shopspring/decimal"
)

var InstructionMap = map[Method][]string{
	MethodCash: {
		"Your order will be delivered to the address you provided",
		"Prepare {{amount}} in cash for the rider",
		"Exact change is appreciated",
		"Keep the receipt the rider hands you",
	},

	// ========================
	// E-WALLET
	// ========================
	MethodGCash: {
		"You will be redirected to GCash to authorize the payment",
		"Log in with your GCash number and MPIN",
		"Confirm the payment of {{amount}}",
		"Wait to be sent back to the store to see your order status",
	},

	MethodMaya: {
		"You will be redirected to Maya to authorize the payment",
		"Log in to your Maya account",
		"Confirm the payment of {{amount}}",
		"If asked to choose a method again, pick Maya",
	},

	MethodGrabPay: {
		"You will be redirected to GrabPay to authorize the payment",
		"Make sure your GrabPay wallet has at least {{amount}}",
		"Confirm the payment in the Grab app",
	},

	// ========================
	// CARD
	// ========================
	MethodCard: {
		"You will be redirected to the PayMongo checkout page",
		"Enter your card number, expiry date and CVC",
		"Complete the 3D Secure check sent by your bank",
		"Wait until the payment of {{amount}} is confirmed",
	},
}

func GetInstructions(method Method) []string {
	if steps, ok := InstructionMap[method]; ok {
		return steps
	}

	return []string{
		"Follow the payment instructions shown on this page",
	}
}

type InstructionVars map[string]string

func InjectVariables(
	steps []string,
	vars InstructionVars,
) []string {
	result := make([]string, 0, len(steps))

	for _, step := range steps {
		updated := step
		for key, value := range vars {
			updated = strings.ReplaceAll(
				updated,
				"{{"+key+"}}",
				value,
			)
		}
		result = append(result, updated)
	}

	return result
}

// Instructions are the customer-facing steps for method with the amount
// filled in.
func Instructions(method Method, amount decimal.Decimal) []string {
	return InjectVariables(GetInstructions(method), InstructionVars{
		"amount": money.Format(amount),
	})
}
