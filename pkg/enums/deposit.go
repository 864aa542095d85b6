package enums

import "fmt"

// DepositMethod is how the security deposit is held.
type DepositMethod string

const (
	DepositMethodCreditCard   DepositMethod = "credit-card"
	DepositMethodBankTransfer DepositMethod = "bank-transfer"
)

var validDepositMethods = []DepositMethod{
	DepositMethodCreditCard,
	DepositMethodBankTransfer,
}

func (d DepositMethod) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DepositMethod.
func (d DepositMethod) IsValid() bool {
	for _, candidate := range validDepositMethods {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDepositMethod converts raw input into a DepositMethod.
func ParseDepositMethod(value string) (DepositMethod, error) {
	for _, candidate := range validDepositMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid deposit method %q", value)
}

// DepositStatus tracks the hold state of the security deposit.
type DepositStatus string

const (
	DepositStatusPending  DepositStatus = "pending"
	DepositStatusHeld     DepositStatus = "held"
	DepositStatusRefunded DepositStatus = "refunded"
)

var validDepositStatuses = []DepositStatus{
	DepositStatusPending,
	DepositStatusHeld,
	DepositStatusRefunded,
}

func (d DepositStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DepositStatus.
func (d DepositStatus) IsValid() bool {
	for _, candidate := range validDepositStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}
