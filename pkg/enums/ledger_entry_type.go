package enums

import "fmt"

// LedgerEntryType classifies a journal line in ledger_entries.
type LedgerEntryType string

const (
	LedgerEntryInitialGrant LedgerEntryType = "initial_grant"
	LedgerEntryPurchase     LedgerEntryType = "purchase"
	LedgerEntryUnlock       LedgerEntryType = "unlock"
)

var validLedgerEntryTypes = []LedgerEntryType{
	LedgerEntryInitialGrant,
	LedgerEntryPurchase,
	LedgerEntryUnlock,
}

func (l LedgerEntryType) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LedgerEntryType.
func (l LedgerEntryType) IsValid() bool {
	for _, candidate := range validLedgerEntryTypes {
		if candidate == l {
			return true
		}
	}
	return false
}

// IsDebit reports whether entries of this type reduce the balance.
func (l LedgerEntryType) IsDebit() bool {
	return l == LedgerEntryUnlock
}

func ParseLedgerEntryType(value string) (LedgerEntryType, error) {
	for _, candidate := range validLedgerEntryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger entry type %q", value)
}
