package models

// All lists every model owned by this service, in dependency order.
func All() []any {
	return []any{
		&Account{},
		&Project{},
		&AccountState{},
		&LedgerEntry{},
		&OutboxEvent{},
	}
}
