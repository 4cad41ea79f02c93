package projects

import (
	"strings"

	"github.com/google/uuid"

	"github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/ledger"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/pricing"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/db/models"
)

// Project is the read-only view of a customer request the ledger prices and unlocks.
type Project struct {
	ID           uuid.UUID
	CustomerID   uuid.UUID
	Title        string
	Budget       *pricing.Budget
	ContactName  string
	ContactEmail string
	ContactPhone string
	Location     string
}

func fromModel(m *models.Project) *Project {
	p := &Project{
		ID:           m.ID,
		CustomerID:   m.CustomerID,
		Title:        m.Title,
		ContactName:  m.ContactName,
		ContactEmail: m.ContactEmail,
		ContactPhone: m.ContactPhone,
		Location:     formatLocation(m.Street, m.PostalCode, m.City),
	}
	// a budget without an upper bound is priced like no budget at all
	if m.BudgetMax.Valid {
		p.Budget = &pricing.Budget{Min: m.BudgetMin, Max: m.BudgetMax.Decimal}
	}
	return p
}

// formatLocation renders "Bahnhofstrasse 1, 8001 Zürich", skipping blanks.
func formatLocation(street, postalCode, city string) string {
	town := strings.TrimSpace(strings.TrimSpace(postalCode) + " " + strings.TrimSpace(city))
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(street); s != "" {
		parts = append(parts, s)
	}
	if town != "" {
		parts = append(parts, town)
	}
	return strings.Join(parts, ", ")
}

// Snapshot captures the contact data handed to a business on unlock.
func (p *Project) Snapshot() ledger.ContactSnapshot {
	return ledger.ContactSnapshot{
		Version: ledger.ContactSnapshotVersion,
		Name:    p.ContactName,
		Email:   p.ContactEmail,
		Phone:   p.ContactPhone,
		Address: p.Location,
		Budget:  p.Budget.Display(),
	}
}

// Price is the unlock price in credits.
func (p *Project) Price() int64 {
	return pricing.PriceFor(p.Budget)
}
