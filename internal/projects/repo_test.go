package projects

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/ledger"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/db/models"
	pkgerrors "github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/errors"
)

func newTestRepo(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, conn.AutoMigrate(&models.Project{}))
	return NewRepository(conn), conn
}

func TestFindByIDMapsBudgetAndContact(t *testing.T) {
	repo, conn := newTestRepo(t)
	row := models.Project{
		ID:           uuid.New(),
		CustomerID:   uuid.New(),
		Title:        "Badezimmer renovieren",
		BudgetMin:    decimal.NewNullDecimal(decimal.NewFromInt(800)),
		BudgetMax:    decimal.NewNullDecimal(decimal.NewFromInt(1000)),
		ContactName:  "Anna Muster",
		ContactEmail: "anna@example.ch",
		ContactPhone: "+41 44 000 00 00",
		Street:       "Bahnhofstrasse 1",
		PostalCode:   "8001",
		City:         "Zürich",
	}
	require.NoError(t, conn.Create(&row).Error)

	project, err := repo.FindByID(context.Background(), row.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), project.Price())
	assert.Equal(t, "Bahnhofstrasse 1, 8001 Zürich", project.Location)

	snap := project.Snapshot()
	assert.Equal(t, ledger.ContactSnapshotVersion, snap.Version)
	assert.Equal(t, "Anna Muster", snap.Name)
	assert.Equal(t, "CHF 800 - 1'000", snap.Budget)
}

func TestFindByIDWithoutBudget(t *testing.T) {
	repo, conn := newTestRepo(t)
	row := models.Project{ID: uuid.New(), CustomerID: uuid.New(), Title: "Zaun", ContactName: "B", ContactEmail: "b@example.ch", City: "Bern"}
	require.NoError(t, conn.Create(&row).Error)

	project, err := repo.FindByID(context.Background(), row.ID)
	require.NoError(t, err)
	assert.Nil(t, project.Budget)
	assert.Equal(t, int64(1), project.Price())
	assert.Equal(t, "Bern", project.Location)
	assert.Equal(t, "on request", project.Snapshot().Budget)
}

func TestFindByIDNotFound(t *testing.T) {
	repo, _ := newTestRepo(t)
	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
