package accounts

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/db/models"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/enums"
	pkgerrors "github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/errors"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, conn.AutoMigrate(&models.Account{}))

	svc, err := NewService(NewRepository(conn))
	require.NoError(t, err)
	return svc, conn
}

func TestRequireBusiness(t *testing.T) {
	svc, conn := newTestService(t)
	business := models.Account{ID: uuid.New(), DisplayName: "Muster Sanitär AG", Email: "info@muster.ch", Role: enums.AccountRoleBusiness, Premium: true}
	customer := models.Account{ID: uuid.New(), DisplayName: "Anna", Email: "anna@example.ch", Role: enums.AccountRoleCustomer}
	require.NoError(t, conn.Create(&business).Error)
	require.NoError(t, conn.Create(&customer).Error)

	got, err := svc.RequireBusiness(context.Background(), business.ID)
	require.NoError(t, err)
	require.Equal(t, business.Email, got.Email)

	for _, id := range []uuid.UUID{customer.ID, uuid.New(), uuid.Nil} {
		_, err := svc.RequireBusiness(context.Background(), id)
		require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotAuthorized), "id %s: %v", id, err)
	}

	premium, err := svc.IsPremium(context.Background(), business.ID)
	require.NoError(t, err)
	require.True(t, premium)
}

func TestNewServiceRequiresRepository(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Fatal("expected error for nil repository")
	}
}
