package routes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/euroisufi/schweizer-handwerksplattform-sub000/api/controllers"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/accounts"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/catalog"
	creditsvc "github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/credits"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/ledger"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/locks"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/internal/projects"
	pkgauth "github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/auth"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/config"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/db"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/db/models"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/enums"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/logger"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/metrics"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/migrate"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/outbox"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

type fixture struct {
	handler    http.Handler
	conn       *gorm.DB
	cfg        *config.Config
	businessID uuid.UUID
	customerID uuid.UUID
	projectID  uuid.UUID
}

func newFixture(t *testing.T, initialGrant int64, readiness map[string]controllers.Pinger) *fixture {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, migrate.AutoMigrate(conn))

	f := &fixture{conn: conn, businessID: uuid.New(), customerID: uuid.New(), projectID: uuid.New()}
	require.NoError(t, conn.Create(&models.Account{ID: f.businessID, DisplayName: "Maler Keller GmbH", Email: "info@keller.ch", Role: enums.AccountRoleBusiness}).Error)
	require.NoError(t, conn.Create(&models.Account{ID: f.customerID, DisplayName: "Anna Muster", Email: "anna@example.ch", Role: enums.AccountRoleCustomer}).Error)
	require.NoError(t, conn.Create(&models.Project{
		ID:           f.projectID,
		CustomerID:   f.customerID,
		Title:        "Wohnung streichen",
		BudgetMax:    decimal.NewNullDecimal(decimal.NewFromInt(1000)),
		ContactName:  "Anna Muster",
		ContactEmail: "anna@example.ch",
		Street:       "Bahnhofstrasse 1",
		PostalCode:   "8001",
		City:         "Zürich",
	}).Error)

	reg := prometheus.NewRegistry()
	store, err := ledger.NewRepository(ledger.RepositoryParams{
		DB:           db.FromGorm(conn),
		Locker:       locks.NewLocal(time.Second),
		Outbox:       outbox.NewService(outbox.NewRepository(conn), nil),
		Logger:       logger.Nop(),
		Metrics:      metrics.NewLedgerMetrics(reg),
		InitialGrant: initialGrant,
	})
	require.NoError(t, err)
	accountSvc, err := accounts.NewService(accounts.NewRepository(conn))
	require.NoError(t, err)
	svc, err := creditsvc.NewService(creditsvc.ServiceParams{
		Store:            store,
		Accounts:         accountSvc,
		Projects:         projects.NewRepository(conn),
		Catalog:          catalog.Default(),
		Logger:           logger.Nop(),
		MaxUnlocksListed: 100,
	})
	require.NoError(t, err)

	f.cfg = &config.Config{
		App: config.AppConfig{Env: "dev", CORSOrigins: []string{"http://localhost:3000"}},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "handwerk", ExpirationMinutes: 60},
	}
	f.handler = NewRouter(RouterParams{
		Config:      f.cfg,
		Logger:      logger.Nop(),
		Credits:     svc,
		Readiness:   readiness,
		Gatherer:    reg,
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
	})
	return f
}

func (f *fixture) token(t *testing.T, id uuid.UUID, role enums.AccountRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(f.cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{AccountID: id, Role: role})
	require.NoError(t, err)
	return token
}

func (f *fixture) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dest any) {
	t.Helper()
	envelope := struct {
		Data any `json:"data"`
	}{Data: dest}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope), rec.Body.String())
}

func TestUnlockFlowOverHTTP(t *testing.T) {
	f := newFixture(t, 0, nil)
	business := f.token(t, f.businessID, enums.AccountRoleBusiness)
	unlockPath := "/api/v1/projects/" + f.projectID.String() + "/unlock"

	price := f.do(t, http.MethodGet, "/api/v1/projects/"+f.projectID.String()+"/price", business, "")
	require.Equal(t, http.StatusOK, price.Code)
	assert.Contains(t, price.Body.String(), `"credits":4`)

	rec := f.do(t, http.MethodPost, unlockPath, business, "")
	require.Equal(t, http.StatusPaymentRequired, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/v1/credits/purchases", business, `{"package_id":"starter_10"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = f.do(t, http.MethodPost, unlockPath, business, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var record ledger.UnlockRecord
	decodeData(t, rec, &record)
	assert.Equal(t, int64(4), record.CreditsSpent)
	assert.Equal(t, "Bahnhofstrasse 1, 8001 Zürich", record.Contact.Address)

	rec = f.do(t, http.MethodPost, unlockPath, business, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/credits/balance", business, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"balance":6`)

	rec = f.do(t, http.MethodGet, "/api/v1/contacts", business, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var contacts []ledger.UnlockRecord
	decodeData(t, rec, &contacts)
	require.Len(t, contacts, 1)
	assert.Equal(t, f.projectID, contacts[0].ProjectID)
}

func TestCustomerCannotUnlock(t *testing.T) {
	f := newFixture(t, 10, nil)
	customer := f.token(t, f.customerID, enums.AccountRoleCustomer)
	rec := f.do(t, http.MethodPost, "/api/v1/projects/"+f.projectID.String()+"/unlock", customer, "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUnknownProjectIsNotFound(t *testing.T) {
	f := newFixture(t, 10, nil)
	business := f.token(t, f.businessID, enums.AccountRoleBusiness)
	rec := f.do(t, http.MethodPost, "/api/v1/projects/"+uuid.NewString()+"/unlock", business, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPlansArePublicAndAPIIsNot(t *testing.T) {
	f := newFixture(t, 0, nil)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/v1/subscriptions/plans", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/api/v1/credits/balance", "", "").Code)
}

func TestHealthAndMetrics(t *testing.T) {
	f := newFixture(t, 0, map[string]controllers.Pinger{
		"db":    stubPinger{},
		"redis": stubPinger{err: errors.New("connection refused")},
	})

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/health/live", "", "").Code)

	ready := f.do(t, http.MethodGet, "/health/ready", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, ready.Code)
	assert.Contains(t, ready.Body.String(), `"redis":"down"`)

	f.do(t, http.MethodGet, "/api/v1/subscriptions/plans", "", "")
	metricsRec := f.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, metricsRec.Code)
	assert.Contains(t, metricsRec.Body.String(), "http_request_duration_seconds")
}
