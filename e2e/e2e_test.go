//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"tiffin-app-go/internal/app"
	"tiffin-app-go/internal/clock"
	"tiffin-app-go/internal/config"
	"tiffin-app-go/internal/db"
	catalogdomain "tiffin-app-go/internal/domain/catalog"
	"tiffin-app-go/internal/transport/httpserver"
	"tiffin-app-go/pkg/logger"
)

const jwtSecret = "e2e-secret"

type testEnv struct {
	server *httptest.Server
	db     *gorm.DB
	seed   seedData
}

type seedData struct {
	packageID      string
	addressID      string
	tokenPackageID string
	lunchSlotID    string
}

func setupE2E(t *testing.T) *testEnv {
	t.Helper()

	dsn := os.Getenv("E2E_DB_DSN")
	if dsn == "" {
		t.Skip("E2E_DB_DSN not set; skipping e2e tests")
	}

	cfg := config.Config{
		DB:           config.DBConfig{DSN: dsn},
		CatalogCache: config.CatalogCacheConfig{Mode: config.CatalogCacheOff},
		Auth:         config.AuthConfig{JWTSecret: jwtSecret},
	}
	log := logger.Nop()

	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		t.Fatalf("db connect: %v", err)
	}
	if err := db.Migrate(dbConn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := cleanDB(dbConn); err != nil {
		t.Fatalf("clean db: %v", err)
	}
	seed, err := seedCatalog(dbConn)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	handlers := app.NewHandlers(cfg, dbConn, app.Deps{}, log)
	router := httpserver.NewRouter(cfg, handlers, log)

	return &testEnv{server: httptest.NewServer(router), db: dbConn, seed: seed}
}

func (e *testEnv) Close() {
	e.server.Close()
	sqlDB, err := e.db.DB()
	if err == nil {
		_ = sqlDB.Close()
	}
}

func cleanDB(dbConn *gorm.DB) error {
	return dbConn.WithContext(context.Background()).Exec(
		`TRUNCATE TABLE subscription_upgrades, curry_orders, curry_wallets, pause_records, meal_instances,
		delivery_groups, subscriptions, addresses, upgrade_prices, token_packages, delivery_slots, packages CASCADE`,
	).Error
}

func seedCatalog(dbConn *gorm.DB) (seedData, error) {
	seed := seedData{
		packageID:      uuid.NewString(),
		addressID:      uuid.NewString(),
		tokenPackageID: uuid.NewString(),
	}

	slots := []catalogdomain.DeliverySlot{
		{ID: uuid.NewString(), Code: catalogdomain.SlotMorning, Label: "Morning", StartsAt: "07:00", EndsAt: "09:00", IsActive: true},
		{ID: uuid.NewString(), Code: catalogdomain.SlotAfternoon, Label: "Afternoon", StartsAt: "12:00", EndsAt: "14:00", IsActive: true},
		{ID: uuid.NewString(), Code: catalogdomain.SlotEveningDinner, Label: "Dinner", StartsAt: "19:00", EndsAt: "21:00", IsActive: true},
		{ID: uuid.NewString(), Code: catalogdomain.SlotEveningSnack, Label: "Snacks", StartsAt: "16:00", EndsAt: "17:00", IsActive: true},
	}
	seed.lunchSlotID = slots[1].ID

	return seed, dbConn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&slots).Error; err != nil {
			return err
		}
		if err := tx.Create(&catalogdomain.Package{
			ID:                   seed.packageID,
			Name:                 "Weekly lunch and dinner",
			DietType:             catalogdomain.DietVeg,
			CuisineType:          catalogdomain.CuisineSouth,
			DurationDays:         7,
			ItemTypes:            datatypes.NewJSONSlice([]catalogdomain.ItemType{catalogdomain.ItemLunch, catalogdomain.ItemDinner}),
			AllowContainerChoice: true,
			DefaultContainer:     "steel",
			AllowedContainers:    datatypes.NewJSONSlice([]string{"steel", "eco"}),
			AllowsDietUpgrade:    true,
			Price:                decimal.RequireFromString("1499.00"),
			IsActive:             true,
		}).Error; err != nil {
			return err
		}
		if err := tx.Create(&catalogdomain.Address{
			ID: seed.addressID, UserID: "user-1", Label: "Home", Line1: "12 MG Road", City: "Bengaluru", Pincode: "560001",
		}).Error; err != nil {
			return err
		}
		if err := tx.Create(&catalogdomain.TokenPackage{
			ID: seed.tokenPackageID, Name: "Veg 3", DietType: catalogdomain.DietVeg, TokenCount: 3, ValidityDays: 30,
			Price: decimal.RequireFromString("360.00"), IsActive: true,
		}).Error; err != nil {
			return err
		}
		return tx.Create(&catalogdomain.UpgradePrice{
			ID: uuid.NewString(), UpgradeType: catalogdomain.UpgradeVegToNonVeg, Scope: catalogdomain.ScopeDay,
			UnitPrice: decimal.RequireFromString("100.00"), IsActive: true,
		}).Error
	})
}

func tokenFor(t *testing.T, userID string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":          userID,
		"phone_number": "+919800000001",
		"exp":          time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(jwtSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func requestJSON(t *testing.T, client *http.Client, method, url, token string, payload interface{}) (*http.Response, []byte) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp, respBody
}

// postStatus is safe to call from goroutines other than the test's own.
func postStatus(client *http.Client, url, token string, payload interface{}) (int, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

func expectStatus(t *testing.T, resp *http.Response, body []byte, want int) {
	t.Helper()
	if resp.StatusCode != want {
		t.Fatalf("expected %d, got %d: %s", want, resp.StatusCode, string(body))
	}
}

type errorEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type subscriptionResponse struct {
	ID            string `json:"id"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	Status        string `json:"status"`
	DaysRemaining *int   `json:"days_remaining"`
}

type walletResponse struct {
	TotalTokens     int `json:"total_tokens"`
	UsedTokens      int `json:"used_tokens"`
	RemainingTokens int `json:"remaining_tokens"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func TestE2EHealthAndAuth(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}

	resp, body := requestJSON(t, client, http.MethodGet, env.server.URL+"/api/health", "", nil)
	expectStatus(t, resp, body, http.StatusOK)

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/auth/me", "", nil)
	expectStatus(t, resp, body, http.StatusUnauthorized)
	var errResp errorEnvelope
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if errResp.Error.Code != "invalid_token" {
		t.Fatalf("expected invalid_token, got %q", errResp.Error.Code)
	}

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/auth/me", tokenFor(t, "user-1"), nil)
	expectStatus(t, resp, body, http.StatusOK)
}

func TestE2ESubscriptionAndMealsFlow(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	token := tokenFor(t, "user-1")
	today := clock.System{}.Today()
	tomorrow := clock.FormatDate(clock.AddDays(today, 1))

	createBody := map[string]string{
		"package_id": env.seed.packageID,
		"address_id": env.seed.addressID,
		"start_date": clock.FormatDate(today),
	}

	var wg sync.WaitGroup
	statuses := make(chan int, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, err := postStatus(client, env.server.URL+"/api/subscriptions", token, createBody)
			if err != nil {
				t.Errorf("subscribe: %v", err)
			}
			statuses <- status
		}()
	}
	wg.Wait()
	close(statuses)

	created := 0
	for status := range statuses {
		switch status {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
		default:
			t.Fatalf("unexpected status %d", status)
		}
	}
	if created != 1 {
		t.Fatalf("expected exactly one subscription, got %d", created)
	}

	resp, body := requestJSON(t, client, http.MethodGet, env.server.URL+"/api/subscriptions/active", token, nil)
	expectStatus(t, resp, body, http.StatusOK)
	var active subscriptionResponse
	if err := json.Unmarshal(body, &active); err != nil {
		t.Fatalf("decode subscription: %v", err)
	}
	if active.EndDate != clock.FormatDate(clock.AddDays(today, 6)) {
		t.Fatalf("expected end date six days out, got %s", active.EndDate)
	}

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/meals/schedule", token, nil)
	expectStatus(t, resp, body, http.StatusOK)
	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/meals/schedule", token, nil)
	expectStatus(t, resp, body, http.StatusOK)

	var count int64
	if err := env.db.Table("meal_instances").Count(&count).Error; err != nil {
		t.Fatalf("count meals: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4 meals for two days of lunch and dinner, got %d", count)
	}

	pause := map[string]string{"date": tomorrow, "meal_type": "lunch"}
	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/meals/pause", token, pause)
	expectStatus(t, resp, body, http.StatusOK)
	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/meals/pause", token, pause)
	expectStatus(t, resp, body, http.StatusUnprocessableEntity)
	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/meals/unpause", token, pause)
	expectStatus(t, resp, body, http.StatusOK)

	var records int64
	if err := env.db.Table("pause_records").Count(&records).Error; err != nil {
		t.Fatalf("count pause records: %v", err)
	}
	if records != 2 {
		t.Fatalf("expected pause and unpause records, got %d", records)
	}

	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/upgrades", token, map[string]string{
		"upgrade_type": "veg_to_nonveg",
		"scope":        "day",
		"start_date":   tomorrow,
		"end_date":     clock.FormatDate(clock.AddDays(today, 3)),
	})
	expectStatus(t, resp, body, http.StatusCreated)
	var upgrade struct {
		Price string `json:"price"`
	}
	if err := json.Unmarshal(body, &upgrade); err != nil {
		t.Fatalf("decode upgrade: %v", err)
	}
	if upgrade.Price != "300.00" {
		t.Fatalf("expected 300.00, got %s", upgrade.Price)
	}
}

func TestE2ECurryLedgerFlow(t *testing.T) {
	env := setupE2E(t)
	defer env.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	token := tokenFor(t, "user-1")
	today := clock.System{}.Today()

	resp, body := requestJSON(t, client, http.MethodPost, env.server.URL+"/api/curry/wallets", token, map[string]string{
		"package_id": env.seed.tokenPackageID,
	})
	expectStatus(t, resp, body, http.StatusOK)

	var wg sync.WaitGroup
	results := make(chan int, 6)
	for i := 1; i <= 6; i++ {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			status, err := postStatus(client, env.server.URL+"/api/curry/orders", token, map[string]string{
				"diet_type":    "veg",
				"cuisine_type": "south",
				"order_date":   clock.FormatDate(clock.AddDays(today, offset)),
			})
			if err != nil {
				t.Errorf("place order: %v", err)
			}
			results <- status
		}(i)
	}
	wg.Wait()
	close(results)

	placed := 0
	for status := range results {
		if status == http.StatusCreated {
			placed++
		}
	}
	if placed != 3 {
		t.Fatalf("expected exactly 3 orders for 3 tokens, got %d", placed)
	}

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/curry/orders?status=ordered", token, nil)
	expectStatus(t, resp, body, http.StatusOK)
	var orders struct {
		Items []orderResponse `json:"items"`
	}
	if err := json.Unmarshal(body, &orders); err != nil {
		t.Fatalf("decode orders: %v", err)
	}
	if len(orders.Items) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(orders.Items))
	}

	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/curry/orders/"+orders.Items[0].ID+"/cancel", token, nil)
	expectStatus(t, resp, body, http.StatusOK)
	resp, body = requestJSON(t, client, http.MethodPost, env.server.URL+"/api/curry/orders/"+orders.Items[0].ID+"/cancel", token, nil)
	expectStatus(t, resp, body, http.StatusUnprocessableEntity)

	resp, body = requestJSON(t, client, http.MethodGet, env.server.URL+"/api/curry/wallets", token, nil)
	expectStatus(t, resp, body, http.StatusOK)
	var wallets struct {
		Items []walletResponse `json:"items"`
	}
	if err := json.Unmarshal(body, &wallets); err != nil {
		t.Fatalf("decode wallets: %v", err)
	}
	if len(wallets.Items) != 1 || wallets.Items[0].UsedTokens != 2 || wallets.Items[0].RemainingTokens != 1 {
		t.Fatalf("unexpected wallets %+v", wallets.Items)
	}
}
