package registration

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leo900807/PCSHOI-Site/app/config"
	"github.com/leo900807/PCSHOI-Site/app/database"
	"github.com/leo900807/PCSHOI-Site/app/models"
	"github.com/leo900807/PCSHOI-Site/app/routes/auth"

	"github.com/gofiber/fiber/v2"
	_ "github.com/lib/pq"
)

// setupTestApp wires a Fiber app against the database named by
// TEST_DATABASE_URL. These tests are skipped when it is not set.
func setupTestApp(t *testing.T) (*fiber.App, *sql.DB) {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Skipf("test database is unreachable: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	if _, err := db.Exec(`DELETE FROM registrations; DELETE FROM users;`); err != nil {
		t.Fatalf("failed to reset tables: %v", err)
	}

	config.AppConfig = &config.Config{DB: db}
	t.Setenv("REGISTRATION_METADATA_FILE", filepath.Join(t.TempDir(), "metadata.json"))

	app := fiber.New()
	SetupRegistrationRoutes(app)
	return app, db
}

func openWindow(t *testing.T, year int) {
	t.Helper()
	metadata := config.ContestMetadata{
		YearOfContest: year,
		RegisterStart: time.Now().Add(-time.Hour),
		RegisterEnd:   time.Now().Add(time.Hour),
	}
	if err := config.SaveContestMetadata(config.MetadataFile(), metadata); err != nil {
		t.Fatalf("failed to save contest metadata: %v", err)
	}
}

func closeWindow(t *testing.T, year int) {
	t.Helper()
	metadata := config.ContestMetadata{
		YearOfContest: year,
		RegisterStart: time.Now().Add(-2 * time.Hour),
		RegisterEnd:   time.Now().Add(-time.Hour),
	}
	if err := config.SaveContestMetadata(config.MetadataFile(), metadata); err != nil {
		t.Fatalf("failed to save contest metadata: %v", err)
	}
}

func signupTestUser(t *testing.T, db *sql.DB, username string, admin bool) (*models.User, string) {
	t.Helper()

	user := &models.User{
		Username:          username,
		EncryptedPassword: "hashed",
		Nickname:          "Nick",
		Realname:          "Real Name",
		Email:             username + "@example.com",
		Admin:             admin,
	}
	if err := database.CreateUser(db, user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	token, err := auth.GenerateJWT(user.ID, user.Username, user.Nickname, user.Realname, user.Email, user.Admin)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return user, token
}

func jsonRequest(t *testing.T, app *fiber.App, method, target, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, target, err)
	}

	var decoded map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("response of %s %s is not JSON: %v", method, target, err)
	}
	resp.Body.Close()
	return resp, decoded
}

func TestRegistrationRequiresLogin(t *testing.T) {
	app, _ := setupTestApp(t)

	resp, body := jsonRequest(t, app, "GET", "/api/registrations/", "", nil)
	if resp.StatusCode != 401 {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
	if body["error"] != "Please login before operation" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestCreateRegistrationFlow(t *testing.T) {
	app, db := setupTestApp(t)
	openWindow(t, 2024)
	_, token := signupTestUser(t, db, "member", false)

	form := map[string]string{
		"studentid":  "123456",
		"classseat":  "10203",
		"password":   "secret1",
		"repassword": "secret1",
	}
	resp, body := jsonRequest(t, app, "POST", "/api/registrations/", token, form)
	if resp.StatusCode != 201 {
		t.Fatalf("create status = %d, body %v", resp.StatusCode, body)
	}

	resp, body = jsonRequest(t, app, "GET", "/api/registrations/status", token, nil)
	if resp.StatusCode != 200 {
		t.Fatalf("status endpoint = %d", resp.StatusCode)
	}
	if body["is_registration_phase"] != true {
		t.Error("window should be open")
	}
	registration, ok := body["registration"].(map[string]interface{})
	if !ok {
		t.Fatalf("status has no registration: %v", body)
	}
	if registration["student_id"] != "123456" {
		t.Errorf("student_id = %v, want 123456", registration["student_id"])
	}

	// Second attempt in the same year is rejected before validation.
	resp, body = jsonRequest(t, app, "POST", "/api/registrations/", token, form)
	if resp.StatusCode != 422 {
		t.Fatalf("duplicate create status = %d", resp.StatusCode)
	}
	if body["error"] != "You've already registered for contest this year" {
		t.Errorf("duplicate create error = %v", body["error"])
	}
}

func TestCreateRegistrationOutsideWindow(t *testing.T) {
	app, db := setupTestApp(t)
	closeWindow(t, 2024)
	_, token := signupTestUser(t, db, "late_member", false)

	form := map[string]string{
		"studentid":  "123456",
		"classseat":  "10203",
		"password":   "secret1",
		"repassword": "secret1",
	}
	resp, body := jsonRequest(t, app, "POST", "/api/registrations/", token, form)
	if resp.StatusCode != 422 {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	if body["error"] != "It's not registration phase" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestCreateRegistrationValidation(t *testing.T) {
	app, db := setupTestApp(t)
	openWindow(t, 2024)
	_, token := signupTestUser(t, db, "sloppy_member", false)

	form := map[string]string{
		"studentid":  "12x456",
		"classseat":  "10203",
		"password":   "secret1",
		"repassword": "secret1",
	}
	resp, body := jsonRequest(t, app, "POST", "/api/registrations/", token, form)
	if resp.StatusCode != 422 {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
	errs, ok := body["errors"].([]interface{})
	if !ok || len(errs) != 1 || errs[0] != "Format of Student ID is wrong" {
		t.Errorf("errors = %v", body["errors"])
	}
	// The submitted form is echoed back.
	data, ok := body["data"].(map[string]interface{})
	if !ok || data["studentid"] != "12x456" {
		t.Errorf("data = %v", body["data"])
	}
}

func TestUpdateRegistrationPassword(t *testing.T) {
	app, db := setupTestApp(t)
	openWindow(t, 2024)
	user, token := signupTestUser(t, db, "editor", false)

	edit := map[string]string{
		"newpassword":   "newsecret",
		"renewpassword": "newsecret",
	}
	resp, body := jsonRequest(t, app, "PATCH", "/api/registrations/", token, edit)
	if resp.StatusCode != 422 {
		t.Fatalf("edit without registration status = %d", resp.StatusCode)
	}
	if body["error"] != "You haven't registered yet. You can only edit infos after registered" {
		t.Errorf("error = %v", body["error"])
	}

	registration := &models.Registration{
		RegistrantID:      user.ID,
		StudentID:         "123456",
		ClassSeat:         "10203",
		EncryptedPassword: "old-hash",
		VerificationCode:  "000123",
		RegisterYear:      2024,
	}
	if err := database.CreateRegistration(db, registration); err != nil {
		t.Fatal(err)
	}

	resp, _ = jsonRequest(t, app, "PATCH", "/api/registrations/", token, edit)
	if resp.StatusCode != 200 {
		t.Fatalf("edit status = %d", resp.StatusCode)
	}

	updated, err := database.GetRegistrationByID(db, registration.ID)
	if err != nil {
		t.Fatal(err)
	}
	if updated.EncryptedPassword == "old-hash" {
		t.Error("password hash was not replaced")
	}
	if !auth.CheckPasswordHash("newsecret", updated.EncryptedPassword) {
		t.Error("new password does not verify")
	}
	if updated.VerificationCode != "000123" {
		t.Errorf("verification code changed to %q", updated.VerificationCode)
	}
}

func TestDestroyRegistration(t *testing.T) {
	app, db := setupTestApp(t)
	openWindow(t, 2024)
	member, memberToken := signupTestUser(t, db, "victim", false)
	_, adminToken := signupTestUser(t, db, "boss", true)

	registration := &models.Registration{
		RegistrantID:      member.ID,
		StudentID:         "123456",
		ClassSeat:         "10203",
		EncryptedPassword: "hashed",
		VerificationCode:  "000123",
		RegisterYear:      2024,
	}
	if err := database.CreateRegistration(db, registration); err != nil {
		t.Fatal(err)
	}
	target := "/api/registrations/" + registration.ID

	resp, _ := jsonRequest(t, app, "DELETE", target, memberToken, map[string]string{"verificationcode": "000123"})
	if resp.StatusCode != 403 {
		t.Errorf("member delete status = %d, want 403", resp.StatusCode)
	}

	resp, body := jsonRequest(t, app, "DELETE", target, adminToken, map[string]string{"verificationcode": "999999"})
	if resp.StatusCode != 422 || body["error"] != "Verification Code Error" {
		t.Errorf("wrong code delete = %d %v", resp.StatusCode, body)
	}

	resp, _ = jsonRequest(t, app, "DELETE", target, adminToken, map[string]string{"verificationcode": "000123"})
	if resp.StatusCode != 200 {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	if _, err := database.GetRegistrationByID(db, registration.ID); err != sql.ErrNoRows {
		t.Errorf("registration still exists after delete: %v", err)
	}

	resp, body = jsonRequest(t, app, "DELETE", target, adminToken, map[string]string{"verificationcode": "000123"})
	if resp.StatusCode != 404 || body["error"] != "No such registration" {
		t.Errorf("repeat delete = %d %v", resp.StatusCode, body)
	}

	resp, _ = jsonRequest(t, app, "DELETE", "/api/registrations/not-a-uuid", adminToken, map[string]string{"verificationcode": "000123"})
	if resp.StatusCode != 404 {
		t.Errorf("malformed id delete status = %d, want 404", resp.StatusCode)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	app, db := setupTestApp(t)
	openWindow(t, 2023)
	_, adminToken := signupTestUser(t, db, "settings_admin", true)

	form := map[string]string{
		"yearofcontest": "2025",
		"registerstart": "2025-01-01T00:00:00Z",
		"registerend":   "2025-01-31T23:59:59Z",
	}
	resp, body := jsonRequest(t, app, "PUT", "/api/registrations/settings", adminToken, form)
	if resp.StatusCode != 200 {
		t.Fatalf("update settings status = %d, body %v", resp.StatusCode, body)
	}

	resp, body = jsonRequest(t, app, "GET", "/api/registrations/settings", adminToken, nil)
	if resp.StatusCode != 200 {
		t.Fatalf("get settings status = %d", resp.StatusCode)
	}
	if body["yearOfContest"] != float64(2025) {
		t.Errorf("yearOfContest = %v, want 2025", body["yearOfContest"])
	}
}

func TestAdminIndexByYear(t *testing.T) {
	app, db := setupTestApp(t)
	openWindow(t, 2024)
	member, _ := signupTestUser(t, db, "listed_member", false)
	_, adminToken := signupTestUser(t, db, "list_admin", true)

	registration := &models.Registration{
		RegistrantID:      member.ID,
		StudentID:         "123456",
		ClassSeat:         "10203",
		EncryptedPassword: "hashed",
		VerificationCode:  "000123",
		RegisterYear:      2024,
	}
	if err := database.CreateRegistration(db, registration); err != nil {
		t.Fatal(err)
	}

	resp, body := jsonRequest(t, app, "GET", "/api/registrations/", adminToken, nil)
	if resp.StatusCode != 200 {
		t.Fatalf("index status = %d", resp.StatusCode)
	}
	if body["year"] != float64(2024) {
		t.Errorf("year = %v, want 2024", body["year"])
	}
	listed, ok := body["registrations"].([]interface{})
	if !ok || len(listed) != 1 {
		t.Fatalf("registrations = %v", body["registrations"])
	}
	entry := listed[0].(map[string]interface{})
	registrant, ok := entry["registrant"].(map[string]interface{})
	if !ok || registrant["realname"] != "Real Name" {
		t.Errorf("registrant = %v", entry["registrant"])
	}

	resp, _ = jsonRequest(t, app, "GET", fmt.Sprintf("/api/registrations/?year=%s", "bogus"), adminToken, nil)
	if resp.StatusCode != 404 {
		t.Errorf("bogus year status = %d, want 404", resp.StatusCode)
	}
}
