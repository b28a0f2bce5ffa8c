package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/leo900807/PCSHOI-Site/app/models"

	_ "github.com/lib/pq"
)

// testDB opens the database named by TEST_DATABASE_URL and prepares the
// schema. Tests that need storage are skipped when it is not set.
func testDB(t *testing.T) *sql.DB {
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

	if err := RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	if _, err := db.Exec(`DELETE FROM registrations; DELETE FROM users;`); err != nil {
		t.Fatalf("failed to reset tables: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *sql.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:          username,
		EncryptedPassword: "hashed",
		Nickname:          "Nick",
		Realname:          "Real Name",
		Email:             username + "@example.com",
	}
	if err := CreateUser(db, user); err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

func createTestRegistration(t *testing.T, db *sql.DB, userID, studentID string, year int) *models.Registration {
	t.Helper()

	registration := &models.Registration{
		RegistrantID:      userID,
		StudentID:         studentID,
		ClassSeat:         "10203",
		EncryptedPassword: "hashed",
		VerificationCode:  "000123",
		RegisterYear:      year,
	}
	if err := CreateRegistration(db, registration); err != nil {
		t.Fatalf("failed to create test registration: %v", err)
	}
	return registration
}

func TestCreateRegistrationDuplicate(t *testing.T) {
	db := testDB(t)
	user := createTestUser(t, db, "dup_user")

	createTestRegistration(t, db, user.ID, "123456", 2024)

	// A second registration for the same user and year hits the unique index
	// even with a different student id.
	duplicate := &models.Registration{
		RegistrantID:      user.ID,
		StudentID:         "654321",
		ClassSeat:         "20101",
		EncryptedPassword: "hashed",
		VerificationCode:  "000456",
		RegisterYear:      2024,
	}
	if err := CreateRegistration(db, duplicate); !errors.Is(err, ErrDuplicateRegistration) {
		t.Errorf("got err %v, want ErrDuplicateRegistration", err)
	}

	// A different year is fine.
	createTestRegistration(t, db, user.ID, "123456", 2025)
}

func TestGetRegistrationByUserAndYear(t *testing.T) {
	db := testDB(t)
	user := createTestUser(t, db, "lookup_user")
	created := createTestRegistration(t, db, user.ID, "123456", 2024)

	got, err := GetRegistrationByUserAndYear(db, user.ID, 2024)
	if err != nil {
		t.Fatalf("GetRegistrationByUserAndYear failed: %v", err)
	}
	if got.ID != created.ID || got.StudentID != "123456" {
		t.Errorf("got registration %+v, want id %s", got, created.ID)
	}

	if _, err := GetRegistrationByUserAndYear(db, user.ID, 2023); err != sql.ErrNoRows {
		t.Errorf("missing year lookup err = %v, want sql.ErrNoRows", err)
	}
}

func TestGetRegistrationsByYearIncludesRegistrant(t *testing.T) {
	db := testDB(t)
	user := createTestUser(t, db, "year_user")
	createTestRegistration(t, db, user.ID, "123456", 2024)

	registrations, err := GetRegistrationsByYear(db, 2024)
	if err != nil {
		t.Fatalf("GetRegistrationsByYear failed: %v", err)
	}
	if len(registrations) != 1 {
		t.Fatalf("got %d registrations, want 1", len(registrations))
	}
	registrant := registrations[0].Registrant
	if registrant == nil || registrant.Realname != "Real Name" || registrant.Email != "year_user@example.com" {
		t.Errorf("registrant = %+v, want joined identity", registrant)
	}
}

func TestBatchUpdateRegistrationScores(t *testing.T) {
	db := testDB(t)

	var registrations []*models.Registration
	for i := 0; i < 3; i++ {
		user := createTestUser(t, db, fmt.Sprintf("score_user_%d", i))
		registrations = append(registrations, createTestRegistration(t, db, user.ID, fmt.Sprintf("10000%d", i), 2024))
	}

	score := 87.5
	rank := 1
	updates := []ScoreUpdate{
		{RegistrationID: registrations[0].ID, Score: &score, Rank: &rank},
		{RegistrationID: registrations[1].ID, Score: nil, Rank: nil},
	}
	if err := BatchUpdateRegistrationScores(db, updates); err != nil {
		t.Fatalf("BatchUpdateRegistrationScores failed: %v", err)
	}

	first, err := GetRegistrationByID(db, registrations[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if first.Score == nil || *first.Score != 87.5 || first.Rank == nil || *first.Rank != 1 {
		t.Errorf("first registration score/rank = %v/%v, want 87.5/1", first.Score, first.Rank)
	}

	second, err := GetRegistrationByID(db, registrations[1].ID)
	if err != nil {
		t.Fatal(err)
	}
	if second.Score != nil || second.Rank != nil {
		t.Errorf("nil update should clear score and rank, got %v/%v", second.Score, second.Rank)
	}

	third, err := GetRegistrationByID(db, registrations[2].ID)
	if err != nil {
		t.Fatal(err)
	}
	if third.Score != nil || third.Rank != nil {
		t.Errorf("untouched registration gained score/rank: %v/%v", third.Score, third.Rank)
	}
}

func TestGetRegistrationsByYearStudentPairs(t *testing.T) {
	db := testDB(t)
	userA := createTestUser(t, db, "pair_user_a")
	userB := createTestUser(t, db, "pair_user_b")
	regA := createTestRegistration(t, db, userA.ID, "123456", 2024)
	createTestRegistration(t, db, userB.ID, "123456", 2023)

	// Only the exact (year, studentId) pair matches, not every combination.
	found, err := GetRegistrationsByYearStudentPairs(db, []int{2024, 2022}, []string{"123456", "999999"})
	if err != nil {
		t.Fatalf("GetRegistrationsByYearStudentPairs failed: %v", err)
	}
	if len(found) != 1 || found[0].ID != regA.ID {
		t.Errorf("got %d registrations, want exactly the 2024 one", len(found))
	}

	empty, err := GetRegistrationsByYearStudentPairs(db, nil, nil)
	if err != nil || empty != nil {
		t.Errorf("empty input should return nothing, got (%v, %v)", empty, err)
	}
}

func TestRegistrationKey(t *testing.T) {
	if got := RegistrationKey(2024, "123456"); got != "2024:123456" {
		t.Errorf("RegistrationKey = %q, want 2024:123456", got)
	}
}
