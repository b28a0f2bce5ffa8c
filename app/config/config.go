package config

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

type Config struct {
	DB   *sql.DB
	SMTP SMTPConfig
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

var AppConfig *Config

// InitDB loads the environment, opens the Postgres pool and prepares
// the SMTP settings used by the mailer.
func InitDB() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on process environment")
	}

	var psqlInfo string
	if os.Getenv("DATABASE_URL") != "" {
		psqlInfo = os.Getenv("DATABASE_URL")
	} else {
		host := getenv("DATABASE_HOST", "localhost")
		port := getenvInt("DATABASE_PORT", 5432)
		user := getenv("DATABASE_USER", "postgres")
		password := os.Getenv("DATABASE_PASSWORD")
		dbname := getenv("DATABASE_NAME", "pcshoi")

		psqlInfo = fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable", host, port, user, dbname)
		if password != "" {
			psqlInfo += " password=" + password
		}
	}

	db, err := sql.Open("postgres", psqlInfo)
	if err != nil {
		log.Fatal("Failed to open database connection:", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	log.Println("Testing database connection...")
	if err = db.Ping(); err != nil {
		log.Fatal("Cannot establish database connection: ", err)
	}

	AppConfig = &Config{
		DB: db,
		SMTP: SMTPConfig{
			Host:     getenv("SMTP_HOST", "smtp.gmail.com"),
			Port:     getenvInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
	}
	log.Println("Database connected successfully")
}

func GetDB() *sql.DB {
	return AppConfig.DB
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid value for %s: %q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
