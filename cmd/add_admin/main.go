package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/leo900807/PCSHOI-Site/app/config"
	"github.com/leo900807/PCSHOI-Site/app/database"
	"github.com/leo900807/PCSHOI-Site/app/models"
	"github.com/leo900807/PCSHOI-Site/app/routes/auth"
)

func main() {
	username := flag.String("username", "admin", "admin account username")
	password := flag.String("password", "", "admin account password")
	nickname := flag.String("nickname", "Admin", "display nickname")
	realname := flag.String("realname", "Administrator", "real name")
	email := flag.String("email", "", "admin email address")
	flag.Parse()

	if *password == "" || *email == "" {
		fmt.Println("Both -password and -email are required")
		os.Exit(1)
	}

	// Initialize database connection
	config.InitDB()
	db := config.GetDB()

	hashedPassword, err := auth.HashPassword(*password)
	if err != nil {
		fmt.Printf("Error hashing password: %v\n", err)
		os.Exit(1)
	}

	user := &models.User{
		Username:          *username,
		EncryptedPassword: hashedPassword,
		Nickname:          *nickname,
		Realname:          *realname,
		Email:             *email,
		Admin:             true,
	}

	if err := database.CreateUser(db, user); err != nil {
		fmt.Printf("Error creating admin user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Admin user created successfully: %s (%s)\n", user.Username, user.Email)
}
