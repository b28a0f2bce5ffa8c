package registration

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/leo900807/PCSHOI-Site/app/config"
)

var (
	digitsPattern = regexp.MustCompile(`^[0-9]+$`)
	// An integer without leading zeros, optionally signed.
	integerPattern = regexp.MustCompile(`^[-+]?(0|[1-9][0-9]*)$`)
)

type RegistrationForm struct {
	StudentID  string `json:"studentid" form:"studentid"`
	ClassSeat  string `json:"classseat" form:"classseat"`
	Password   string `json:"password" form:"password"`
	Repassword string `json:"repassword" form:"repassword"`
}

type RegistrationEditForm struct {
	NewPassword   string `json:"newpassword" form:"newpassword"`
	RenewPassword string `json:"renewpassword" form:"renewpassword"`
}

type RegistrationSettingsForm struct {
	YearOfContest string `json:"yearofcontest" form:"yearofcontest"`
	RegisterStart string `json:"registerstart" form:"registerstart"`
	RegisterEnd   string `json:"registerend" form:"registerend"`
}

// IsDuringRegistration reports whether now lies inside the registration window,
// endpoints included. Instants are compared absolutely; any display offset is
// cosmetic and applied elsewhere.
func IsDuringRegistration(metadata config.ContestMetadata, now time.Time) bool {
	return !now.Before(metadata.RegisterStart) && !now.After(metadata.RegisterEnd)
}

// NewVerificationCode draws a uniform six-digit code, zero-padded. From 000000 to 999999.
func NewVerificationCode() string {
	return fmt.Sprintf("%06d", rand.Intn(1000000))
}

// ValidateRegistrationForm mirrors the sign-up form rules. The repeat-password
// mismatch is only reported once the password itself passes the length rule, so
// the more fundamental error always comes first.
func ValidateRegistrationForm(form *RegistrationForm) []string {
	var errs []string

	studentID := strings.TrimSpace(form.StudentID)
	if studentID == "" {
		errs = append(errs, "Student ID is required")
	} else if len(studentID) != 6 || !digitsPattern.MatchString(studentID) {
		errs = append(errs, "Format of Student ID is wrong")
	}

	classSeat := strings.TrimSpace(form.ClassSeat)
	if classSeat == "" {
		errs = append(errs, "Class & Seat is required")
	} else if len(classSeat) != 5 || !digitsPattern.MatchString(classSeat) {
		errs = append(errs, "Format of Class & Seat is wrong")
	}

	errs = append(errs, validatePasswords(form.Password, form.Repassword,
		"Password", "password", "Repeat password")...)

	return errs
}

// ValidateEditForm applies the same length-gated rule to the new password pair.
func ValidateEditForm(form *RegistrationEditForm) []string {
	return validatePasswords(form.NewPassword, form.RenewPassword,
		"New password", "new password", "Repeat new password")
}

func validatePasswords(password, repassword, label, lowerLabel, repeatLabel string) []string {
	var errs []string
	if password == "" {
		errs = append(errs, label+" is required")
	} else {
		if len(password) < 6 {
			errs = append(errs, "Length of "+lowerLabel+" is at least 6")
		}
		if len(password) > 50 {
			errs = append(errs, "Length of "+lowerLabel+" is at most 50")
		}
	}
	if repassword == "" {
		errs = append(errs, repeatLabel+" is required")
	} else if len(password) >= 6 && len(password) <= 50 && repassword != password {
		errs = append(errs, label+" and repeat "+lowerLabel+" are not matched")
	}
	return errs
}

// ValidateSettingsForm checks the metadata replacement: an integer year without
// leading zeros and two parseable instants. It deliberately does not require
// registerStart <= registerEnd, matching the configured behavior an
// administrator may rely on to close the window.
func ValidateSettingsForm(form *RegistrationSettingsForm) []string {
	var errs []string

	year := strings.TrimSpace(form.YearOfContest)
	if year == "" {
		errs = append(errs, "Year of contest is required")
	} else if !integerPattern.MatchString(year) {
		errs = append(errs, "Year of contest must be an integer")
	}

	if strings.TrimSpace(form.RegisterStart) == "" {
		errs = append(errs, "Register start is required")
	} else if _, err := ParseInstant(form.RegisterStart); err != nil {
		errs = append(errs, "Format of register start is wrong")
	}

	if strings.TrimSpace(form.RegisterEnd) == "" {
		errs = append(errs, "Register end is required")
	} else if _, err := ParseInstant(form.RegisterEnd); err != nil {
		errs = append(errs, "Format of register end is wrong")
	}

	return errs
}

// ParseInstant accepts the ISO-8601 shapes the settings form may submit.
func ParseInstant(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02",
	}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseYear(value string) (int, bool) {
	value = strings.TrimSpace(value)
	if !integerPattern.MatchString(value) {
		return 0, false
	}
	year, err := strconv.Atoi(value)
	if err != nil {
		return 0, false
	}
	return year, true
}

// resolveYear maps an optional ?year= query onto a contest year: absent falls
// back to the metadata's current year, anything but a positive integer is
// rejected.
func resolveYear(query string, metadata config.ContestMetadata) (int, bool) {
	if query == "" {
		return metadata.YearOfContest, true
	}
	if !digitsPattern.MatchString(query) {
		return 0, false
	}
	year, err := strconv.Atoi(query)
	if err != nil {
		return 0, false
	}
	return year, true
}

// adjustTimeString renders an instant with the fixed +8h presentation offset.
func adjustTimeString(t time.Time) string {
	return t.UTC().Add(8 * time.Hour).Format("2006-01-02 15:04:05")
}
