package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/nbutton23/zxcvbn-go"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrWeakPassword = errors.New("password is too weak")

	upperRe   = regexp.MustCompile(`[A-Z]`)
	lowerRe   = regexp.MustCompile(`[a-z]`)
	digitRe   = regexp.MustCompile(`[0-9]`)
	specialRe = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

// PasswordHasher hashes and checks passwords and enforces the password policy
type PasswordHasher struct {
	cost     int
	minScore int

	// dummyHash is compared against when there is no stored hash, so that
	// unknown accounts cost the same bcrypt work as known ones
	dummyOnce sync.Once
	dummyHash []byte
}

// NewPasswordHasher returns a hasher using the given bcrypt cost (0 means
// bcrypt.DefaultCost) and minimum zxcvbn score (0-4).
func NewPasswordHasher(cost, minScore int) *PasswordHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost, minScore: minScore}
}

// Hash returns the bcrypt hash of password
func (h *PasswordHasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// Compare reports whether password matches hash. An empty hash never
// matches but still runs a bcrypt comparison at the configured cost.
func (h *PasswordHasher) Compare(hash, password string) bool {
	if hash == "" {
		_ = bcrypt.CompareHashAndPassword(h.dummy(), []byte(password))
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (h *PasswordHasher) dummy() []byte {
	h.dummyOnce.Do(func() {
		hashed, err := bcrypt.GenerateFromPassword([]byte("jobsnearby-unknown-account"), h.cost)
		if err != nil {
			// cost above bcrypt.MaxCost
			hashed, _ = bcrypt.GenerateFromPassword([]byte("jobsnearby-unknown-account"), bcrypt.DefaultCost)
		}
		h.dummyHash = hashed
	})
	return h.dummyHash
}

// Validate checks the composition rules first and then the estimated
// strength. userInputs (names, email) are penalised by the estimator.
func (h *PasswordHasher) Validate(password string, userInputs ...string) error {
	err := validation.Validate(password,
		validation.Required.Error("password is required"),
		// bcrypt ignores everything past 72 bytes
		validation.Length(8, 72).Error("password must be between 8 and 72 characters"),
		validation.Match(upperRe).Error("password must contain an upper-case letter"),
		validation.Match(lowerRe).Error("password must contain a lower-case letter"),
		validation.Match(digitRe).Error("password must contain a digit"),
		validation.Match(specialRe).Error("password must contain a special character"),
	)
	if err != nil {
		return err
	}

	result := zxcvbn.PasswordStrength(password, userInputs)
	if result.Score < h.minScore {
		return ErrWeakPassword
	}
	return nil
}

// NormalizeEmail trims and lower-cases an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
