// Copyright (c) 2026 Prostore. All rights reserved.
// Author: youssef.ahmed.dev@gmail.com

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashAccessCode hashes a plain-text collection access code using bcrypt.
//
// Access codes are stored only as hashes so a database leak does not
// disclose them; verification happens server-side on every gated read.
func HashAccessCode(plainTextCode string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextCode), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash access code: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckAccessCode compares a caller-presented code with its stored hash.
func CheckAccessCode(plainTextCode, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextCode))
	return err == nil
}
