package utils

import (
	"golang.org/x/crypto/bcrypt"
)

const BcryptCost = bcrypt.DefaultCost

// HashAccessCode hashes the join code of a private tournament.
func HashAccessCode(code string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(code), BcryptCost)
	return string(bytes), err
}

func CheckAccessCode(code, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(code))
	return err == nil
}
