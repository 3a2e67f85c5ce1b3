package auth

import (
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// 密码强度规则
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72 // bcrypt 输入上限
)

// HashPassword 加密密码
func HashPassword(password string) (string, error) {
	return HashPasswordWithCost(password, bcrypt.DefaultCost)
}

// HashPasswordWithCost 使用指定代价因子加密密码
func HashPasswordWithCost(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword 校验密码
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// StrengthResult 密码强度校验结果
type StrengthResult struct {
	IsValid bool     `json:"isValid"`
	Errors  []string `json:"errors"`
}

// ValidateStrength 校验密码强度
// 返回逐项的违规明细而不是单个布尔值，调用方可以一次性展示全部问题
func ValidateStrength(password string) StrengthResult {
	var errs []string

	if len(password) < MinPasswordLength {
		errs = append(errs, fmt.Sprintf("password must be at least %d characters long", MinPasswordLength))
	}
	if len(password) > MaxPasswordLength {
		errs = append(errs, fmt.Sprintf("password must be at most %d characters long", MaxPasswordLength))
	}

	var hasLower, hasUpper, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}

	if !hasLower {
		errs = append(errs, "password must contain at least one lowercase letter")
	}
	if !hasUpper {
		errs = append(errs, "password must contain at least one uppercase letter")
	}
	if !hasDigit {
		errs = append(errs, "password must contain at least one digit")
	}

	return StrengthResult{
		IsValid: len(errs) == 0,
		Errors:  errs,
	}
}
