package util

import (
	"fmt"
	"math"
	"regexp"
	"time"
	"unicode/utf8"
)

var usernameRe = regexp.MustCompile(`^[\p{L}\p{N}_.-]{3,32}$`)

// ValidateUsername 验证用户名（3-32 位字母、数字、下划线、点或横线）
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username is empty")
	}
	if !usernameRe.MatchString(username) {
		return fmt.Errorf("username must be 3-32 letters, digits, '_', '.' or '-'")
	}
	return nil
}

// ValidatePassword 验证密码长度（6-64 位）
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < 6 {
		return fmt.Errorf("password too short, min 6 characters")
	}
	if n > 64 {
		return fmt.Errorf("password too long, max 64 characters")
	}
	return nil
}

// ValidateMonth 验证月份格式（必须为 YYYY-MM）
func ValidateMonth(month string) error {
	if month == "" {
		return fmt.Errorf("month is empty")
	}
	if _, err := time.Parse("2006-01", month); err != nil {
		return fmt.Errorf("invalid month format: %w", err)
	}
	return nil
}

// ValidateScore 验证排行榜分数（有限数且绝对值不超过上限）
func ValidateScore(score float64) error {
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return fmt.Errorf("score must be a finite number")
	}
	if math.Abs(score) >= 10000000 { // 限制绝对值在1千万以内
		return fmt.Errorf("score out of range, got %f", score)
	}
	return nil
}
