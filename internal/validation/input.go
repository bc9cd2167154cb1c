package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Константы валидации
const (
	MinUsernameLength    = 3
	MaxUsernameLength    = 30
	MinTitleLength       = 3
	MaxTitleLength       = 200
	MinDescriptionLength = 10
	MaxDescriptionLength = 5000
	MaxFeedbackLength    = 3000
	MaxTagLength         = 40
	MaxTagsCount         = 20
	MaxNoteLength        = 2000
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}
	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	emailRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !emailRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("имя пользователя обязательно")
	}

	username = strings.TrimSpace(username)

	if err := ValidateLength("имя пользователя", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}

	usernameRegex := regexp.MustCompile(`^[a-z0-9_]+$`)
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("имя пользователя может содержать только строчные буквы, цифры и подчёркивания")
	}

	return nil
}

// ValidateTitle проверяет название заказа или этапа.
func ValidateTitle(title string) error {
	if err := ValidateNonEmpty("название", title); err != nil {
		return err
	}
	return ValidateLength("название", title, MinTitleLength, MaxTitleLength)
}

// ValidateDescription проверяет описание заказа.
func ValidateDescription(description string) error {
	if err := ValidateNonEmpty("описание", description); err != nil {
		return err
	}
	return ValidateLength("описание", description, MinDescriptionLength, MaxDescriptionLength)
}

// ValidateTags проверяет список тегов.
func ValidateTags(tags []string) error {
	if len(tags) > MaxTagsCount {
		return fmt.Errorf("тегов не может быть больше %d", MaxTagsCount)
	}
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			return fmt.Errorf("тег не может быть пустым")
		}
		if utf8.RuneCountInString(trimmed) > MaxTagLength {
			return fmt.Errorf("тег %q длиннее %d символов", trimmed, MaxTagLength)
		}
		lower := strings.ToLower(trimmed)
		if _, ok := seen[lower]; ok {
			return fmt.Errorf("тег %q указан дважды", trimmed)
		}
		seen[lower] = struct{}{}
	}
	return nil
}

// NormalizeTags приводит теги к нижнему регистру и убирает пробелы по краям.
func NormalizeTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		normalized = append(normalized, strings.ToLower(strings.TrimSpace(tag)))
	}
	return normalized
}
