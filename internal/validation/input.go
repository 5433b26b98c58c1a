package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Константы валидации
const (
	MinCompanyNameLength = 2
	MaxCompanyNameLength = 200
	MinContactNameLength = 2
	MaxContactNameLength = 100
	MinProjectTitleLength = 3
	MaxProjectTitleLength = 200
	MaxRequirementsLength = 5000
	MaxCategoryLength = 100
	MaxRegionLength = 100
	MaxCommentLength = 2000
	MinPrice = 0.0
	MaxPrice = 100000000.0 // 100 миллионов
	MaxBudgetLimit = 100000000.0
	MinDeliveryDays = 1
	MaxDeliveryDays = 365
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

	// Базовая проверка формата
	if !strings.Contains(email, "@") {
		return fmt.Errorf("email должен содержать символ @")
	}

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

	if !strings.Contains(domainPart, ".") {
		return fmt.Errorf("доменная часть email должна содержать точку")
	}

	// Проверка на валидные символы в локальной части
	emailRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !emailRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	// Проверка на валидные символы в доменной части
	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateCompanyName проверяет название компании.
func ValidateCompanyName(name string) error {
	if name == "" {
		return fmt.Errorf("название компании обязательно")
	}

	name = strings.TrimSpace(name)

	if err := ValidateLength("название компании", name, MinCompanyNameLength, MaxCompanyNameLength); err != nil {
		return err
	}

	return nil
}

// ValidateContactName проверяет имя контактного лица.
func ValidateContactName(name string) error {
	if name == "" {
		return fmt.Errorf("имя контактного лица обязательно")
	}

	name = strings.TrimSpace(name)

	if err := ValidateLength("имя контактного лица", name, MinContactNameLength, MaxContactNameLength); err != nil {
		return err
	}

	// Только буквы, цифры, пробелы и некоторые спецсимволы
	nameRegex := regexp.MustCompile(`^[a-zA-Zа-яА-ЯёЁ0-9\s\-_.,]+$`)
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("имя контактного лица содержит недопустимые символы")
	}

	return nil
}

// ValidateProjectTitle проверяет заголовок проекта закупки.
func ValidateProjectTitle(title string) error {
	if title == "" {
		return fmt.Errorf("заголовок проекта обязателен")
	}

	title = strings.TrimSpace(title)

	if err := ValidateLength("заголовок проекта", title, MinProjectTitleLength, MaxProjectTitleLength); err != nil {
		return err
	}

	return nil
}

// ValidateRequirements проверяет требования к закупке.
func ValidateRequirements(requirements *string) error {
	if requirements != nil && *requirements != "" {
		req := strings.TrimSpace(*requirements)
		if err := ValidateLength("требования", req, 0, MaxRequirementsLength); err != nil {
			return err
		}
	}
	return nil
}

// ValidateCategory проверяет категорию закупки.
func ValidateCategory(category *string) error {
	if category != nil && *category != "" {
		cat := strings.TrimSpace(*category)
		if err := ValidateLength("категория", cat, 0, MaxCategoryLength); err != nil {
			return err
		}
	}
	return nil
}

// ValidateRegion проверяет регион поставки.
func ValidateRegion(region *string) error {
	if region != nil && *region != "" {
		reg := strings.TrimSpace(*region)
		if err := ValidateLength("регион", reg, 0, MaxRegionLength); err != nil {
			return err
		}
	}
	return nil
}

// ValidateBudgetLimit проверяет бюджетный потолок проекта.
func ValidateBudgetLimit(limit *float64) error {
	if limit != nil {
		if *limit <= 0 {
			return fmt.Errorf("бюджетный потолок должен быть положительным")
		}
		if *limit > MaxBudgetLimit {
			return fmt.Errorf("бюджетный потолок не может превышать %.0f", MaxBudgetLimit)
		}
	}
	return nil
}

// ValidateDeadline проверяет срок приёма заявок: при создании проекта он
// должен быть в будущем.
func ValidateDeadline(deadline time.Time) error {
	if deadline.IsZero() {
		return fmt.Errorf("срок приёма заявок обязателен")
	}
	if !deadline.After(time.Now()) {
		return fmt.Errorf("срок приёма заявок должен быть в будущем")
	}
	return nil
}

// ValidatePrice проверяет цену заявки.
func ValidatePrice(price float64) error {
	if price <= MinPrice {
		return fmt.Errorf("цена должна быть положительной")
	}
	if price > MaxPrice {
		return fmt.Errorf("цена не может превышать %.0f", MaxPrice)
	}
	return nil
}

// ValidateDeliveryDays проверяет срок поставки в днях.
func ValidateDeliveryDays(days int) error {
	if days < MinDeliveryDays {
		return fmt.Errorf("срок поставки должен быть не менее %d дня", MinDeliveryDays)
	}
	if days > MaxDeliveryDays {
		return fmt.Errorf("срок поставки не может превышать %d дней", MaxDeliveryDays)
	}
	return nil
}

// ValidateComment проверяет комментарий к заявке.
func ValidateComment(comment *string) error {
	if comment != nil && *comment != "" {
		c := strings.TrimSpace(*comment)
		if err := ValidateLength("комментарий", c, 0, MaxCommentLength); err != nil {
			return err
		}
	}
	return nil
}
