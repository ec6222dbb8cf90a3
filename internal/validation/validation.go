package validation

import (
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	usernameRe   = regexp.MustCompile(`^[\p{L}\p{N}_.-]{2,30}$`)
	inviteCodeRe = regexp.MustCompile(`^[0-9A-F]{8}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return ValidateUsername(fl.Field().String())
	})
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return ValidatePassword(fl.Field().String())
	})
	// Report json names so messages match what the client sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// Error is a failed validation with a message fit for the user.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Message }

// Struct validates a request DTO by its `validate` tags. The first failing
// field is reported.
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return &Error{Message: "요청 형식이 올바르지 않습니다."}
	}
	fe := errs[0]
	return &Error{Field: fe.Field(), Message: messageFor(fe)}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s 항목은 필수입니다.", fe.Field())
	case "username":
		return "사용자 이름은 2~30자의 문자, 숫자, '_', '.', '-'만 사용할 수 있습니다."
	case "password":
		return fmt.Sprintf("비밀번호는 최소 %d자 이상이어야 합니다.", PasswordMinLength())
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s 항목은 최소 %s자 이상이어야 합니다.", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s 항목은 %s 이상이어야 합니다.", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s 항목은 최대 %s자까지 입력할 수 있습니다.", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s 항목은 %s 이하여야 합니다.", fe.Field(), fe.Param())
	case "gt", "gte":
		return fmt.Sprintf("%s 항목의 값이 올바르지 않습니다.", fe.Field())
	default:
		return fmt.Sprintf("%s 항목이 올바르지 않습니다.", fe.Field())
	}
}

func NormalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

func ValidateUsername(username string) bool {
	return usernameRe.MatchString(NormalizeUsername(username))
}

// PasswordMinLength reads PASSWORD_MIN_LENGTH. Values below 4 fall back to 4,
// the length of the temporary password legacy accounts log in with.
func PasswordMinLength() int {
	minStr := os.Getenv("PASSWORD_MIN_LENGTH")
	if minStr == "" {
		return 4
	}
	min, err := strconv.Atoi(minStr)
	if err != nil || min < 4 {
		return 4
	}
	return min
}

func ValidatePassword(password string) bool {
	return len([]rune(password)) >= PasswordMinLength()
}

// NormalizeInviteCode makes invite code lookups case-insensitive.
func NormalizeInviteCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func ValidateInviteCode(code string) bool {
	return inviteCodeRe.MatchString(NormalizeInviteCode(code))
}

// TrimAndLimit trims s and cuts it to at most max runes.
func TrimAndLimit(s string, max int) string {
	s = strings.TrimSpace(s)
	if r := []rune(s); max > 0 && len(r) > max {
		return string(r[:max])
	}
	return s
}
