package account

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// emailPattern は画面側と同じ緩いメール形式チェックです。
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const tagLooseEmail = "loosemail"

// SignupForm は新規登録フォームの入力です。
type SignupForm struct {
	Username        string `form:"username" validate:"required"`
	Email           string `form:"email" validate:"required"`
	Password        string `form:"password" validate:"required,min=8"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password"`
	Code            string `form:"code" validate:"required"`
}

// Fields はサーバーへ送る multipart フィールドを返します。確認用パスワードは送りません。
func (f SignupForm) Fields() map[string]string {
	return map[string]string{
		"username": f.Username,
		"email":    f.Email,
		"password": f.Password,
		"code":     f.Code,
	}
}

func (f SignupForm) normalized() SignupForm {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	f.Code = strings.TrimSpace(f.Code)
	return f
}

// LoginForm はログインフォームの入力です。
type LoginForm struct {
	Email    string `form:"email" validate:"required,loosemail"`
	Password string `form:"password" validate:"required"`
}

type emailInput struct {
	Email string `form:"email" validate:"required,loosemail"`
}

// ValidationError は入力チェックの結果です。Fields はフィールド名から表示文言への対応です。
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "入力内容に誤りがあります: " + strings.Join(parts, "; ")
}

// Message は指定フィールドの表示文言を返します。
func (e *ValidationError) Message(field string) string {
	return e.Fields[field]
}

// messages はフォームごとの (フィールド, タグ) → 文言の対応です。
type messages map[string]map[string]string

var signupMessages = messages{
	"username": {"required": "Please enter your Username."},
	"email":    {"required": "Please enter your Email address."},
	"password": {
		"required": "Please enter your Password.",
		"min":      "Password must be at least 8 characters long.",
	},
	"confirm_password": {
		"required": "Please re-enter your password for confirmation.",
		"eqfield":  "Passwords do not match!",
	},
	"code": {"required": "Please enter the verification code."},
}

var loginMessages = messages{
	"email": {
		"required":    "Please enter your email address.",
		tagLooseEmail: "Please enter a valid email address.",
	},
	"password": {"required": "Please enter your password."},
}

var codeMessages = messages{
	"email": {
		"required":    "Please enter your Email address first!",
		tagLooseEmail: "Please enter a valid email address",
	},
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			if name := fld.Tag.Get("form"); name != "" {
				return name
			}
			return fld.Name
		})
		_ = v.RegisterValidation(tagLooseEmail, func(fl validator.FieldLevel) bool {
			return emailPattern.MatchString(fl.Field().String())
		})
		validate = v
	})
	return validate
}

// check は s を検証し、失敗したフィールドを msgs の文言で ValidationError にまとめます。
func check(s any, msgs messages, skip func(field, tag string) bool) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("入力チェックに失敗しました: %w", err)
	}

	fields := make(map[string]string)
	for _, fe := range verrs {
		if skip != nil && skip(fe.Field(), fe.Tag()) {
			continue
		}
		msg := msgs[fe.Field()][fe.Tag()]
		if msg == "" {
			msg = fmt.Sprintf("%s is invalid", fe.Field())
		}
		fields[fe.Field()] = msg
	}
	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

// ValidateSignup は新規登録フォームを検証します。
// パスワード不一致は両方が入力されているときだけ報告するのだ。
func ValidateSignup(form SignupForm) error {
	form = form.normalized()
	return check(form, signupMessages, func(field, tag string) bool {
		return field == "confirm_password" && tag == "eqfield" && form.Password == ""
	})
}

// ValidateLogin はログインフォームを検証します。
func ValidateLogin(email, password string) error {
	form := LoginForm{Email: strings.TrimSpace(email), Password: strings.TrimSpace(password)}
	return check(form, loginMessages, nil)
}

// ValidateEmail は認証コード送信前のメールアドレスを検証します。
func ValidateEmail(email string) error {
	return check(emailInput{Email: strings.TrimSpace(email)}, codeMessages, nil)
}
