package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"unicode"

	"github.com/mozillazg/go-pinyin"
	"github.com/shiftboard/hours-import/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const fallbackUsername = "worker"

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")
var digits = "0123456789"

func randomIndex(n int) (int, error) {
	i, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, err
	}
	return int(i.Int64()), nil
}

func GenerateRandomPassword(length int) (string, error) {
	password := make([]rune, length)
	for i := range password {
		idx, err := randomIndex(len(letters))
		if err != nil {
			return "", err
		}
		password[i] = letters[idx]
	}
	return string(password), nil
}

func randomDigits(n int) (string, error) {
	var sb strings.Builder
	for i := 0; i < n; i++ {
		idx, err := randomIndex(len(digits))
		if err != nil {
			return "", err
		}
		sb.WriteByte(digits[idx])
	}
	return sb.String(), nil
}

// UsernameBase 把姓名转换成只含小写字母和数字的用户名前缀。
// 汉字转为拼音，其他无法转写的文字（例如希伯来文）直接忽略。
func UsernameBase(name string) string {
	var sb strings.Builder
	for _, r := range name {
		switch {
		case unicode.Is(unicode.Han, r):
			for _, py := range pinyin.LazyConvert(string(r), nil) {
				sb.WriteString(py)
			}
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			sb.WriteRune(unicode.ToLower(r))
		}
	}

	if sb.Len() == 0 {
		return fallbackUsername
	}
	return sb.String()
}

// GeneratePlaceholderCredentials 为导入时自动创建的员工生成占位登录信息。
// 用户名带随机数字后缀，密码随机生成且不会告诉任何人，员工需要通过重置密码来登录。
func GeneratePlaceholderCredentials(name string, emailDomain string, passwordLength int) (*domain.PlaceholderCredentials, error) {
	suffix, err := randomDigits(6)
	if err != nil {
		return nil, err
	}
	username := fmt.Sprintf("%s_%s", UsernameBase(name), suffix)

	password, err := GenerateRandomPassword(passwordLength)
	if err != nil {
		return nil, err
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &domain.PlaceholderCredentials{
		Username:     username,
		Email:        username + "@" + emailDomain,
		PasswordHash: string(passwordHash),
	}, nil
}
