package utils

import (
	"math/rand"

	"github.com/shiftboard/hours-import/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonFirstNames = []string{
	"דנה", "יוסי", "מיכל", "אבי", "נועה", "רוני", "שירה", "עומר", "תמר", "איתי",
	"Dana", "Michal", "Avi", "Omer",
	"伟", "芳", "敏", "杰",
}
var commonLastNames = []string{
	"כהן", "לוי", "מזרחי", "פרץ", "ביטון", "אברהם", "פרידמן", "אזולאי",
	"Katz", "Levi", "Cohen",
	"王", "李", "张",
}

func GenerateRandomWorkerName() (string, string) {
	return commonFirstNames[rand.Intn(len(commonFirstNames))], commonLastNames[rand.Intn(len(commonLastNames))]
}

// GenerateRandomWorker 生成一个用于测试数据的员工，所有随机员工共用同一个密码
func GenerateRandomWorker(orgID int64, password string, emailDomainName string) (*domain.User, error) {
	firstName, lastName := GenerateRandomWorkerName()
	suffix, err := randomDigits(rand.Intn(3) + 1)
	if err != nil {
		return nil, err
	}
	username := UsernameBase(firstName+lastName) + suffix

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	return &domain.User{
		OrganizationID: orgID,
		Username:       username,
		PasswordHash:   string(passwordHash),
		FirstName:      firstName,
		LastName:       lastName,
		Email:          username + "@" + emailDomainName,
		Role:           domain.RoleWorker,
	}, nil
}
