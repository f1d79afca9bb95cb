package domain

import (
	"strings"
	"time"
)

type Role string

const (
	RoleWorker     Role = "员工"
	RoleSupervisor Role = "主管"
	RoleAdmin      Role = "管理员"
)

type User struct {
	ID                int64     `json:"id"`
	OrganizationID    int64     `json:"organizationID"`
	Username          string    `json:"username"`
	PasswordHash      string    `json:"-"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	Email             string    `json:"email"`
	Role              Role      `json:"role"`
	IsActive          bool      `json:"isActive"`
	ProfileIncomplete bool      `json:"profileIncomplete"` // 导入时自动创建的员工，资料需要主管补全
	CreatedAt         time.Time `json:"createdAt"`
	Version           int32     `json:"-"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
