package domain

// DirectoryEntry 是员工名录中用于姓名匹配的最小视图
type DirectoryEntry struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (e DirectoryEntry) DisplayName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

// PlaceholderCredentials 自动创建员工时使用的占位登录信息
type PlaceholderCredentials struct {
	Username     string
	Email        string
	PasswordHash string
}

type AttendanceRecord struct {
	ID                int64   `json:"id"`
	UserID            int64   `json:"userID"`
	OrganizationID    int64   `json:"organizationID"`
	TotalHours        float64 `json:"totalHours"`
	DerivedFromImport bool    `json:"derivedFromImport"`
}
