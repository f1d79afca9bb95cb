package repository

import (
	"context"

	"github.com/shiftboard/hours-import/internal/domain"
)

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `
		SELECT id, organization_id, password_hash, first_name, last_name, email, role, is_active, profile_incomplete, created_at, version
		FROM users WHERE username = $1
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	user := &domain.User{
		Username: username,
	}

	dst := []any{&user.ID, &user.OrganizationID, &user.PasswordHash, &user.FirstName, &user.LastName, &user.Email, &user.Role, &user.IsActive, &user.ProfileIncomplete, &user.CreatedAt, &user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, username).Scan(dst...); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *Repository) CreateUser(ctx context.Context, user *domain.User) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		INSERT INTO users (organization_id, username, password_hash, first_name, last_name, email, role, profile_incomplete)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, is_active, created_at, version
	`

	args := []any{user.OrganizationID, user.Username, user.PasswordHash, user.FirstName, user.LastName, user.Email, user.Role, user.ProfileIncomplete}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.IsActive, &user.CreatedAt, &user.Version); err != nil {
		return err
	}

	return nil
}

// FindActiveWorkers 返回组织内所有在职员工，按 id 排序保证匹配结果稳定
func (r *Repository) FindActiveWorkers(ctx context.Context, orgID int64) ([]domain.DirectoryEntry, error) {
	query := `
		SELECT id, first_name, last_name FROM users
		WHERE organization_id = $1 AND role = $2 AND is_active = TRUE
		ORDER BY id
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, orgID, domain.RoleWorker)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.DirectoryEntry, 0)
	for rows.Next() {
		e := domain.DirectoryEntry{}
		if err := rows.Scan(&e.ID, &e.FirstName, &e.LastName); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// CreateWorker 创建一个资料不完整的员工，返回新员工的 id
func (r *Repository) CreateWorker(ctx context.Context, orgID int64, firstName, lastName string, creds *domain.PlaceholderCredentials) (int64, error) {
	user := &domain.User{
		OrganizationID:    orgID,
		Username:          creds.Username,
		PasswordHash:      creds.PasswordHash,
		FirstName:         firstName,
		LastName:          lastName,
		Email:             creds.Email,
		Role:              domain.RoleWorker,
		ProfileIncomplete: true,
	}

	if err := r.CreateUser(ctx, user); err != nil {
		return 0, err
	}

	return user.ID, nil
}

// FindActiveSupervisors 只返回主管，管理员不接收导入通知
func (r *Repository) FindActiveSupervisors(ctx context.Context, orgID int64) ([]*domain.User, error) {
	query := `
		SELECT id, username, first_name, last_name, email, role FROM users
		WHERE organization_id = $1 AND role = $2 AND is_active = TRUE
		ORDER BY id
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, orgID, domain.RoleSupervisor)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user := &domain.User{OrganizationID: orgID, IsActive: true}
		if err := rows.Scan(&user.ID, &user.Username, &user.FirstName, &user.LastName, &user.Email, &user.Role); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}
