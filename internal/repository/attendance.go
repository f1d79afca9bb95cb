package repository

import "context"

// RecordHours 写入一条出勤记录，derivedFromImport 标记记录是否来自工时导入
func (r *Repository) RecordHours(ctx context.Context, userID, orgID int64, totalHours float64, derivedFromImport bool) error {
	query := `
		INSERT INTO attendance_records (user_id, organization_id, total_hours, derived_from_import)
		VALUES ($1, $2, $3, $4)
	`

	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	if _, err := r.dbpool.ExecContext(ctx, query, userID, orgID, totalHours, derivedFromImport); err != nil {
		return err
	}

	return nil
}
