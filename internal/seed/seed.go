package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/shiftboard/hours-import/internal/domain"
	"github.com/shiftboard/hours-import/internal/utils"
	"github.com/xuri/excelize/v2"
)

type WorkerCreator interface {
	CreateUser(ctx context.Context, user *domain.User) error
}

// SeedWorkers 向组织插入 n 个随机员工，返回成功插入的数量
func SeedWorkers(ctx context.Context, repo WorkerCreator, orgID int64, n int, password, emailDomain string) int {
	cnt := 0
	for i := 0; i < n; i++ {
		user, err := utils.GenerateRandomWorker(orgID, password, emailDomain)
		if err != nil {
			slog.Error("无法生成随机员工", "error", err)
			continue
		}

		if err := repo.CreateUser(ctx, user); err != nil {
			slog.Error("无法插入员工", "username", user.Username, "error", err)
			continue
		}

		cnt++
	}

	return cnt
}

// 一周七天的星期字母，与考勤机导出一致
var weekdayLetters = []string{"א", "ב", "ג", "ד", "ה", "ו", "ש"}

type sampleShift struct {
	day        string
	start, end string
	hours      float64
}

func randomShifts() []sampleShift {
	days := rand.Perm(len(weekdayLetters))[:rand.Intn(4)+2]
	shifts := make([]sampleShift, 0, len(days))
	for _, d := range days {
		startHour := rand.Intn(12) + 7
		length := rand.Intn(5) + 4
		endHour := (startHour + length) % 24
		shifts = append(shifts, sampleShift{
			day:   weekdayLetters[d] + "'",
			start: fmt.Sprintf("%02d:00", startHour),
			end:   fmt.Sprintf("%02d:30", endHour),
			hours: float64(length) + 0.5,
		})
	}
	return shifts
}

// BuildSampleExport 生成一个考勤机格式的 xlsx 文件，每个姓名一个员工块。
// 列从右到左排列：星期、离开时间、进入时间、工时；每个块以汇总行结束。
func BuildSampleExport(names []string) ([]byte, error) {
	wb := excelize.NewFile()
	defer func() { _ = wb.Close() }()

	sheet := "נוכחות"
	if err := wb.SetSheetName(wb.GetSheetName(wb.GetActiveSheetIndex()), sheet); err != nil {
		return nil, err
	}

	rows := [][]interface{}{{"דוח נוכחות חודשי"}, {}}
	for _, name := range names {
		rows = append(rows, []interface{}{"עובד: " + name})

		total := 0.0
		for _, s := range randomShifts() {
			rows = append(rows, []interface{}{s.day, s.end, s.start, fmt.Sprintf("%.2f", s.hours)})
			total += s.hours
		}
		rows = append(rows, []interface{}{`סה"כ`, fmt.Sprintf("%.2f", total), "100%"}, []interface{}{})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := wb.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := wb.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
