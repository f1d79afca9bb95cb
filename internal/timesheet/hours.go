package timesheet

import (
	"github.com/shiftboard/hours-import/internal/domain"
	"github.com/shopspring/decimal"
)

func roundHours(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func addHours(a, b float64) float64 {
	return decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).Round(2).InexactFloat64()
}

func sumShiftHours(shifts []domain.ParsedShift) float64 {
	total := decimal.Zero
	for _, shift := range shifts {
		total = total.Add(decimal.NewFromFloat(shift.TotalHours))
	}
	return total.Round(2).InexactFloat64()
}

// spanAcrossMidnight 计算上下班时间之间的时长，下班时间早于上班时间时视为跨夜班
func spanAcrossMidnight(start, end clockTime) float64 {
	startMinutes := int64(start.hour*60 + start.minute)
	endMinutes := int64(end.hour*60 + end.minute)
	diff := endMinutes - startMinutes
	if diff < 0 {
		diff += 24 * 60
	}
	return decimal.NewFromInt(diff).Div(decimal.NewFromInt(60)).Round(2).InexactFloat64()
}
