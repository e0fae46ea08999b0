package query

import "time"

const dateLayout = "2006-01-02"

// QuickRanges 支持的快捷日期过滤名称
var QuickRanges = []string{"today", "yesterday", "this_week", "last_7_days", "last_30_days", "this_month", "last_month", "this_year"}

// QuickRange 根据参考时间计算快捷日期区间 [from, to)
func QuickRange(name string, now time.Time) (from, to time.Time, ok bool) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	switch name {
	case "today":
		return day, day.AddDate(0, 0, 1), true
	case "yesterday":
		return day.AddDate(0, 0, -1), day, true
	case "this_week":
		// 周一为一周开始
		monday := day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
		return monday, monday.AddDate(0, 0, 7), true
	case "last_7_days":
		return day.AddDate(0, 0, -6), day.AddDate(0, 0, 1), true
	case "last_30_days":
		return day.AddDate(0, 0, -29), day.AddDate(0, 0, 1), true
	case "this_month":
		return month, month.AddDate(0, 1, 0), true
	case "last_month":
		return month.AddDate(0, -1, 0), month, true
	case "this_year":
		year := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
		return year, year.AddDate(1, 0, 0), true
	}
	return time.Time{}, time.Time{}, false
}

// dateRange 处理 date_from/date_to，日期包含两端
//
// 任一日期格式错误或 from 晚于 to 时返回 None。
func dateRange(column, fromStr, toStr string, loc *time.Location) (Condition, bool) {
	if fromStr == "" && toStr == "" {
		return Condition{}, false
	}

	var from, to time.Time
	var err error
	if fromStr != "" {
		if from, err = time.ParseInLocation(dateLayout, fromStr, loc); err != nil {
			return None(), true
		}
	}
	if toStr != "" {
		if to, err = time.ParseInLocation(dateLayout, toStr, loc); err != nil {
			return None(), true
		}
	}

	switch {
	case fromStr != "" && toStr != "":
		if from.After(to) {
			return None(), true
		}
		return Where(column+" >= ? AND "+column+" < ?", from, to.AddDate(0, 0, 1)), true
	case fromStr != "":
		return Where(column+" >= ?", from), true
	default:
		return Where(column+" < ?", to.AddDate(0, 0, 1)), true
	}
}
