package domain

import (
	"strings"
	"time"
)

// Schedule строка buyer_schedule
type Schedule struct {
	ID           int64  `json:"id"`
	BuyerID      int64  `json:"buyer_id"`
	Description  string `json:"description"`
	ScheduleTime string `json:"schedule_time"`
	Priority     string `json:"priority"`
}

const (
	PriorityLow     = "Low"
	PriorityMedium  = "Medium"
	PriorityHigh    = "High"
	ScheduleTimeFmt = "2006-01-02 15:04:05"
)

var Priorities = []string{PriorityHigh, PriorityLow, PriorityMedium}

func IsValidPriority(p string) bool {
	for _, v := range Priorities {
		if v == p {
			return true
		}
	}
	return false
}

// Смещение часового пояса разбирается, но в результат попадает только местное время
var scheduleLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05-0700",
	"2006-01-02 15:04",
	"2006-01-02 15:04Z07:00",
	"2006-01-02",
}

// NormalizeScheduleTime приводит время к "YYYY-MM-DD HH:MM:SS".
// "T" заменяется пробелом, хвостовой "Z" и дробные секунды отбрасываются.
// Нераспознанное значение возвращается как есть после очистки.
func NormalizeScheduleTime(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.ReplaceAll(s, "T", " ")
	s = strings.TrimRight(s, "Z")
	if i := strings.Index(s, "."); i >= 0 {
		s = s[:i]
	}
	for _, layout := range scheduleLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(ScheduleTimeFmt)
		}
	}
	return s
}
