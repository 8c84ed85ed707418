package event

import (
	"time"

	"github.com/ehime-live/live-schedule/app/database"
)

// HistoryGroup holds the events recorded on one local calendar day.
type HistoryGroup struct {
	Date   string           `json:"date"`
	Events []database.Event `json:"events"`
}

// GroupHistory groups events by the local date they were recorded,
// keeping the order of the input within and across groups.
func GroupHistory(events []database.Event) []HistoryGroup {
	groups := []HistoryGroup{}
	index := make(map[string]int)

	for _, e := range events {
		day := e.CreatedAt.In(time.Local).Format(time.DateOnly)
		i, ok := index[day]
		if !ok {
			i = len(groups)
			index[day] = i
			groups = append(groups, HistoryGroup{Date: day})
		}
		groups[i].Events = append(groups[i].Events, e)
	}

	return groups
}
