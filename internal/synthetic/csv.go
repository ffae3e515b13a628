// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package synthetic

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/tomtom215/eventpulse/internal/models"
)

// CSVHeader is the column layout written by WriteCSV.
var CSVHeader = []string{
	"event_id", "category", "tags_count", "posted_days_before_event", "promotion_spend",
	"max_participants", "ticket_price", "organizer_reputation", "avg_past_attendance_rate",
	"ctr", "social_mentions", "weekday", "city", "checked_in_count", "revenue",
	"attendance_rate", "success",
}

// WriteCSV writes events with a header row.
func WriteCSV(w io.Writer, events []models.LabeledEvent) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range events {
		if err := cw.Write(csvRow(&events[i])); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func csvRow(e *models.LabeledEvent) []string {
	id := ""
	if e.EventID != nil {
		id = strconv.FormatInt(*e.EventID, 10)
	}
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return []string{
		id,
		string(e.Category),
		strconv.Itoa(e.TagsCount),
		strconv.Itoa(e.PostedDaysBeforeEvent),
		f(e.PromotionSpend),
		strconv.Itoa(e.MaxParticipants),
		f(e.TicketPrice),
		f(e.OrganizerReputation),
		f(e.AvgPastAttendanceRate),
		f(e.CTR),
		strconv.Itoa(e.SocialMentions),
		strconv.Itoa(e.Weekday),
		string(e.City),
		strconv.Itoa(e.CheckedInCount),
		f(e.Revenue),
		f(e.AttendanceRate),
		strconv.Itoa(e.Success),
	}
}
