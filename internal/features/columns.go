// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package features

import "github.com/tomtom215/eventpulse/internal/models"

// Base columns, read directly from the event record.
const (
	ColTagsCount             = "tags_count"
	ColPostedDaysBeforeEvent = "posted_days_before_event"
	ColPromotionSpend        = "promotion_spend"
	ColMaxParticipants       = "max_participants"
	ColTicketPrice           = "ticket_price"
	ColOrganizerReputation   = "organizer_reputation"
	ColAvgPastAttendanceRate = "avg_past_attendance_rate"
	ColCTR                   = "ctr"
	ColSocialMentions        = "social_mentions"
	ColWeekday               = "weekday"
)

// Engineered columns, derived from base columns.
const (
	ColPromoPerParticipant      = "promo_per_participant"
	ColPriceToPromoRatio        = "price_to_promo_ratio"
	ColReputationCTRInteraction = "reputation_ctr_interaction"
	ColIsPostedOptimal          = "is_posted_optimal"
	ColIsWeekend                = "is_weekend"
	ColIsLargeEvent             = "is_large_event"
	ColIsFreeEvent              = "is_free_event"
	ColMarketingScore           = "marketing_score"
	ColOrganizerScore           = "organizer_score"
)

// BaseColumns are the raw numeric attributes in vector order.
var BaseColumns = []string{
	ColTagsCount,
	ColPostedDaysBeforeEvent,
	ColPromotionSpend,
	ColMaxParticipants,
	ColTicketPrice,
	ColOrganizerReputation,
	ColAvgPastAttendanceRate,
	ColCTR,
	ColSocialMentions,
	ColWeekday,
}

// EngineeredColumns are appended after the one-hot columns when feature
// engineering is enabled.
var EngineeredColumns = []string{
	ColPromoPerParticipant,
	ColPriceToPromoRatio,
	ColReputationCTRInteraction,
	ColIsPostedOptimal,
	ColIsWeekend,
	ColIsLargeEvent,
	ColIsFreeEvent,
	ColMarketingScore,
	ColOrganizerScore,
}

// CategoryColumn returns the indicator column name for a category.
func CategoryColumn(c models.Category) string {
	return "category_" + string(c)
}

// CityColumn returns the indicator column name for a city size.
func CityColumn(c models.City) string {
	return "city_" + string(c)
}

// Columns returns the full column order for the given feature set.
func Columns(engineered bool) []string {
	cols := make([]string, 0, len(BaseColumns)+len(models.Categories)+len(models.Cities)+len(EngineeredColumns))
	cols = append(cols, BaseColumns...)
	for _, c := range models.Categories {
		cols = append(cols, CategoryColumn(c))
	}
	for _, c := range models.Cities {
		cols = append(cols, CityColumn(c))
	}
	if engineered {
		cols = append(cols, EngineeredColumns...)
	}
	return cols
}

// catalogue is every column the transformer can produce, in canonical order,
// with a reverse index. It is fixed at package init.
var (
	catalogue      = Columns(true)
	catalogueIndex = indexOf(catalogue)
	engineeredFrom = len(catalogue) - len(EngineeredColumns)
)

func indexOf(cols []string) map[string]int {
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		idx[c] = i
	}
	return idx
}

// Known reports whether the transformer can produce the named column.
func Known(column string) bool {
	_, ok := catalogueIndex[column]
	return ok
}
