// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package models

// Category is the event category. The set is closed; the feature transformer
// emits one indicator column per value.
type Category string

const (
	CategoryTech      Category = "TECH"
	CategoryEducation Category = "EDUCATION"
	CategoryArt       Category = "ART"
	CategorySports    Category = "SPORTS"
	CategoryHealth    Category = "HEALTH"
	CategoryOther     Category = "OTHER"
)

// Categories lists every category in one-hot column order.
var Categories = []Category{
	CategoryTech,
	CategoryEducation,
	CategoryArt,
	CategorySports,
	CategoryHealth,
	CategoryOther,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// City is the size class of the host city.
type City string

const (
	CitySmall  City = "small"
	CityMedium City = "medium"
	CityLarge  City = "large"
)

// Cities lists every city size in one-hot column order.
var Cities = []City{CitySmall, CityMedium, CityLarge}

// Valid reports whether c is a known city size.
func (c City) Valid() bool {
	for _, known := range Cities {
		if c == known {
			return true
		}
	}
	return false
}

// EventRecord holds the raw attributes of one event.
//
// Bounds are enforced once, at the boundary, by the validation package. Values
// outside their range are rejected, never clamped. Components downstream of the
// boundary assume a valid record.
type EventRecord struct {
	// EventID is an optional caller identifier echoed back in results.
	EventID *int64 `json:"event_id,omitempty"`

	// TagsCount is the number of tags attached to the listing.
	TagsCount int `json:"tags_count" validate:"gte=0,lte=20"`

	// PostedDaysBeforeEvent is how many days before the event it was published.
	PostedDaysBeforeEvent int `json:"posted_days_before_event" validate:"gte=1,lte=365"`

	// PromotionSpend is the promotion budget in currency units.
	PromotionSpend float64 `json:"promotion_spend" validate:"finite,gte=0"`

	// MaxParticipants is the event capacity.
	MaxParticipants int `json:"max_participants" validate:"gte=1"`

	// TicketPrice is the ticket price; zero marks a free event.
	TicketPrice float64 `json:"ticket_price" validate:"finite,gte=0"`

	// OrganizerReputation is the organizer's reputation score in [0,1].
	OrganizerReputation float64 `json:"organizer_reputation" validate:"finite,gte=0,lte=1"`

	// AvgPastAttendanceRate is the organizer's historical attendance rate in [0,1].
	AvgPastAttendanceRate float64 `json:"avg_past_attendance_rate" validate:"finite,gte=0,lte=1"`

	// CTR is the listing click-through rate in [0,1].
	CTR float64 `json:"ctr" validate:"finite,gte=0,lte=1"`

	// SocialMentions counts social media mentions.
	SocialMentions int `json:"social_mentions" validate:"gte=0"`

	// Weekday is the day of the week, 0=Monday through 6=Sunday.
	Weekday int `json:"weekday" validate:"gte=0,lte=6"`

	Category Category `json:"category" validate:"required,oneof=TECH EDUCATION ART SPORTS HEALTH OTHER"`
	City     City     `json:"city" validate:"required,oneof=small medium large"`
}

// IsWeekend reports whether the event falls on Saturday or Sunday.
func (r *EventRecord) IsWeekend() bool {
	return r.Weekday == 5 || r.Weekday == 6
}

// LabeledEvent is a historical or synthetic event with its observed outcome.
//
// CheckedInCount, Revenue and AttendanceRate are derived from the outcome and
// leak the label. Training reads only the embedded EventRecord and Success.
type LabeledEvent struct {
	EventRecord

	CheckedInCount int     `json:"checked_in_count"`
	Revenue        float64 `json:"revenue"`
	AttendanceRate float64 `json:"attendance_rate"`

	// Success is 1 when at least half of capacity checked in.
	Success int `json:"success" validate:"oneof=0 1"`
}

// Features returns the label-free part of the event.
func (e *LabeledEvent) Features() EventRecord {
	return e.EventRecord
}
