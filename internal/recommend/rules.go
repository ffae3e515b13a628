// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package recommend

import (
	"fmt"
	"math"

	"github.com/tomtom215/eventpulse/internal/models"
)

// Thresholds used by the rules.
const (
	LowProbability       = 0.6
	PriceCutProbability  = 0.5
	StrongProbability    = 0.8
	PositiveProbability  = 0.7
	MinReputation        = 0.5
	MinCTR               = 0.25
	MinPromotionSpend    = 200.0
	TargetPromotionSpend = 400.0
	MinSocialMentions    = 5
	MinPostedDays        = 7
	MaxPostedDays        = 45
	PremiumTicketPrice   = 300.0
	MinTags              = 3
	PriceCutFactor       = 0.75
	CapacityGrowth       = 1.2

	// MaxPromotionImpact caps the estimated gain from a bigger budget.
	MaxPromotionImpact = 0.15
)

// rule appends zero or one recommendation.
type rule func(r *models.EventRecord, p float64) (models.Recommendation, bool)

var rules = []rule{
	credibilityRule,
	clickThroughRule,
	promotionRule,
	socialRule,
	postingTimeRule,
	priceCutRule,
	capacityRule,
	tagsRule,
	weekendRule,
}

// Recommend returns recommendations in rule evaluation order. When no rule
// fires exactly one GENERAL recommendation is returned.
func Recommend(r *models.EventRecord, p float64) []models.Recommendation {
	out := make([]models.Recommendation, 0, 4)
	for _, fn := range rules {
		if rec, ok := fn(r, p); ok {
			out = append(out, rec)
		}
	}
	if len(out) == 0 {
		out = append(out, generalRecommendation(p))
	}
	return out
}

func credibilityRule(r *models.EventRecord, p float64) (models.Recommendation, bool) {
	if p >= LowProbability || r.OrganizerReputation >= MinReputation {
		return models.Recommendation{}, false
	}
	return models.Recommendation{
		Priority: models.PriorityHigh,
		Category: models.AdviceCredibility,
		Message: fmt.Sprintf("Improve organizer credibility (current: %.2f). "+
			"Showcase past events, testimonials and achievements.", r.OrganizerReputation),
		Critical: true,
	}, true
}

func clickThroughRule(r *models.EventRecord, p float64) (models.Recommendation, bool) {
	if p >= LowProbability || r.CTR >= MinCTR {
		return models.Recommendation{}, false
	}
	return models.Recommendation{
		Priority: models.PriorityHigh,
		Category: models.AdviceMarketing,
		Message: fmt.Sprintf("Improve click-through rate (current: %.2f%%). "+
			"Use eye-catching visuals, a compelling title and a clear value proposition.", r.CTR*100),
		Critical: true,
	}, true
}

// PromotionImpact is the estimated success gain from raising the budget to
// TargetPromotionSpend, clamped to [0, MaxPromotionImpact].
func PromotionImpact(spend float64) float64 {
	return math.Max(0, math.Min(MaxPromotionImpact, (TargetPromotionSpend-spend)*0.0003))
}

func promotionRule(r *models.EventRecord, _ float64) (models.Recommendation, bool) {
	if r.PromotionSpend >= MinPromotionSpend {
		return models.Recommendation{}, false
	}
	impact := PromotionImpact(r.PromotionSpend)
	return models.Recommendation{
		Priority: models.PriorityMedium,
		Category: models.AdviceMarketing,
		Message: fmt.Sprintf("Consider increasing the promotion budget to ₹%.0f+ (current: ₹%.0f). "+
			"Expected success boost: +%.1f%%", TargetPromotionSpend, r.PromotionSpend, impact*100),
		Impact: fmt.Sprintf("+%.1f%%", impact*100),
	}, true
}

func socialRule(r *models.EventRecord, _ float64) (models.Recommendation, bool) {
	if r.SocialMentions >= MinSocialMentions {
		return models.Recommendation{}, false
	}
	return models.Recommendation{
		Priority: models.PriorityMedium,
		Category: models.AdviceMarketing,
		Message: "Boost social media presence. Target: 10+ mentions. " +
			"Use hashtags, influencer partnerships and engaging content.",
	}, true
}

func postingTimeRule(r *models.EventRecord, _ float64) (models.Recommendation, bool) {
	switch {
	case r.PostedDaysBeforeEvent < MinPostedDays:
		return models.Recommendation{
			Priority: models.PriorityLow,
			Category: models.AdviceTiming,
			Message: fmt.Sprintf("Post the event earlier (current: %d days). "+
				"Sweet spot: 7-30 days before the event for maximum reach.", r.PostedDaysBeforeEvent),
		}, true
	case r.PostedDaysBeforeEvent > MaxPostedDays:
		return models.Recommendation{
			Priority: models.PriorityLow,
			Category: models.AdviceTiming,
			Message:  "Event posted too early. Plan a refresh campaign closer to the event date.",
		}, true
	default:
		return models.Recommendation{}, false
	}
}

// PriceCutGain compares revenue at a 25% lower price (assuming 70% fill)
// against expected revenue at the current price. The second result reports
// whether the cut is worth recommending.
func PriceCutGain(r *models.EventRecord, p float64) (float64, bool) {
	capacity := float64(r.MaxParticipants)
	lower := 0.7 * capacity * (r.TicketPrice * PriceCutFactor)
	current := p * capacity * r.TicketPrice
	return lower - current, lower > current
}

func priceCutRule(r *models.EventRecord, p float64) (models.Recommendation, bool) {
	if r.TicketPrice <= PremiumTicketPrice || p >= PriceCutProbability {
		return models.Recommendation{}, false
	}
	gain, ok := PriceCutGain(r, p)
	if !ok {
		return models.Recommendation{}, false
	}
	return models.Recommendation{
		Priority: models.PriorityMedium,
		Category: models.AdvicePricing,
		Message: fmt.Sprintf("Consider reducing the price from ₹%.0f to ₹%.0f. Expected revenue increase: ₹%.0f",
			r.TicketPrice, r.TicketPrice*PriceCutFactor, gain),
		Impact: fmt.Sprintf("₹%.0f", gain),
	}, true
}

func capacityRule(r *models.EventRecord, p float64) (models.Recommendation, bool) {
	if p <= StrongProbability || r.TicketPrice <= 0 {
		return models.Recommendation{}, false
	}
	target := int(float64(r.MaxParticipants) * CapacityGrowth)
	return models.Recommendation{
		Priority: models.PriorityLow,
		Category: models.AdviceCapacity,
		Message: fmt.Sprintf("Strong performance predicted. Raise capacity from %d to %d to maximize revenue.",
			r.MaxParticipants, target),
		Impact: fmt.Sprintf("+%d seats", target-r.MaxParticipants),
	}, true
}

func tagsRule(r *models.EventRecord, _ float64) (models.Recommendation, bool) {
	if r.TagsCount >= MinTags {
		return models.Recommendation{}, false
	}
	return models.Recommendation{
		Priority: models.PriorityLow,
		Category: models.AdviceDiscovery,
		Message:  "Add more relevant tags (target: 4-6) to improve discoverability.",
	}, true
}

func weekendRule(r *models.EventRecord, p float64) (models.Recommendation, bool) {
	if r.IsWeekend() || p >= LowProbability {
		return models.Recommendation{}, false
	}
	return models.Recommendation{
		Priority: models.PriorityLow,
		Category: models.AdviceTiming,
		Message:  "Move the event to the weekend (Saturday or Sunday) for better attendance.",
	}, true
}

func generalRecommendation(p float64) models.Recommendation {
	msg := "Event metrics are moderate. Focus on the overall marketing strategy."
	if p >= PositiveProbability {
		msg = "Event setup looks great. No major changes recommended."
	}
	return models.Recommendation{
		Priority: models.PriorityLow,
		Category: models.AdviceGeneral,
		Message:  msg,
	}
}
