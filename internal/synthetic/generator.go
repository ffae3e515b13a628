// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

// Package synthetic generates labeled events from closed-form probabilistic
// formulas. It bootstraps training when no real history exists and feeds
// tests and demos. It is never on the serving path.
package synthetic

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/tomtom215/eventpulse/internal/models"
)

// MaxSamples bounds a single generation request.
const MaxSamples = 1_000_000

var (
	cityWeights     = []float64{0.4, 0.35, 0.25}
	capacities      = []int{50, 100, 200, 500, 1000}
	capacityWeights = []float64{0.25, 0.35, 0.20, 0.15, 0.05}
	basePrices      = []float64{0, 50, 100, 200, 500}

	// Indexed by weekday, 0=Monday.
	weekdayBoost = [7]float64{0, 0, 0.05, 0.05, 0.1, 0.2, 0.15}

	categoryBoost = map[models.Category]float64{
		models.CategoryTech:      0.15,
		models.CategoryEducation: 0.1,
		models.CategoryArt:       0.05,
		models.CategorySports:    0.12,
		models.CategoryHealth:    0.08,
		models.CategoryOther:     0,
	}

	cityBoost = map[models.City]float64{
		models.CityLarge:  0.15,
		models.CityMedium: 0.08,
		models.CitySmall:  0,
	}
)

// Generator draws events from a single seeded PCG stream. A Generator is not
// safe for concurrent use; create one per goroutine.
type Generator struct {
	src *rand.PCG
	rng *rand.Rand

	city       distuv.Categorical
	capacity   distuv.Categorical
	tags       distuv.Poisson
	posted     distuv.Exponential
	promotion  distuv.Normal
	reputation distuv.Beta
	past       distuv.Beta
	ctr        distuv.Beta
	noise      distuv.Normal

	next int64
}

// NewGenerator creates a generator. The same seed yields the same sequence.
func NewGenerator(seed uint64) *Generator {
	src := rand.NewPCG(seed, 0x5eed)
	return &Generator{
		src:        src,
		rng:        rand.New(src),
		city:       distuv.NewCategorical(cityWeights, src),
		capacity:   distuv.NewCategorical(capacityWeights, src),
		tags:       distuv.Poisson{Lambda: 3, Src: src},
		posted:     distuv.Exponential{Rate: 1.0 / 15, Src: src},
		promotion:  distuv.Normal{Mu: 250, Sigma: 350, Src: src},
		reputation: distuv.Beta{Alpha: 2, Beta: 2, Src: src},
		past:       distuv.Beta{Alpha: 2.5, Beta: 2, Src: src},
		ctr:        distuv.Beta{Alpha: 1.8, Beta: 5, Src: src},
		noise:      distuv.Normal{Mu: 0, Sigma: 0.08, Src: src},
	}
}

// Generate returns n events. Event IDs continue across calls starting at 1.
func (g *Generator) Generate(n int) ([]models.LabeledEvent, error) {
	if n <= 0 || n > MaxSamples {
		return nil, fmt.Errorf("sample count must be in [1, %d], got %d", MaxSamples, n)
	}
	out := make([]models.LabeledEvent, n)
	for i := range out {
		out[i] = g.Event()
	}
	return out, nil
}

// Generate is a convenience wrapper around a fresh generator.
func Generate(n int, seed uint64) ([]models.LabeledEvent, error) {
	return NewGenerator(seed).Generate(n)
}

// Event draws one labeled event.
func (g *Generator) Event() models.LabeledEvent {
	g.next++
	id := g.next

	category := models.Categories[g.rng.IntN(len(models.Categories))]
	city := models.Cities[int(g.city.Rand())]

	tags := min(int(g.tags.Rand()), 20)
	posted := min(max(1, int(g.posted.Rand())), 365)
	promotion := float64(max(0, int(g.promotion.Rand())))
	capacity := capacities[int(g.capacity.Rand())]

	price := basePrices[g.rng.IntN(len(basePrices))]
	if category == models.CategoryTech {
		price *= 1.2
	}
	price = round(price*(1+g.rng.Float64()*0.3), 2)

	reputation := round(clip(g.reputation.Rand(), 0, 1), 3)
	past := round(clip(g.past.Rand(), 0, 1), 3)
	ctr := round(clip(g.ctr.Rand(), 0, 1), 4)
	social := distuv.Poisson{Lambda: 3 + reputation*8, Src: g.src}
	mentions := int(social.Rand())
	weekday := g.rng.IntN(7)

	record := models.EventRecord{
		EventID:               &id,
		TagsCount:             tags,
		PostedDaysBeforeEvent: posted,
		PromotionSpend:        promotion,
		MaxParticipants:       capacity,
		TicketPrice:           price,
		OrganizerReputation:   reputation,
		AvgPastAttendanceRate: past,
		CTR:                   ctr,
		SocialMentions:        mentions,
		Weekday:               weekday,
		Category:              category,
		City:                  city,
	}

	rate := clip(AttendanceRate(&record)+g.noise.Rand(), 0.05, 0.95)
	checkedIn := int(math.Round(rate * float64(capacity)))

	success := 0
	if float64(checkedIn) >= 0.5*float64(capacity) {
		success = 1
	}

	return models.LabeledEvent{
		EventRecord:    record,
		CheckedInCount: checkedIn,
		Revenue:        round(float64(checkedIn)*price, 2),
		AttendanceRate: rate,
		Success:        success,
	}
}

// AttendanceRate is the noise-free expected attendance rate of a record
// before clipping.
func AttendanceRate(r *models.EventRecord) float64 {
	pricePenalty := 0.05
	if r.TicketPrice > 0 {
		pricePenalty = -0.0003 * r.TicketPrice
	}
	timeBoost := 0.0
	if r.PostedDaysBeforeEvent >= 7 && r.PostedDaysBeforeEvent <= 30 {
		timeBoost = 0.1
	}
	return 0.15 +
		0.45*r.OrganizerReputation +
		0.30*r.AvgPastAttendanceRate +
		0.55*r.CTR +
		0.0015*math.Log1p(r.PromotionSpend) +
		pricePenalty +
		weekdayBoost[r.Weekday] +
		cityBoost[r.City] +
		categoryBoost[r.Category] +
		timeBoost +
		0.02*float64(min(r.TagsCount, 5))
}

func clip(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

func round(x float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(x*pow) / pow
}
