// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package training

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/eventpulse/internal/classifier"
	"github.com/tomtom215/eventpulse/internal/features"
	"github.com/tomtom215/eventpulse/internal/models"
)

// labeledEvents builds a deterministic dataset where success follows the
// organizer reputation.
func labeledEvents(n int) []models.LabeledEvent {
	out := make([]models.LabeledEvent, n)
	for i := range out {
		rep := float64(i%20)/20 + 0.025
		capacity := 50 + (i%7)*50
		e := models.LabeledEvent{
			EventRecord: models.EventRecord{
				TagsCount:             i % 8,
				PostedDaysBeforeEvent: 1 + i%40,
				PromotionSpend:        float64((i * 37) % 900),
				MaxParticipants:       capacity,
				TicketPrice:           float64((i % 5) * 50),
				OrganizerReputation:   rep,
				AvgPastAttendanceRate: float64(i%10) / 10,
				CTR:                   float64(i%9) / 10,
				SocialMentions:        i % 15,
				Weekday:               i % 7,
				Category:              models.Categories[i%len(models.Categories)],
				City:                  models.Cities[i%len(models.Cities)],
			},
		}
		if rep > 0.5 {
			e.Success = 1
			e.CheckedInCount = capacity * 3 / 4
		} else {
			e.CheckedInCount = capacity / 4
		}
		e.AttendanceRate = float64(e.CheckedInCount) / float64(capacity)
		e.Revenue = float64(e.CheckedInCount) * e.TicketPrice
		out[i] = e
	}
	return out
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Params = classifier.Params{NEstimators: 15, MaxDepth: 6, MinSamplesSplit: 2, MinSamplesLeaf: 1, Seed: 3}
	cfg.CVFolds = 3
	cfg.Workers = 2
	return cfg
}

func TestTrain(t *testing.T) {
	t.Parallel()

	p := NewPipeline(zerolog.Nop())
	m, err := p.Train(context.Background(), labeledEvents(200), testConfig())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	if m.Name != "event_success_v2" || m.Version != "2.0.0" {
		t.Errorf("identity = %s/%s", m.Name, m.Version)
	}
	if m.RunID == "" || m.TrainedAt.IsZero() {
		t.Error("run id and trained_at should be set")
	}
	if !reflect.DeepEqual(m.Columns, features.Columns(true)) {
		t.Error("columns should be the engineered catalogue order")
	}
	if len(m.Importances) != len(m.Columns) {
		t.Errorf("len(Importances) = %d, want %d", len(m.Importances), len(m.Columns))
	}
	for i := 1; i < len(m.Importances); i++ {
		if m.Importances[i].Importance > m.Importances[i-1].Importance {
			t.Fatal("importances should be sorted descending")
		}
	}

	mt := m.Metrics
	if mt.TrainSamples != 160 || mt.TestSamples != 40 {
		t.Errorf("samples = %d/%d, want 160/40", mt.TrainSamples, mt.TestSamples)
	}
	if mt.TestROCAUC < 0.8 {
		t.Errorf("TestROCAUC = %v, want >= 0.8 on a reputation-driven dataset", mt.TestROCAUC)
	}
	if len(mt.CVScores) != 3 {
		t.Errorf("len(CVScores) = %d, want 3", len(mt.CVScores))
	}
	cm := mt.Confusion
	if cm.TruePositives+cm.TrueNegatives+cm.FalsePositives+cm.FalseNegatives != mt.TestSamples {
		t.Errorf("confusion matrix %+v does not cover the test set", cm)
	}
	if m.Stats.MaxPromotionSpend == 0 || m.Stats.MaxSocialMentions != 14 {
		t.Errorf("Stats = %+v", m.Stats)
	}
}

func TestTrainIsDeterministic(t *testing.T) {
	t.Parallel()

	p := NewPipeline(zerolog.Nop())
	a, err := p.Train(context.Background(), labeledEvents(120), testConfig())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	b, err := p.Train(context.Background(), labeledEvents(120), testConfig())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if !reflect.DeepEqual(a.Forest, b.Forest) || !reflect.DeepEqual(a.Metrics, b.Metrics) {
		t.Error("training with the same seed should be reproducible")
	}
}

func TestTrainExcludesOutcomeFields(t *testing.T) {
	t.Parallel()

	base := labeledEvents(120)
	leaky := labeledEvents(120)
	for i := range leaky {
		leaky[i].CheckedInCount = 99999 * (i % 3)
		leaky[i].Revenue = 1e9 * float64(i%2)
		leaky[i].AttendanceRate = 0.5
	}

	p := NewPipeline(zerolog.Nop())
	a, err := p.Train(context.Background(), base, testConfig())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	b, err := p.Train(context.Background(), leaky, testConfig())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if !reflect.DeepEqual(a.Forest, b.Forest) {
		t.Error("outcome fields should not influence the fitted model")
	}
	for _, c := range a.Columns {
		if c == "checked_in_count" || c == "revenue" || c == "attendance_rate" {
			t.Errorf("column %s leaks the outcome", c)
		}
	}
}

func TestTrainWithoutFeatureEngineering(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.FeatureEngineering = false
	m, err := NewPipeline(zerolog.Nop()).Train(context.Background(), labeledEvents(120), cfg)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if len(m.Columns) != 19 {
		t.Errorf("len(Columns) = %d, want 19", len(m.Columns))
	}

	r := labeledEvents(1)[0].EventRecord
	if _, err := m.Score(&r); err != nil {
		t.Errorf("Score: %v", err)
	}
}

func TestTrainWithGridSearch(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Tune = true
	cfg.Grid = Grid{
		NEstimators:     []int{5, 8},
		MaxDepth:        []int{3},
		MinSamplesSplit: []int{2, 6},
		MinSamplesLeaf:  []int{1},
	}
	m, err := NewPipeline(zerolog.Nop()).Train(context.Background(), labeledEvents(120), cfg)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if m.Search == nil || len(m.Search.Trials) != 4 {
		t.Fatal("search result should record every combination")
	}
	if m.Params != m.Search.Best {
		t.Errorf("Params = %+v, want best %+v", m.Params, m.Search.Best)
	}
	if !reflect.DeepEqual(m.Metrics.CVScores, m.Search.Trials[m.Search.BestIndex].FoldScores) {
		t.Error("cv scores should come from the winning trial")
	}
}

func TestTrainFailures(t *testing.T) {
	t.Parallel()

	oneClass := labeledEvents(40)
	for i := range oneClass {
		oneClass[i].Success = 0
	}
	// One positive lands in the training partition, fewer than the folds.
	sparse := append(labeledEvents(10), labeledEvents(12)[10:]...)

	badCfg := testConfig()
	badCfg.TestSize = 1.5

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name    string
		ctx     context.Context
		records []models.LabeledEvent
		cfg     Config
		stage   string
	}{
		{"empty", context.Background(), nil, testConfig(), StagePrepare},
		{"single class", context.Background(), oneClass, testConfig(), StagePrepare},
		{"bad config", context.Background(), labeledEvents(40), badCfg, StageConfig},
		{"too few for folds", context.Background(), sparse, testConfig(), StageSplit},
		{"cancelled", cancelled, labeledEvents(60), testConfig(), StageEvaluate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPipeline(zerolog.Nop()).Train(tt.ctx, tt.records, tt.cfg)
			var tf *models.TrainingFailure
			if !errors.As(err, &tf) {
				t.Fatalf("err = %v, want TrainingFailure", err)
			}
			if tf.Stage != tt.stage {
				t.Errorf("Stage = %s, want %s", tf.Stage, tt.stage)
			}
		})
	}
}
