// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package training

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// ClassificationMetrics are threshold metrics at p >= 0.5.
type ClassificationMetrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1_score"`
}

// ConfusionMatrix counts test outcomes.
type ConfusionMatrix struct {
	TrueNegatives  int `json:"true_negatives"`
	FalsePositives int `json:"false_positives"`
	FalseNegatives int `json:"false_negatives"`
	TruePositives  int `json:"true_positives"`
}

// Metrics is the evaluation report stored with a trained model.
type Metrics struct {
	Train      ClassificationMetrics `json:"train"`
	Test       ClassificationMetrics `json:"test"`
	TestROCAUC float64               `json:"test_roc_auc"`

	CVROCAUCMean float64   `json:"cv_roc_auc_mean"`
	CVROCAUCStd  float64   `json:"cv_roc_auc_std"`
	CVScores     []float64 `json:"cv_scores"`

	Confusion    ConfusionMatrix `json:"confusion_matrix"`
	TrainSamples int             `json:"train_samples"`
	TestSamples  int             `json:"test_samples"`
}

// Confusion tallies labels against probabilities thresholded at 0.5.
func Confusion(y []int, proba []float64) ConfusionMatrix {
	var cm ConfusionMatrix
	for i, label := range y {
		pred := proba[i] >= 0.5
		switch {
		case label == 1 && pred:
			cm.TruePositives++
		case label == 1:
			cm.FalseNegatives++
		case pred:
			cm.FalsePositives++
		default:
			cm.TrueNegatives++
		}
	}
	return cm
}

// Classification derives accuracy, precision, recall and F1. Ratios with a
// zero denominator are reported as 0.
func Classification(y []int, proba []float64) ClassificationMetrics {
	cm := Confusion(y, proba)
	tp := float64(cm.TruePositives)
	total := float64(len(y))

	var m ClassificationMetrics
	if total > 0 {
		m.Accuracy = (tp + float64(cm.TrueNegatives)) / total
	}
	if d := tp + float64(cm.FalsePositives); d > 0 {
		m.Precision = tp / d
	}
	if d := tp + float64(cm.FalseNegatives); d > 0 {
		m.Recall = tp / d
	}
	if d := m.Precision + m.Recall; d > 0 {
		m.F1 = 2 * m.Precision * m.Recall / d
	}
	return m
}

// ROCAUC computes the area under the ROC curve. Tied scores contribute half
// credit. Both classes must be present.
func ROCAUC(y []int, proba []float64) (float64, error) {
	if len(y) != len(proba) {
		return 0, fmt.Errorf("have %d labels but %d scores", len(y), len(proba))
	}

	type pair struct {
		score float64
		pos   bool
	}
	pairs := make([]pair, len(y))
	var npos int
	for i := range y {
		pairs[i] = pair{score: proba[i], pos: y[i] == 1}
		if y[i] == 1 {
			npos++
		}
	}
	if npos == 0 || npos == len(y) {
		return 0, fmt.Errorf("roc auc is undefined with a single class")
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].score < pairs[j].score })
	scores := make([]float64, len(pairs))
	classes := make([]bool, len(pairs))
	for i, p := range pairs {
		scores[i] = p.score
		classes[i] = p.pos
	}

	tpr, fpr, _ := stat.ROC(nil, scores, classes, nil)
	return integrate.Trapezoidal(fpr, tpr), nil
}

// meanStd returns the mean and population standard deviation.
func meanStd(xs []float64) (float64, float64) {
	return stat.PopMeanStdDev(xs, nil)
}
