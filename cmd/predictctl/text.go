// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/tomtom215/eventpulse/internal/models"
	"github.com/tomtom215/eventpulse/internal/recommend"
)

// printText writes predictions as an indented summary for terminals. Other
// results fall back to JSON.
func printText(w io.Writer, v interface{}) error {
	var b strings.Builder
	switch res := v.(type) {
	case *models.PredictionResult:
		writePrediction(&b, res)
	case *models.BatchPredictionResult:
		fmt.Fprintf(&b, "%d events\n", res.TotalEvents)
		for i := range res.Predictions {
			b.WriteString("\n")
			writePrediction(&b, &res.Predictions[i])
		}
	default:
		return printJSON(w, v)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writePrediction(b *strings.Builder, res *models.PredictionResult) {
	event := "event"
	if res.EventID != nil {
		event = fmt.Sprintf("event %d", *res.EventID)
	}
	outcome := "unlikely to succeed"
	if res.Label == 1 {
		outcome = "likely to succeed"
	}
	fmt.Fprintf(b, "%s: %s (p=%.4f, %s confidence)\n", event, outcome, res.Probability, res.Confidence)
	fmt.Fprintf(b, "  expected attendance %d, revenue %.2f\n", res.ExpectedAttendance, res.ExpectedRevenue)
	fmt.Fprintf(b, "  model %s %s\n", res.ModelName, res.ModelVersion)
	for _, rec := range res.Recommendations {
		fmt.Fprintf(b, "  - [%s] %s\n", rec.Priority, recommend.Text(rec))
	}
}
