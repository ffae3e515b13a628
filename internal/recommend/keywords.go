// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package recommend

import "github.com/tomtom215/eventpulse/internal/models"

// CriticalMarker prefixes the plain-text form of critical recommendations.
const CriticalMarker = "CRITICAL: "

// Text renders a recommendation as a single line for plain-text consumers
// such as predictctl -format text.
func Text(rec models.Recommendation) string {
	if rec.Critical {
		return CriticalMarker + rec.Message
	}
	return rec.Message
}
