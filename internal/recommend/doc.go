// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

// Package recommend turns a predicted success probability into organizer advice.
//
// # Rules
//
// Recommend evaluates a fixed, ordered list of hand-tuned rules against the raw
// event record and the probability. Each rule appends at most one
// recommendation, and the output keeps evaluation order:
//
//  1. credibility        (p < 0.6 and reputation < 0.5)          HIGH
//  2. click-through rate (p < 0.6 and ctr < 0.25)                HIGH
//  3. promotion budget   (spend < 200)                           MEDIUM
//  4. social presence    (mentions < 5)                          MEDIUM
//  5. posting time       (posted < 7, else posted > 45)          LOW
//  6. price cut          (price > 300, p < 0.5, revenue gain)    MEDIUM
//  7. capacity           (p > 0.8 and paid)                      LOW
//  8. tags               (tags < 3)                              LOW
//  9. weekend            (weekday < 5 and p < 0.6)               LOW
//  10. general           (nothing above fired)                   LOW
//
// Every rule emits its priority, category and impact as structured fields.
// Text renders one recommendation as a line, marking critical ones. Messages
// are worded so the keyword classification older clients apply to that text
// ("CRITICAL" is high, "consider" or "boost" is medium) agrees with the
// emitted priority.
//
// The package is pure: no I/O, no state, no errors.
package recommend
