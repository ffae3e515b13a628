// EventPulse - Event Success Prediction and Organizer Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventpulse

package authz

import (
	"sync"
	"time"
)

// request is one (object, action) pair asked about a subject.
type request struct {
	object, action string
}

type decision struct {
	allowed   bool
	expiresAt time.Time
}

// decisionCache remembers enforcement results per subject. Expired entries
// are dropped on lookup; the key space is bounded by subjects times the
// handful of policy objects and actions.
type decisionCache struct {
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	bySubject map[string]map[request]decision
}

func newDecisionCache(ttl time.Duration) *decisionCache {
	return &decisionCache{
		ttl:       ttl,
		now:       time.Now,
		bySubject: make(map[string]map[request]decision),
	}
}

func (c *decisionCache) get(subject, object, action string) (allowed, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	reqs := c.bySubject[subject]
	d, found := reqs[request{object, action}]
	if !found {
		return false, false
	}
	if c.now().After(d.expiresAt) {
		delete(reqs, request{object, action})
		return false, false
	}
	return d.allowed, true
}

func (c *decisionCache) set(subject, object, action string, allowed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	reqs, ok := c.bySubject[subject]
	if !ok {
		reqs = make(map[request]decision)
		c.bySubject[subject] = reqs
	}
	reqs[request{object, action}] = decision{allowed: allowed, expiresAt: c.now().Add(c.ttl)}
}

// forget drops every decision cached for subject.
func (c *decisionCache) forget(subject string) {
	c.mu.Lock()
	delete(c.bySubject, subject)
	c.mu.Unlock()
}

func (c *decisionCache) reset() {
	c.mu.Lock()
	c.bySubject = make(map[string]map[request]decision)
	c.mu.Unlock()
}

// size counts cached decisions, expired ones included.
func (c *decisionCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, reqs := range c.bySubject {
		n += len(reqs)
	}
	return n
}
