// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"sync"
	"time"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain/models"
	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/query"
)

// Friday 2026-10-16 08:00 UTC.
var testNow = time.Date(2026, time.October, 16, 8, 0, 0, 0, time.UTC)

func testConfig() ServiceConfig {
	cfg := DefaultServiceConfig()
	cfg.Clock = func() time.Time { return testNow }
	return cfg
}

func at(hour, minute int) time.Time {
	return time.Date(testNow.Year(), testNow.Month(), testNow.Day(), hour, minute, 0, 0, time.UTC)
}

func newMeeting(id, name string, start time.Time, channelID string) *models.Meeting {
	m := &models.Meeting{
		ID:             id,
		Name:           name,
		StartDateTime:  start,
		URL:            "https://meet.example.com/" + id,
		RegisteredBy:   "tester",
		SlackChannelID: channelID,
	}
	m.Normalize(time.UTC)
	return m
}

// memoryMeetings is an in-memory MeetingRepository applying predicates the
// way the key-value store does.
type memoryMeetings struct {
	mu       sync.Mutex
	meetings map[string]*models.Meeting
	findErr  error
	// deleteErr fails deletion of specific ids.
	deleteErr map[string]error
	deleted   []string
}

func newMemoryMeetings(meetings ...*models.Meeting) *memoryMeetings {
	r := &memoryMeetings{meetings: map[string]*models.Meeting{}, deleteErr: map[string]error{}}
	for _, m := range meetings {
		r.meetings[m.ID] = m
	}
	return r
}

func (r *memoryMeetings) Find(_ context.Context, p query.Predicate[models.Meeting]) ([]*models.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	all := make([]*models.Meeting, 0, len(r.meetings))
	for _, m := range r.meetings {
		all = append(all, m)
	}
	return query.Filter(all, p), nil
}

func (r *memoryMeetings) Get(_ context.Context, id string) (*models.Meeting, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meetings[id]
	if !ok {
		return nil, domain.ErrMeetingNotFound
	}
	return m, nil
}

func (r *memoryMeetings) Create(_ context.Context, m *models.Meeting) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.meetings[m.ID] = m
	return nil
}

func (r *memoryMeetings) Delete(_ context.Context, id, partitionKey string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.deleteErr[id]; err != nil {
		return err
	}
	if m, ok := r.meetings[id]; ok && m.Date == partitionKey {
		delete(r.meetings, id)
	}
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *memoryMeetings) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.meetings))
	for id := range r.meetings {
		ids = append(ids, id)
	}
	return ids
}

type memoryChannels struct {
	channels map[string]*models.Channel
	findErr  error
	// matched records the channel ids returned by Find.
	matched []string
}

func newMemoryChannels(channels ...*models.Channel) *memoryChannels {
	r := &memoryChannels{channels: map[string]*models.Channel{}}
	for _, c := range channels {
		r.channels[c.ID] = c
	}
	return r
}

func (r *memoryChannels) Find(_ context.Context, p query.Predicate[models.Channel]) ([]*models.Channel, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	var out []*models.Channel
	for _, c := range r.channels {
		if p(c) {
			out = append(out, c)
			r.matched = append(r.matched, c.ID)
		}
	}
	return out, nil
}

func (r *memoryChannels) Get(_ context.Context, id string) (*models.Channel, error) {
	c, ok := r.channels[id]
	if !ok {
		return nil, domain.ErrChannelNotFound
	}
	return c, nil
}

func (r *memoryChannels) Create(_ context.Context, c *models.Channel) error {
	r.channels[c.ID] = c
	return nil
}

func (r *memoryChannels) Delete(_ context.Context, id string) error {
	delete(r.channels, id)
	return nil
}

// scriptedPoster answers each webhook with a fixed status and records calls.
type scriptedPoster struct {
	mu       sync.Mutex
	statuses map[string]int
	errs     map[string]error
	calls    map[string][]string
}

func newScriptedPoster(statuses map[string]int) *scriptedPoster {
	return &scriptedPoster{statuses: statuses, errs: map[string]error{}, calls: map[string][]string{}}
}

func (p *scriptedPoster) Post(_ context.Context, url, text string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[url] = append(p.calls[url], text)
	if err := p.errs[url]; err != nil {
		return 0, err
	}
	if status, ok := p.statuses[url]; ok {
		return status, nil
	}
	return 200, nil
}

func (p *scriptedPoster) callCount(url string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls[url])
}

func (p *scriptedPoster) totalCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		n += len(c)
	}
	return n
}

type recordingSleeper struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *recordingSleeper) Sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.waits = append(s.waits, d)
	return nil
}
