// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain/models"
)

const (
	digestHeaderLayout = "2006-01-02 (Mon)"
	digestTimeLayout   = "15:04"
)

var slackEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// linkEscaper also percent-encodes "|", which would end the url part of a link.
var linkEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "|", "%7C")

// compareMeetings orders by start time, then name, then id.
func compareMeetings(a, b *models.Meeting) int {
	if c := a.StartDateTime.Compare(b.StartDateTime); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// ComposeDigests groups the day's meetings by Slack channel and renders one
// digest per channel. Groups are ordered by their earliest meeting, ties
// broken by channel id; meetings without a channel are dropped.
func ComposeDigests(meetings []*models.Meeting, day time.Time, loc *time.Location) []models.Digest {
	if loc == nil {
		loc = time.UTC
	}

	sorted := make([]*models.Meeting, 0, len(meetings))
	for _, m := range meetings {
		if m != nil && m.HasChannel() {
			sorted = append(sorted, m)
		}
	}
	if len(sorted) == 0 {
		return nil
	}
	slices.SortStableFunc(sorted, compareMeetings)

	var digests []models.Digest
	index := make(map[string]int)
	for _, m := range sorted {
		i, ok := index[m.SlackChannelID]
		if !ok {
			i = len(digests)
			index[m.SlackChannelID] = i
			digests = append(digests, models.Digest{ChannelID: m.SlackChannelID})
		}
		digests[i].Meetings = append(digests[i].Meetings, m)
	}

	for i := range digests {
		slices.SortStableFunc(digests[i].Meetings, compareMeetings)
		digests[i].Text = RenderDigest(day, digests[i].Meetings, loc)
	}

	slices.SortStableFunc(digests, func(a, b models.Digest) int {
		if c := a.EarliestStart().Compare(b.EarliestStart()); c != 0 {
			return c
		}
		return cmp.Compare(a.ChannelID, b.ChannelID)
	})

	return digests
}

// RenderDigest renders the Slack message text for one channel.
func RenderDigest(day time.Time, meetings []*models.Meeting, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Web meetings for %s", day.In(loc).Format(digestHeaderLayout))
	for _, m := range meetings {
		fmt.Fprintf(&b, "\n%s <%s|%s>",
			m.StartDateTime.In(loc).Format(digestTimeLayout),
			linkEscaper.Replace(m.URL),
			slackEscaper.Replace(m.Name),
		)
	}
	return b.String()
}
