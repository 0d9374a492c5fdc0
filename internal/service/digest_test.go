// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-slack-notifier/internal/domain/models"
)

func TestComposeDigests_Empty(t *testing.T) {
	assert.Empty(t, ComposeDigests(nil, testNow, time.UTC))
	assert.Empty(t, ComposeDigests([]*models.Meeting{}, testNow, time.UTC))
}

func TestComposeDigests_DropsMeetingsWithoutChannel(t *testing.T) {
	digests := ComposeDigests([]*models.Meeting{
		newMeeting("m1", "No channel", at(10, 0), ""),
		nil,
	}, testNow, time.UTC)

	assert.Empty(t, digests)
}

func TestComposeDigests_OrderingIgnoresInputOrder(t *testing.T) {
	meetings := []*models.Meeting{
		newMeeting("a1", "Standup", at(9, 30), "chan-a"),
		newMeeting("a2", "Review", at(14, 0), "chan-a"),
		newMeeting("b1", "Planning", at(11, 0), "chan-b"),
		newMeeting("b2", "Alpha", at(11, 0), "chan-b"),
		newMeeting("c1", "Retro", at(9, 30), "chan-c"),
	}

	want := ComposeDigests(meetings, testNow, time.UTC)
	require.Len(t, want, 3)

	assert.Equal(t, "chan-a", want[0].ChannelID)
	assert.Equal(t, "chan-c", want[1].ChannelID)
	assert.Equal(t, "chan-b", want[2].ChannelID)
	assert.Equal(t, []string{"a1", "a2"}, want[0].MeetingIDs())
	// Same start: ordered by name.
	assert.Equal(t, []string{"b2", "b1"}, want[2].MeetingIDs())

	rng := rand.New(rand.NewSource(7))
	for range 20 {
		shuffled := append([]*models.Meeting(nil), meetings...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got := ComposeDigests(shuffled, testNow, time.UTC)
		require.Len(t, got, len(want))
		for i := range want {
			assert.Equal(t, want[i].ChannelID, got[i].ChannelID)
			assert.Equal(t, want[i].Text, got[i].Text)
		}
	}
}

func TestRenderDigest(t *testing.T) {
	meetings := []*models.Meeting{
		newMeeting("m1", "Standup", at(9, 5), "chan"),
		newMeeting("m2", "Q&A <live>", at(16, 30), "chan"),
	}

	text := RenderDigest(testNow, meetings, time.UTC)

	assert.Equal(t,
		"Web meetings for 2026-10-16 (Fri)\n"+
			"09:05 <https://meet.example.com/m1|Standup>\n"+
			"16:30 <https://meet.example.com/m2|Q&amp;A &lt;live&gt;>",
		text)
}

func TestRenderDigest_EscapesURL(t *testing.T) {
	m := newMeeting("m1", "Review", at(11, 0), "chan")
	m.URL = "https://meet.example.com/join?id=7&pwd=a>b|c"

	text := RenderDigest(testNow, []*models.Meeting{m}, time.UTC)

	assert.Equal(t,
		"Web meetings for 2026-10-16 (Fri)\n"+
			"11:00 <https://meet.example.com/join?id=7&amp;pwd=a&gt;b%7Cc|Review>",
		text)
}

func TestRenderDigest_UsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	meetings := []*models.Meeting{newMeeting("m1", "Sync", time.Date(2026, 10, 16, 1, 0, 0, 0, time.UTC), "chan")}

	text := RenderDigest(time.Date(2026, 10, 16, 0, 0, 0, 0, tokyo), meetings, tokyo)

	assert.Equal(t, "Web meetings for 2026-10-16 (Fri)\n10:00 <https://meet.example.com/m1|Sync>", text)
}
