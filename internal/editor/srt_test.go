package editor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleSRT = `1
00:00:01,000 --> 00:00:02,500
first cue

2
00:00:03,000 --> 00:00:04,000
second cue
`

func TestParseSRTRoundTrip(t *testing.T) {
	cues := parseSRT(sampleSRT)
	require.Len(t, cues, 2)
	assert.Equal(t, time.Second, cues[0].Start)
	assert.Equal(t, 2500*time.Millisecond, cues[0].End)
	assert.Equal(t, "first cue", cues[0].Text)
	assert.Equal(t, "second cue", cues[1].Text)

	rendered := formatSRT(cues)
	reparsed := parseSRT(rendered)
	require.Len(t, reparsed, 2)
	assert.Equal(t, cues[0].Start, reparsed[0].Start)
	assert.Equal(t, cues[1].End, reparsed[1].End)
}

func TestShiftCuesAddsOffsetToBothEnds(t *testing.T) {
	cues := parseSRT(sampleSRT)
	shifted := shiftCues(cues, 10*time.Second)
	assert.Equal(t, 11*time.Second, shifted[0].Start)
	assert.Equal(t, 12500*time.Millisecond, shifted[0].End)
}

func TestMergeSubtitleSourcesShiftsSecondClipByFirstDuration(t *testing.T) {
	first := sampleSRT
	second := "1\n00:00:00,500 --> 00:00:01,000\nthird cue\n"
	merged, err := mergeSubtitleSources([]*string{&first, &second}, []float64{5.0, 3.0})
	require.NoError(t, err)

	cues := parseSRT(merged)
	require.Len(t, cues, 3)
	assert.Equal(t, "third cue", cues[2].Text)
	assert.Equal(t, 5*time.Second+500*time.Millisecond, cues[2].Start)
}

func TestMergeSubtitleSourcesSkipsNilEntries(t *testing.T) {
	merged, err := mergeSubtitleSources([]*string{nil, nil}, []float64{1.0, 1.0})
	require.NoError(t, err)
	assert.Empty(t, merged)
}

func TestMergeSubtitleSourcesRejectsMismatchedLengths(t *testing.T) {
	_, err := mergeSubtitleSources([]*string{nil}, []float64{1.0, 2.0})
	assert.Error(t, err)
}
