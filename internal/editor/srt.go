package editor

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/saw4405/splat-replay/internal/apperr"
)

// srtCue is one SubRip subtitle block.
type srtCue struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// parseSRT parses SubRip text into an ordered list of cues. Malformed
// blocks are skipped rather than failing the whole parse, since a single
// speech-transcribed cue going missing shouldn't abort the merge.
func parseSRT(content string) []srtCue {
	var cues []srtCue
	for _, block := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		if len(lines) < 2 {
			continue
		}
		timeLineIdx := 1
		if !strings.Contains(lines[0], "-->") {
			// lines[0] is the cue index; timing is on lines[1].
		} else {
			timeLineIdx = 0
		}
		if timeLineIdx >= len(lines) {
			continue
		}
		start, end, ok := parseSRTTiming(lines[timeLineIdx])
		if !ok {
			continue
		}
		text := strings.Join(lines[timeLineIdx+1:], "\n")
		cues = append(cues, srtCue{Start: start, End: end, Text: text})
	}
	return cues
}

func parseSRTTiming(line string) (time.Duration, time.Duration, bool) {
	parts := strings.SplitN(line, "-->", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	start, ok1 := parseSRTTimestamp(strings.TrimSpace(parts[0]))
	end, ok2 := parseSRTTimestamp(strings.TrimSpace(parts[1]))
	return start, end, ok1 && ok2
}

func parseSRTTimestamp(s string) (time.Duration, bool) {
	s = strings.ReplaceAll(s, ",", ".")
	var h, m int
	var sec float64
	if _, err := fmt.Sscanf(s, "%d:%d:%f", &h, &m, &sec); err != nil {
		return 0, false
	}
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(sec*float64(time.Second)), true
}

func formatSRTTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second
	d -= s * time.Second
	ms := d / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

// formatSRT renders cues back into SubRip text with sequential indices.
func formatSRT(cues []srtCue) string {
	var b strings.Builder
	for i, cue := range cues {
		b.WriteString(strconv.Itoa(i + 1))
		b.WriteString("\n")
		b.WriteString(formatSRTTimestamp(cue.Start))
		b.WriteString(" --> ")
		b.WriteString(formatSRTTimestamp(cue.End))
		b.WriteString("\n")
		b.WriteString(cue.Text)
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func shiftCues(cues []srtCue, offset time.Duration) []srtCue {
	shifted := make([]srtCue, len(cues))
	for i, cue := range cues {
		shifted[i] = srtCue{Start: cue.Start + offset, End: cue.End + offset, Text: cue.Text}
	}
	return shifted
}

// mergeSubtitleSources combines one subtitle file per source clip into a
// single SubRip track timed against the concatenated output: clip i's cues
// are shifted by the sum of clips 0..i-1's durations. A nil source
// contributes no cues for its clip's span.
func mergeSubtitleSources(contents []*string, clipDurations []float64) (string, error) {
	if len(contents) != len(clipDurations) {
		return "", apperr.New(apperr.KindInternal, "字幕と動画区間の数が一致しません")
	}
	var merged []srtCue
	var offset time.Duration
	for i, content := range contents {
		if content != nil {
			cues := parseSRT(*content)
			merged = append(merged, shiftCues(cues, offset)...)
		}
		offset += time.Duration(clipDurations[i] * float64(time.Second))
	}
	if len(merged) == 0 {
		return "", nil
	}
	return formatSRT(merged), nil
}
