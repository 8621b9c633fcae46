package speech

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "00:00:00,000", formatTimestamp(0))
	assert.Equal(t, "00:00:01,500", formatTimestamp(1.5))
	assert.Equal(t, "01:02:03,004", formatTimestamp(3723.004))
}

func TestEncodeSRTNumbersBlocksInOrder(t *testing.T) {
	entries := []Entry{
		{Text: "やられた！", StartSeconds: 1, EndSeconds: 2},
		{Text: "ナイス！", StartSeconds: 3, EndSeconds: 4.5},
	}

	out := encodeSRT(entries)

	assert.Equal(t, "1\n00:00:01,000 --> 00:00:02,000\nやられた！\n\n2\n00:00:03,000 --> 00:00:04,500\nナイス！\n\n", out)
}

func TestEncodeSRTEmpty(t *testing.T) {
	assert.Equal(t, "", encodeSRT(nil))
}
