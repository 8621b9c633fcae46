package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saw4405/splat-replay/internal/domain/frame"
	"github.com/saw4405/splat-replay/internal/domain/model"
	"github.com/saw4405/splat-replay/internal/matcher"
)

type stubMatcher struct {
	name   string
	result bool
}

func (s stubMatcher) Name() string          { return s.name }
func (s stubMatcher) Match(frame.Frame) bool { return s.result }

type stubOCR struct {
	text string
	err  error
}

func (s stubOCR) Recognize(frame.Frame) (string, error) { return s.text, s.err }

func testFrame() frame.Frame {
	return frame.New(4, 4, make([]byte, 4*4*3))
}

func TestDetectPowerOffDelegatesToNamedMatcher(t *testing.T) {
	a := New(map[string]matcher.Matcher{
		MatcherPowerOff: stubMatcher{name: MatcherPowerOff, result: true},
	}, nil, stubOCR{})
	assert.True(t, a.DetectPowerOff(testFrame()))
}

func TestDetectSessionStartPicksMatcherByGameMode(t *testing.T) {
	a := New(map[string]matcher.Matcher{
		MatcherSessionStartBattle: stubMatcher{result: true},
		MatcherSessionStartSalmon: stubMatcher{result: false},
	}, nil, stubOCR{})
	assert.True(t, a.DetectSessionStart(testFrame(), model.GameModeBattle))
	assert.False(t, a.DetectSessionStart(testFrame(), model.GameModeSalmon))
}

func TestExtractRateParsesOCRText(t *testing.T) {
	a := New(nil, nil, stubOCR{text: "1500"})
	rate, ok := a.ExtractRate(testFrame())
	require.True(t, ok)
	assert.Equal(t, model.RateKindXP, rate.Kind())
}

func TestExtractGameModeMapsJapaneseLabel(t *testing.T) {
	a := New(nil, nil, stubOCR{text: "バンカラマッチ"})
	mode, ok := a.ExtractGameMode(testFrame())
	require.True(t, ok)
	assert.Equal(t, model.GameModeBattle, mode)
}

func TestExtractGameModeUnknownTextFails(t *testing.T) {
	a := New(nil, nil, stubOCR{text: "???"})
	_, ok := a.ExtractGameMode(testFrame())
	assert.False(t, ok)
}
