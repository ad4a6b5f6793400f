package outcome

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Message(t *testing.T) {
	err := NewTimeout("open library menu", "waited %s", "10s").WithPattern("library.png")
	assert.Equal(t, `[TIMEOUT] open library menu: waited 10s (pattern "library.png")`, err.Error())

	withCause := NewFormat("read pref", "bad row").WithCause(errors.New("no separator"))
	assert.Equal(t, "[PROTOCOL_FORMAT] read pref: bad row: no separator", withCause.Error())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, Success, KindOf(nil))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, NotFound, KindOf(NewNotFound("find", "absent")))
	assert.Equal(t, Timeout, KindOf(fmt.Errorf("outer: %w", NewTimeout("wait", "expired"))))
}

func TestWrap_PreservesKindAndPattern(t *testing.T) {
	inner := NewTimeout("wait", "expired").WithPattern("home_button.png")
	err := Wrap(inner, "quit", "browser still around")

	require.Error(t, err)
	assert.Equal(t, Timeout, KindOf(err))
	assert.Equal(t, "home_button.png", PatternOf(err))
	assert.True(t, errors.Is(err, inner))

	var tagged *Error
	require.True(t, errors.As(err, &tagged))
	assert.Equal(t, "quit", tagged.Action)
}

func TestWrap_UntaggedBecomesSubstrate(t *testing.T) {
	cause := errors.New("xclip missing")
	err := Wrap(cause, "copy to clipboard", "clipboard read failed")
	assert.Equal(t, Substrate, KindOf(err))
	assert.False(t, IsAbsent(err))
	assert.ErrorIs(t, err, cause)

	// a second wrap keeps the kind
	assert.Equal(t, Substrate, KindOf(Wrap(err, "navigate", "cannot navigate")))
	assert.Nil(t, Wrap(nil, "noop", "unused"))
}

func TestErrorsIs_MatchesByKind(t *testing.T) {
	err := fmt.Errorf("ctx: %w", NewAmbiguous("region from bounds", "left anchor right of right anchor"))
	assert.True(t, errors.Is(err, &Error{Kind: AmbiguousPrecondition}))
	assert.True(t, errors.Is(err, &Error{Kind: AmbiguousPrecondition, Action: "region from bounds"}))
	assert.False(t, errors.Is(err, &Error{Kind: NotFound}))
	assert.False(t, errors.Is(err, &Error{Kind: AmbiguousPrecondition, Action: "other"}))
}

func TestIsAbsent(t *testing.T) {
	assert.True(t, IsAbsent(NewNotFound("a", "b")))
	assert.True(t, IsAbsent(NewTimeout("a", "b")))
	assert.False(t, IsAbsent(NewFormat("a", "b")))
	assert.False(t, IsAbsent(NewSubstrate("a", "b")))
	assert.False(t, IsAbsent(nil))
}
