package er

import (
	"testing"

	"github.com/stretchr/testify/require"
)

var testErrType = &ErrorType{Name: "Test"}
var testCode = testErrType.Code("Boom", "things went boom")

func TestNewAndMessage(t *testing.T) {
	e := New("plain failure")
	require.NotNil(t, e)
	require.Equal(t, "plain failure", e.Message())
	require.Nil(t, e.Cause())
}

func TestErrorCodeNew(t *testing.T) {
	e := testCode.New("extra context")
	require.True(t, testCode.Is(e))
	require.Contains(t, e.Error(), "Test.Boom")
	require.Contains(t, e.Error(), "extra context")
}

func TestErrorCodeDefault(t *testing.T) {
	e := testCode.Default()
	require.True(t, testCode.Is(e))
	require.Contains(t, e.Error(), "things went boom")
}

func TestCauseChain(t *testing.T) {
	root := New("root cause")
	wrapped := testCode.New("wrapped", root)
	require.Equal(t, root, wrapped.Cause())
	require.Contains(t, wrapped.Error(), "root cause")
}

func TestIsLoopBreak(t *testing.T) {
	require.True(t, IsLoopBreak(LoopBreak))
	require.False(t, IsLoopBreak(New("not a break")))
}

func TestAddMessage(t *testing.T) {
	e := New("inner")
	e.AddMessage("outer")
	require.Equal(t, "outer: inner", e.Message())
}
