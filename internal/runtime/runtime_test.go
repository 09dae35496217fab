package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atlas/internal/value"
)

func TestEvalProducesSameResultOnBothEngines(t *testing.T) {
	const src = `
		var total = 0;
		var i = 0;
		while (i < 5) {
			total = total + i;
			i = i + 1;
		}
		total;
	`
	for _, mode := range []ExecutionMode{ModeInterpreter, ModeVM} {
		rt := New(mode)
		res, err := rt.Eval(src)
		require.Nil(t, err, "mode %v", mode)
		n, ok := res.(value.Number)
		require.True(t, ok, "mode %v: expected a number, got %#v", mode, res)
		assert.Equal(t, float64(10), float64(n), "mode %v", mode)
	}
}

func TestEvalParseErrorReportsParseKind(t *testing.T) {
	rt := New(ModeInterpreter)
	_, err := rt.Eval("var = ;")
	require.NotNil(t, err)
	assert.Equal(t, ErrParse, err.Kind)
}

func TestCallInvokesUserDefinedFunction(t *testing.T) {
	rt := New(ModeVM)
	_, err := rt.Eval(`fn double(x) { return x * 2; }`)
	require.Nil(t, err)
	res, cErr := rt.Call("double", []value.Value{value.Number(21)})
	require.Nil(t, cErr)
	n, ok := res.(value.Number)
	require.True(t, ok, "expected a number, got %#v", res)
	assert.Equal(t, float64(42), float64(n))
}

func TestRegisterFunctionIsCallable(t *testing.T) {
	rt := New(ModeInterpreter)
	rt.RegisterFunction("hostGreet", 1, func(args []value.Value) (value.Value, error) {
		name := args[0].(value.String)
		return value.String("hello, " + string(name)), nil
	})
	res, err := rt.Eval(`hostGreet("atlas");`)
	require.Nil(t, err)
	s, ok := res.(value.String)
	require.True(t, ok, "expected a string, got %#v", res)
	assert.Equal(t, "hello, atlas", string(s))
}

func TestGetSetGlobalRoundTrips(t *testing.T) {
	rt := New(ModeVM)
	rt.SetGlobal("x", value.Number(7))
	v, ok := rt.GetGlobal("x")
	require.True(t, ok, "expected global x to be set")
	n, ok := v.(value.Number)
	require.True(t, ok, "expected a number, got %#v", v)
	assert.Equal(t, float64(7), float64(n))
}

func TestCallGoConvertsPlainGoValues(t *testing.T) {
	rt := New(ModeInterpreter)
	_, err := rt.Eval(`fn addOne(x) { return x + 1; }`)
	require.Nil(t, err)
	var out float64
	require.NoError(t, rt.CallGo("addOne", &out, 4.0))
	assert.Equal(t, float64(5), out)
}

func TestSandboxedDeniesIO(t *testing.T) {
	rt := Sandboxed(ModeInterpreter)
	_, err := rt.Eval(`print "should not be allowed";`)
	assert.NotNil(t, err, "expected a security violation in a sandboxed runtime")
}
