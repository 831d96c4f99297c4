package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStored_LikePatterns(t *testing.T) {
	tests := []struct {
		op      string
		value   string
		wantOp  Operator
		wantVal string
	}{
		{"LIKE", "%mouse%", OpContains, "mouse"},
		{"LIKE", "mouse%", OpStartsWith, "mouse"},
		{"LIKE", "%mouse", OpEndsWith, "mouse"},
		{"LIKE", "mouse", OpContains, "mouse"},
		{"NOT LIKE", "%mouse%", OpNotContains, "mouse"},
		{"NOT LIKE", "mouse%", OpNotContains, "mouse"},
	}

	for _, tt := range tests {
		op, val, err := ParseStored(tt.op, tt.value)
		require.NoError(t, err, "%s %s", tt.op, tt.value)
		assert.Equal(t, tt.wantOp, op)
		assert.Equal(t, tt.wantVal, val)
	}
}

func TestParseStored_PassThroughOperators(t *testing.T) {
	for _, raw := range []string{"=", "!=", ">", ">=", "<", "<=", "BETWEEN", "NOT BETWEEN", "IN", "NOT IN"} {
		op, val, err := ParseStored(raw, "42")
		require.NoError(t, err, raw)
		assert.Equal(t, Operator(raw), op)
		assert.Equal(t, "42", val)
	}
}

func TestParseStored_Unknown(t *testing.T) {
	_, _, err := ParseStored("MATCHES", "x")
	require.Error(t, err)
}

func TestEncodeStored(t *testing.T) {
	tests := []struct {
		op      Operator
		value   string
		wantOp  string
		wantVal string
	}{
		{OpContains, "mouse", "LIKE", "%mouse%"},
		{OpNotContains, "mouse", "NOT LIKE", "%mouse%"},
		{OpStartsWith, "mouse", "LIKE", "mouse%"},
		{OpEndsWith, "mouse", "LIKE", "%mouse"},
		{OpEq, "10", "=", "10"},
		{OpNotBetween, "1", "NOT BETWEEN", "1"},
	}

	for _, tt := range tests {
		op, val := EncodeStored(tt.op, tt.value)
		assert.Equal(t, tt.wantOp, op)
		assert.Equal(t, tt.wantVal, val)
	}
}

func TestStored_RoundTrip(t *testing.T) {
	for _, op := range []Operator{
		OpEq, OpNotEq, OpGt, OpGte, OpLt, OpLte,
		OpBetween, OpNotBetween,
		OpContains, OpNotContains, OpStartsWith, OpEndsWith,
		OpIn, OpNotIn,
	} {
		storedOp, storedVal := EncodeStored(op, "widget")
		gotOp, gotVal, err := ParseStored(storedOp, storedVal)
		require.NoError(t, err, op)
		assert.Equal(t, op, gotOp, "operator %s", op)
		assert.Equal(t, "widget", gotVal, "operator %s", op)
	}
}
