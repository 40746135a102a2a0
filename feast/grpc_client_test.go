package feast

import (
	"testing"

	feastsdk "github.com/feast-dev/feast/sdk/go"
	"github.com/feast-dev/feast/sdk/go/protos/feast/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSDKValue(t *testing.T) {
	tests := []struct {
		name  string
		input *types.Value
		want  any
	}{
		{"nil", nil, nil},
		{"null", &types.Value{}, nil},
		{"double", feastsdk.DoubleVal(0.25), 0.25},
		{"float", feastsdk.FloatVal(0.5), 0.5},
		{"int64", feastsdk.Int64Val(7), int64(7)},
		{"int32", feastsdk.Int32Val(3), int64(3)},
		{"bool", feastsdk.BoolVal(true), true},
		{"string", feastsdk.StrVal("covid"), "covid"},
		{"bytes", feastsdk.BytesVal([]byte("movie")), "movie"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fromSDKValue(tt.input))
		})
	}
}

func TestToSDKValue(t *testing.T) {
	assert.Equal(t, int64(1001), toSDKValue(int64(1001)).GetInt64Val())
	assert.Equal(t, int64(42), toSDKValue(42).GetInt64Val())
	assert.Equal(t, "x", toSDKValue("x").GetStringVal())
	assert.Equal(t, 1.5, toSDKValue(1.5).GetDoubleVal())
}

func TestParseEndpoint(t *testing.T) {
	host, port, err := parseEndpoint("grpc://feast.local:6570")
	require.NoError(t, err)
	assert.Equal(t, "feast.local", host)
	assert.Equal(t, 6570, port)

	host, port, err = parseEndpoint("feast.local")
	require.NoError(t, err)
	assert.Equal(t, "feast.local", host)
	assert.Equal(t, DefaultPort, port)

	_, _, err = parseEndpoint("feast.local:abc")
	assert.Error(t, err)
}
