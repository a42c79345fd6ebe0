package ceremony

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePRFOutput_Shapes(t *testing.T) {
	want := []byte{0, 1, 2, 127, 128, 254, 255}

	var arr [32]byte
	copy(arr[:], want)

	var fromJSONArray []any
	require.NoError(t, json.Unmarshal([]byte(`[0,1,2,127,128,254,255]`), &fromJSONArray))

	var fromJSONObject map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{"0":0,"1":1,"2":2,"3":127,"4":128,"5":254,"6":255}`), &fromJSONObject))

	tests := []struct {
		name string
		in   any
		want []byte
	}{
		{"bytes", want, want},
		{"array", arr, arr[:]},
		{"array pointer", &arr, arr[:]},
		{"base64url raw", base64.RawURLEncoding.EncodeToString(want), want},
		{"base64url padded", base64.URLEncoding.EncodeToString(want), want},
		{"base64 std", base64.StdEncoding.EncodeToString(want), want},
		{"ints", []int{0, 1, 2, 127, 128, 254, 255}, want},
		{"json array", fromJSONArray, want},
		{"json typed array object", fromJSONObject, want},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePRFOutput(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizePRFOutput_DoesNotAlias(t *testing.T) {
	in := []byte{1, 2, 3}
	out, err := NormalizePRFOutput(in)
	require.NoError(t, err)

	out[0] = 9
	assert.Equal(t, byte(1), in[0])
}

func TestNormalizePRFOutput_Invalid(t *testing.T) {
	var nilArr *[32]byte

	tests := []struct {
		name string
		in   any
	}{
		{"nil", nil},
		{"nil array pointer", nilArr},
		{"empty bytes", []byte{}},
		{"empty string", ""},
		{"not base64", "%%%not-base64%%%"},
		{"int out of range", []int{1, 256}},
		{"negative", []int{-1}},
		{"fraction", []any{1.5}},
		{"non number element", []any{"a"}},
		{"object non numeric key", map[string]any{"a": 1.0}},
		{"object gap", map[string]any{"0": 1.0, "2": 2.0}},
		{"unsupported type", 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizePRFOutput(tt.in)
			assert.ErrorIs(t, err, ErrInvalidPRFOutput)
		})
	}
}
