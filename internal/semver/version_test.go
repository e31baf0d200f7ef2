package semver

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBump(t *testing.T) {
	tests := []struct {
		name string
		in   SemanticVersion
		kind BumpKind
		want SemanticVersion
	}{
		{"patch", SemanticVersion{0, 0, 81}, BumpPatch, SemanticVersion{0, 0, 82}},
		{"minor resets patch", SemanticVersion{1, 3, 9}, BumpMinor, SemanticVersion{1, 4, 0}},
		{"major resets minor and patch", SemanticVersion{2, 0, 0}, BumpMajor, SemanticVersion{3, 0, 0}},
		{"major from non-zero lower fields", SemanticVersion{1, 7, 3}, BumpMajor, SemanticVersion{2, 0, 0}},
		{"patch from zero", Zero, BumpPatch, SemanticVersion{0, 0, 1}},
		{"out of range kind behaves as patch", SemanticVersion{1, 2, 3}, BumpKind(42), SemanticVersion{1, 2, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Bump(tt.kind)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestBump_Overflow(t *testing.T) {
	top, err := Parse("1.2.9223372036854775807")
	require.NoError(t, err)

	_, err = top.Bump(BumpPatch)
	require.ErrorIs(t, err, ErrVersionOverflow)

	next, err := top.Bump(BumpMinor)
	require.NoError(t, err)
	require.Equal(t, "1.3.0", next.String())

	_, err = SemanticVersion{Major: math.MaxInt64}.Bump(BumpMajor)
	require.ErrorIs(t, err, ErrVersionOverflow)
	_, err = SemanticVersion{Minor: math.MaxInt64}.Bump(BumpMinor)
	require.ErrorIs(t, err, ErrVersionOverflow)
}

func TestBump_DoesNotMutateReceiver(t *testing.T) {
	v := SemanticVersion{Major: 1, Minor: 2, Patch: 3}
	_, _ = v.Bump(BumpMajor)
	require.Equal(t, SemanticVersion{Major: 1, Minor: 2, Patch: 3}, v)
}

func TestBump_UnknownKindEqualsPatch(t *testing.T) {
	for _, s := range []string{"pathc", "MAJORR", "feature", "1"} {
		t.Run(s, func(t *testing.T) {
			kind, fellBack, err := ParseBumpKind(s, PolicyFallbackToPatch)
			require.NoError(t, err)
			require.True(t, fellBack)

			v := SemanticVersion{Major: 4, Minor: 5, Patch: 6}
			want, err := v.Bump(BumpPatch)
			require.NoError(t, err)
			got, err := v.Bump(kind)
			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}
}

func TestCompareTo(t *testing.T) {
	tests := []struct {
		a, b SemanticVersion
		want int
	}{
		{SemanticVersion{1, 0, 0}, SemanticVersion{1, 0, 0}, 0},
		{SemanticVersion{2, 0, 0}, SemanticVersion{1, 9, 9}, 1},
		{SemanticVersion{1, 2, 0}, SemanticVersion{1, 10, 0}, -1},
		{SemanticVersion{1, 2, 4}, SemanticVersion{1, 2, 3}, 1},
		{SemanticVersion{0, 0, 1}, SemanticVersion{0, 0, 2}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.a.String()+"_vs_"+tt.b.String(), func(t *testing.T) {
			require.Equal(t, tt.want, tt.a.CompareTo(tt.b))
		})
	}
}

func TestString(t *testing.T) {
	require.Equal(t, "0.0.0", Zero.String())
	require.Equal(t, "1.22.333", SemanticVersion{Major: 1, Minor: 22, Patch: 333}.String())
}

func TestTagName(t *testing.T) {
	v := SemanticVersion{Major: 0, Minor: 0, Patch: 82}
	require.Equal(t, "v0.0.82", v.TagName("v"))
	require.Equal(t, "release-0.0.82", v.TagName("release-"))
	require.Equal(t, "0.0.82", v.TagName(""))
}

func TestIsZero(t *testing.T) {
	require.True(t, Zero.IsZero())
	require.False(t, SemanticVersion{Patch: 1}.IsZero())
}

func TestMarshalJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		Version SemanticVersion `json:"version"`
		Kind    BumpKind        `json:"kind"`
	}{SemanticVersion{Major: 1, Minor: 4}, BumpMinor})
	require.NoError(t, err)
	require.JSONEq(t, `{"version":"1.4.0","kind":"minor"}`, string(out))
}
