package keypath

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want Path
	}{
		{
			name: "empty text is root",
			text: "",
			want: nil,
		},
		{
			name: "single segment",
			text: "server",
			want: Path{"server"},
		},
		{
			name: "nested segments",
			text: "database.pool.size",
			want: Path{"database", "pool", "size"},
		},
	}

	for _, testInfo := range tests {
		testInfo := testInfo
		t.Run(testInfo.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testInfo.want, Parse(testInfo.text))
		})
	}
}

func TestString(t *testing.T) {
	t.Parallel()

	assert.Empty(t, Path(nil).String())
	assert.Equal(t, "a", Path{"a"}.String())
	assert.Equal(t, "a.b.c", Path{"a", "b", "c"}.String())
}

func TestIsRoot(t *testing.T) {
	t.Parallel()

	assert.True(t, Path(nil).IsRoot())
	assert.True(t, Parse("").IsRoot())
	assert.False(t, Parse("a").IsRoot())
}

func TestJoin(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		left  Path
		right Path
		want  Path
	}{
		{
			name:  "both root",
			left:  nil,
			right: nil,
			want:  nil,
		},
		{
			name:  "root left",
			left:  nil,
			right: Path{"a"},
			want:  Path{"a"},
		},
		{
			name:  "root right",
			left:  Path{"a"},
			right: nil,
			want:  Path{"a"},
		},
		{
			name:  "both populated",
			left:  Path{"a", "b"},
			right: Path{"c"},
			want:  Path{"a", "b", "c"},
		},
	}

	for _, testInfo := range tests {
		testInfo := testInfo
		t.Run(testInfo.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testInfo.want, testInfo.left.Join(testInfo.right))
		})
	}
}

func TestJoin_DoesNotMutateReceiver(t *testing.T) {
	t.Parallel()

	left := Parse("a.b")
	right := Parse("c")

	joined := left.Join(right)
	joined[0] = "mutated"

	assert.Equal(t, Path{"a", "b"}, left)
}

func TestChild(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Path{"a"}, Path(nil).Child("a"))
	assert.Equal(t, Path{"a", "b"}, Path{"a"}.Child("b"))
}

func TestParse_StringRoundTrip(t *testing.T) {
	t.Parallel()

	segment := rapid.StringMatching(`[a-zA-Z0-9_-]+`)

	rapid.Check(t, func(t *rapid.T) {
		segments := rapid.SliceOfN(segment, 1, 8).Draw(t, "segments")

		path := Path(segments)
		parsed := Parse(path.String())

		if len(parsed) != len(path) {
			t.Fatalf("round trip changed length: %v vs %v", parsed, path)
		}

		for i := range path {
			if parsed[i] != path[i] {
				t.Fatalf("segment %d changed: %q vs %q", i, parsed[i], path[i])
			}
		}

		if strings.Count(path.String(), Separator) != len(path)-1 {
			t.Fatalf("unexpected separator count in %q", path.String())
		}
	})
}
