package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUTF16Len(t *testing.T) {
	assert.Equal(t, 5, UTF16Len("hello"))
	assert.Equal(t, 1, UTF16Len("é"))
	assert.Equal(t, 1, UTF16Len("•"))
	assert.Equal(t, 2, UTF16Len("📅"))
}

func TestParseMarkdown(t *testing.T) {
	res := ParseMarkdown("# Today\nCustody: **Parent B**, `ab12` and _soon_\n")

	assert.Equal(t, "Today\nCustody: Parent B, ab12 and soon", res.Text)
	require.Len(t, res.Entities, 4)

	assert.Equal(t, "bold", res.Entities[0].Type)
	assert.Equal(t, 0, res.Entities[0].Offset)
	assert.Equal(t, 5, res.Entities[0].Length)

	assert.Equal(t, "bold", res.Entities[1].Type)
	assert.Equal(t, 15, res.Entities[1].Offset)
	assert.Equal(t, 8, res.Entities[1].Length)

	assert.Equal(t, "code", res.Entities[2].Type)
	assert.Equal(t, 25, res.Entities[2].Offset)

	assert.Equal(t, "italic", res.Entities[3].Type)
	assert.Equal(t, 34, res.Entities[3].Offset)
	assert.Equal(t, 4, res.Entities[3].Length)
}

func TestParseMarkdown_LeavesIdentifiersAlone(t *testing.T) {
	res := ParseMarkdown("type custody_primary, `a_b_c` and 2 * 3 * 4")
	assert.Equal(t, "type custody_primary, a_b_c and 2 * 3 * 4", res.Text)
	require.Len(t, res.Entities, 1)
	assert.Equal(t, "code", res.Entities[0].Type)
}

func TestParseMarkdown_SurrogatePairsShiftOffsets(t *testing.T) {
	res := ParseMarkdown("📅 **Mon**")
	require.Len(t, res.Entities, 1)
	assert.Equal(t, 3, res.Entities[0].Offset)
	assert.Equal(t, 3, res.Entities[0].Length)
}

func TestParseMarkdown_UnclosedMarkers(t *testing.T) {
	res := ParseMarkdown("**open and `tick")
	assert.Equal(t, "**open and `tick", res.Text)
	assert.Empty(t, res.Entities)
}
