package meshio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_TriangulatedQuad(t *testing.T) {
	src := `v 1.000000 1.000000 0.000000
v -1.000000 1.000000 0.000000
v 1.000000 -1.000000 0.000000
v -1.000000 -1.000000 0.000000
vn 0.0000 0.0000 1.0000
s off
f 2//1 3//1 1//1
f 2//1 4//1 3//1
`
	data, err := Parse(strings.NewReader(src))
	require.NoError(t, err)

	assert.Len(t, data.Verts, 4)
	assert.Len(t, data.Norms, 1)
	require.Len(t, data.Faces, 2)

	// Indices converted to 0-based.
	assert.Equal(t, 1, data.Faces[0][0].Pos)
	assert.Equal(t, 0, data.Faces[0][0].Norm)
	assert.Equal(t, 2, data.Faces[0][1].Pos)
}

func TestParse_TextureSlotIgnored(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 0 1 0
vn 0 0 1
f 1/7/1 2/8/1 3/9/1
`
	data, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	require.Len(t, data.Faces, 1)
	assert.Equal(t, 0, data.Faces[0][0].Pos)
	assert.Equal(t, 0, data.Faces[0][0].Norm)
}

func TestParse_NonTriangularFaceFatal(t *testing.T) {
	src := `v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vn 0 0 1
f 1//1 2//1 3//1 4//1
`
	_, err := Parse(strings.NewReader(src))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "triangles")
}

func TestParse_Malformed(t *testing.T) {
	for name, src := range map[string]string{
		"no faces":         "v 0 0 0\nvn 0 0 1\n",
		"bad vertex":       "v 0 0\nvn 0 0 1\nf 1//1 1//1 1//1\n",
		"bad face token":   "v 0 0 0\nvn 0 0 1\nf 1 2 3\n",
		"zero-based index": "v 0 0 0\nvn 0 0 1\nf 0//1 1//1 1//1\n",
	} {
		if _, err := Parse(strings.NewReader(src)); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
}
