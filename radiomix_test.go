package radiomix

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetermineDelimiter(t *testing.T) {
	assert.Equal(t, '\t', DetermineDelimiter(strings.NewReader("Patient\tSite\nP1\tA\nP2\tB\nP3\tA\n")))
	assert.Equal(t, ',', DetermineDelimiter(strings.NewReader("Patient,Site\nP1,A\nP2,B\nP3,A\n")))
	assert.Equal(t, ';', DetermineDelimiter(strings.NewReader("Patient;Site\nP1;A\nP2;B\nP3;A\n")))
}

func TestExpandHome(t *testing.T) {
	p, err := ExpandHome("/data/nii")
	require.NoError(t, err)
	assert.Equal(t, "/data/nii", p)

	p, err = ExpandHome("~/nii")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(p, "/nii"))
	assert.False(t, strings.HasPrefix(p, "~"))
}
