package xmlfile_test

import (
	"strings"
	"testing"

	"github.com/relkin/chessdbot/pkg/board"
	"github.com/relkin/chessdbot/pkg/xmlfile"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleECO = `<eco>
  <opening>
    <move san="e4"/>
    <move san="e5"/>
    <move san="Nf3"/>
  </opening>
  <opening>
    <move san="e4"/>
    <move san="c5"/>
  </opening>
  <opening>
    <move san="Nf3"/>
  </opening>
</eco>`

func TestLoadOpenings(t *testing.T) {
	zt := board.NewZobristTable(3)
	lines, err := xmlfile.LoadOpenings(strings.NewReader(sampleECO), zt)
	require.NoError(t, err)
	require.Len(t, lines, 3)

	assert.Equal(t, "e2e4", lines[0][0])
	assert.Equal(t, "e7e5", lines[0][1])
	assert.Equal(t, "g1f3", lines[0][2])

	assert.Equal(t, "e2e4", lines[1][0])
	assert.Equal(t, "c7c5", lines[1][1])

	assert.Equal(t, "g1f3", lines[2][0])
}

func TestLoadOpenings_rejectsUnresolvableSAN(t *testing.T) {
	const bad = `<eco><opening><move san="Qh5"/></opening></eco>`
	zt := board.NewZobristTable(3)
	_, err := xmlfile.LoadOpenings(strings.NewReader(bad), zt)
	assert.Error(t, err)
}
