package timer

import (
	"bytes"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	l_error "github.com/lethe-cfd/lethe-dem/lib/error"
)

// fakeClock advances by one second every time it is read.
func fakeClock() func() time.Time {
	t := time.Unix(0, 0)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestSections(t *testing.T) {
	tm := New(End)
	tm.now = fakeClock()

	tm.Enter("search")
	tm.Exit("search")
	tm.Enter("forces")
	tm.Exit("forces")
	tm.Enter("search")
	tm.Exit("search")
	tm.Exit("never entered")

	assert.Equal(t, 2*time.Second, tm.Total("search"))
	assert.Equal(t, time.Second, tm.Total("forces"))
	assert.Equal(t, []string{"search", "forces"}, tm.names)

	buf := &bytes.Buffer{}
	tm.Summary(log.New(buf, "", 0))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "66.67%")
	assert.Contains(t, lines[2], "33.33%")
}

func TestIteration(t *testing.T) {
	buf := &bytes.Buffer{}
	pcout := log.New(buf, "", 0)

	tm := New(Iteration)
	tm.now = fakeClock()
	tm.Enter("integrate")
	tm.Exit("integrate")
	tm.EndIteration(pcout, 1)
	tm.EndIteration(pcout, 2)
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
	assert.Contains(t, buf.String(), "Step 1")

	buf.Reset()
	tm = New(None)
	tm.Enter("integrate")
	tm.Exit("integrate")
	tm.EndIteration(pcout, 1)
	tm.Summary(pcout)
	assert.Equal(t, "", buf.String())
}

func TestParseType(t *testing.T) {
	for _, typ := range []Type{None, Iteration, End} {
		out, err := ParseType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, out)
	}
	_, err := ParseType("sometimes")
	assert.True(t, l_error.IsConfig(err))
}
