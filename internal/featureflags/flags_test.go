package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnabled_BooleanValues(t *testing.T) {
	f := Parse("a=on,b=off,c=true,d=false,e=1,f=0")

	for _, name := range []string{"a", "c", "e"} {
		assert.True(t, f.On(name), name)
	}
	for _, name := range []string{"b", "d", "f", "unknown"} {
		assert.False(t, f.On(name), name)
	}
}

func TestEnabled_Rollout(t *testing.T) {
	f := Parse("always=100%,never=0%,canary=25%,junk=lots%")

	assert.True(t, f.Enabled("always", 1))
	assert.False(t, f.Enabled("never", 1))
	assert.False(t, f.Enabled("junk", 1))
	assert.False(t, f.Enabled("canary", 0), "rollouts need a subject")
	assert.False(t, f.On("canary"))

	first := f.Enabled("canary", 42)
	for range 5 {
		assert.Equal(t, first, f.Enabled("canary", 42), "bucketing is deterministic")
	}

	enabled := 0
	for id := uint(1); id <= 1000; id++ {
		if f.Enabled("canary", id) {
			enabled++
		}
	}
	assert.InDelta(t, 250, enabled, 80)
}

func TestParse(t *testing.T) {
	f := Parse(" bad ,X=on, y = 20% ,z=off,x=off,=on,w= ")
	assert.Equal(t, map[string]string{"x": "off", "y": "20%", "z": "off"}, f.Values())

	var nilFlags *Flags
	assert.False(t, nilFlags.On(LiveFeed))

	defaults := Parse(Defaults)
	assert.True(t, defaults.On(LiveFeed))
	assert.True(t, defaults.On(OpenRegistration))
}
