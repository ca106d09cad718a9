package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvailable(t *testing.T) {
	c := Available()
	assert.Subset(t, c.Policies, []string{"uncontrolled", "rule_based", "immediate", "peak_avoiding", "deferred"})
	assert.Subset(t, c.Sinks, []string{"nop", "prometheus", "influx", "mqtt"})
}
