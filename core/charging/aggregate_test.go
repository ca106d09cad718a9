package charging

import (
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evcharge/core/model"
)

func TestAggregate_SumsPerHour(t *testing.T) {
	curve := Aggregate([]model.HourlyEnergy{
		{10: 7, 11: 7, 12: 1},
		{11: 3.5, 20: 2},
		{},
		nil,
	})
	require.Len(t, curve, model.HoursPerDay)
	for h, p := range curve {
		assert.Equal(t, h, p.Hour)
	}
	assert.InDelta(t, 7.0, curve.At(10), 1e-9)
	assert.InDelta(t, 10.5, curve.At(11), 1e-9)
	assert.InDelta(t, 1.0, curve.At(12), 1e-9)
	assert.InDelta(t, 2.0, curve.At(20), 1e-9)
	assert.Zero(t, curve.At(0))
}

func TestAggregate_IgnoresHoursOutsideDay(t *testing.T) {
	curve := Aggregate([]model.HourlyEnergy{{-1: 5, 24: 5, 3: 1}})
	assert.InDelta(t, 1.0, curve.At(3), 1e-9)
	var total float64
	for _, v := range curve.Loads() {
		total += v
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestAggregate_EmptyFleet(t *testing.T) {
	curve := Aggregate(nil)
	require.Len(t, curve, model.HoursPerDay)
	for _, v := range curve.Loads() {
		assert.Zero(t, v)
	}
}

func TestAggregate_OrderIndependent(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	var contribs []model.HourlyEnergy
	for i := 0; i < 200; i++ {
		arr := rng.IntN(20)
		p := ev(i+1, arr, arr+1+rng.IntN(23-arr), rng.Float64()*60)
		contribs = append(contribs, Allocate(p, 7, p.Hours(), DefaultTolerance()).Hourly)
	}
	base := Aggregate(contribs)

	shuffled := append([]model.HourlyEnergy(nil), contribs...)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	other := Aggregate(shuffled)

	for h := range base {
		assert.InDelta(t, base[h].LoadKW, other[h].LoadKW, 1e-9)
	}
}

func TestLoadAccumulator_Concurrent(t *testing.T) {
	var acc LoadAccumulator
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			acc.Add(model.HourlyEnergy{5: 1, 6: 0.5})
		}()
	}
	wg.Wait()
	curve := acc.Curve()
	assert.InDelta(t, 50.0, curve.At(5), 1e-9)
	assert.InDelta(t, 25.0, curve.At(6), 1e-9)
}
