package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplydash/internal/engine"
	"supplydash/internal/models"
)

func testTable(t *testing.T) *engine.Table {
	t.Helper()
	tbl, err := engine.NewTable(
		[]string{engine.ColProductType, engine.ColLocation, engine.ColRevenue},
		[][]string{
			{"ProductA", "LocationX", "100"},
			{"ProductA", "LocationY", "200"},
			{"ProductB", "LocationX", "50"},
		})
	require.NoError(t, err)
	return tbl
}

func TestSessionRecomputesOnEveryChange(t *testing.T) {
	m := NewManager(testTable(t), 0, nil)
	s := m.Create()

	snap := s.Snapshot()
	assert.Equal(t, 3, snap.Dashboard.Rows)
	assert.Equal(t, models.Some(350), snap.Dashboard.Revenue)

	snap = s.SetProductType("ProductA")
	assert.Equal(t, 2, snap.Dashboard.Rows)
	assert.Equal(t, models.Some(300), snap.Dashboard.Revenue)

	snap = s.SetLocation("LocationX")
	assert.Equal(t, engine.FilterState{ProductType: "ProductA", Location: "LocationX"}, snap.Filters)
	assert.Equal(t, models.Some(100), snap.Dashboard.Revenue)

	snap = s.Apply(engine.FilterState{ProductType: "Nope", Location: "All"})
	assert.Equal(t, engine.FilterState{ProductType: "Nope"}, snap.Filters)
	assert.Equal(t, models.None, snap.Dashboard.Revenue)
}

func TestSessionsAreIndependent(t *testing.T) {
	m := NewManager(testTable(t), 0, nil)
	a, b := m.Create(), m.Create()
	require.NotEqual(t, a.ID(), b.ID())

	a.SetProductType("ProductB")
	assert.Equal(t, 1, a.Snapshot().Dashboard.Rows)
	assert.Equal(t, 3, b.Snapshot().Dashboard.Rows)
}

func TestManagerGetDelete(t *testing.T) {
	m := NewManager(testTable(t), 0, nil)
	s := m.Create()

	got, err := m.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)
	assert.Equal(t, 1, m.Len())

	require.NoError(t, m.Delete(s.ID()))
	_, err = m.Get(s.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, m.Delete(s.ID()), ErrSessionNotFound)
}

func TestManagerReap(t *testing.T) {
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m := NewManager(testTable(t), time.Minute, nil)
	m.now = func() time.Time { return clock }

	old := m.Create()
	clock = clock.Add(50 * time.Second)
	fresh := m.Create()

	assert.Equal(t, 1, m.Reap(clock.Add(30*time.Second)))
	_, err := m.Get(old.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = m.Get(fresh.ID())
	assert.NoError(t, err)
}

func TestManagerConcurrentUse(t *testing.T) {
	m := NewManager(testTable(t), time.Hour, nil)
	s := m.Create()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				s.SetProductType("ProductA")
			} else {
				m.Create().SetLocation("LocationY")
			}
			m.Reap(time.Now())
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 5, m.Len())
}

func TestRunStopsOnCancel(t *testing.T) {
	m := NewManager(testTable(t), time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestSessionUpdate(t *testing.T) {
	m := NewManager(testTable(t), 0, nil)
	s := m.Create()

	snap := s.Update(func(state *engine.FilterState) { state.SetLocation("LocationY") })
	assert.Equal(t, engine.FilterState{Location: "LocationY"}, snap.Filters)
	assert.Equal(t, models.Some(200), snap.Dashboard.Revenue)
}
