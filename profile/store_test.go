package profile

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/upsell/core"
	"github.com/rushteam/upsell/store"
)

func TestStore_LoadCreatesAndPersists(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	defer kv.Close()
	s := NewStore(kv, WithPrefix("test:"), WithTTL(time.Hour))

	p, err := s.Load(ctx, "b1", 200)
	require.NoError(t, err)
	assert.Equal(t, 200.0, p.ReferencePrice)
	assert.Zero(t, p.Passengers)

	raw, err := kv.Get(ctx, "test:b1")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"original_total_price":200`)

	p.Passengers = 5
	p.TripType = core.TripBusiness
	require.NoError(t, s.Save(ctx, "b1", p))

	// 再次引用不会重置已知字段，也不会改写原始价格
	again, err := s.Load(ctx, "b1", 999)
	require.NoError(t, err)
	assert.Equal(t, 5, again.Passengers)
	assert.Equal(t, core.TripBusiness, again.TripType)
	assert.Equal(t, 200.0, again.ReferencePrice)
}

func TestStore_LoadFillsMissingReferencePrice(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	defer kv.Close()
	s := NewStore(kv)

	_, err := s.Load(ctx, "b2", 0)
	require.NoError(t, err)
	p, err := s.Load(ctx, "b2", 150)
	require.NoError(t, err)
	assert.Equal(t, 150.0, p.ReferencePrice)
}

func TestStore_Evict(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	defer kv.Close()
	s := NewStore(kv)

	p, _ := s.Load(ctx, "b3", 100)
	p.Passengers = 3
	require.NoError(t, s.Save(ctx, "b3", p))
	require.NoError(t, s.Evict(ctx, "b3"))

	fresh, err := s.Load(ctx, "b3", 100)
	require.NoError(t, err)
	assert.Zero(t, fresh.Passengers)
}

func TestStore_Errors(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	defer kv.Close()
	s := NewStore(kv)

	_, err := s.Load(ctx, "", 100)
	assert.True(t, core.IsInvalidInput(err))
	assert.True(t, core.IsInvalidInput(s.Save(ctx, "x", nil)))

	require.NoError(t, kv.Set(ctx, defaultPrefix+"bad", []byte("{not json")))
	_, err = s.Load(ctx, "bad", 100)
	assert.Error(t, err)

	boom := errors.New("backend down")
	broken := NewStore(failingStore{err: boom})
	_, err = broken.Load(ctx, "b", 1)
	assert.ErrorIs(t, err, boom)
}

func TestStore_KeyedIsolation(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	defer kv.Close()
	s := NewStore(kv)

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("session-%d", i)
			p, err := s.Load(ctx, id, float64(i))
			if err != nil {
				return
			}
			p.Passengers = i
			_ = s.Save(ctx, id, p)
		}(i)
	}
	wg.Wait()

	for i := 1; i <= 20; i++ {
		p, err := s.Load(ctx, fmt.Sprintf("session-%d", i), 0)
		require.NoError(t, err)
		assert.Equal(t, i, p.Passengers)
		assert.Equal(t, float64(i), p.ReferencePrice)
	}
}

func TestSeed(t *testing.T) {
	reg := &core.RegisteredProfile{HasKids: true, ComfortPriority: core.LevelHigh}
	in := core.NewProfile(100)

	out := Seed(in, reg)
	assert.Equal(t, core.TripFamily, out.TripType)
	assert.Equal(t, core.LevelHigh, out.ComfortPriority)
	assert.Equal(t, assumedFamilySize, out.Passengers)
	assert.True(t, out.Kids)
	assert.Zero(t, in.Passengers, "input must not be modified")

	known := &core.Profile{Passengers: 2, TripType: core.TripBusiness}
	out = Seed(known, reg)
	assert.Equal(t, 2, out.Passengers)
	assert.Equal(t, core.TripBusiness, out.TripType)

	assert.Equal(t, known, Seed(known, nil))
}

type failingStore struct{ err error }

func (f failingStore) Name() string                                        { return "failing" }
func (f failingStore) Get(context.Context, string) ([]byte, error)         { return nil, f.err }
func (f failingStore) Set(context.Context, string, []byte, ...int) error   { return f.err }
func (f failingStore) Delete(context.Context, string) error                { return f.err }
func (f failingStore) Close() error                                        { return nil }
