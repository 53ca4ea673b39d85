package presentation

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soaringjerry/SheHuMaan/internal/nav"
	"github.com/soaringjerry/SheHuMaan/internal/results"
	"github.com/soaringjerry/SheHuMaan/internal/results/resultstest"
)

type failingStore struct{ results.Store }

func (failingStore) Load(context.Context) (*results.Result, error) {
	return nil, errors.New("disk on fire")
}

func TestGuardPresent(t *testing.T) {
	ctx := context.Background()
	store := results.NewMemoryStore()
	require.NoError(t, store.Save(ctx, resultstest.Sample(72, 45)))

	rec := &nav.Recorder{}
	g := NewGuard(rec, rec, nil)
	assert.Equal(t, Loading, g.State())
	assert.Equal(t, Present, g.Boot(ctx, store))
	require.NotNil(t, g.Dashboard())
	assert.Equal(t, "HIGH - 72/100", g.Dashboard().Stress.Classification.Label)
	assert.False(t, rec.Navigated())
	assert.Empty(t, rec.Notifications)
}

func TestGuardAbsentRedirects(t *testing.T) {
	corrupt := resultstest.CorruptStore(t, []byte(`{"stress_level":"high"}`))

	unrenderable := results.NewFileStore(filepath.Join(t.TempDir(), "result.json"))
	require.NoError(t, unrenderable.Save(context.Background(), resultstest.Sample(10, 10)))
	resultstest.WriteRecord(t, unrenderable, []byte(`garbage`))

	stores := map[string]results.Store{
		"empty":   results.NewMemoryStore(),
		"corrupt": corrupt,
		"garbage": unrenderable,
		"failing": failingStore{},
	}
	for name, store := range stores {
		t.Run(name, func(t *testing.T) {
			rec := &nav.Recorder{}
			g := NewGuard(rec, rec, nil)
			assert.Equal(t, AbsentRedirecting, g.Boot(context.Background(), store))
			assert.Nil(t, g.Dashboard())
			assert.Equal(t, nav.Intake, rec.Target)
			require.Len(t, rec.Notifications, 1)
			assert.Equal(t, nav.Notification{Level: nav.LevelWarning, Key: MissingResultKey}, rec.Notifications[0])
		})
	}
}

func TestGuardSettlesOnce(t *testing.T) {
	ctx := context.Background()
	store := results.NewMemoryStore()
	rec := &nav.Recorder{}
	g := NewGuard(rec, rec, nil)
	require.Equal(t, AbsentRedirecting, g.Boot(ctx, store))

	require.NoError(t, store.Save(ctx, resultstest.Sample(50, 50)))
	assert.Equal(t, AbsentRedirecting, g.Boot(ctx, store))
	assert.Len(t, rec.Notifications, 1)
}
