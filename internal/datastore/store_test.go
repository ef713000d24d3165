package datastore

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gradscope/adapters/normalize"
	"gradscope/domain/dataset"
	"gradscope/internal"
	"gradscope/internal/errors"
	"gradscope/internal/testkit"
)

type mockSource struct {
	mock.Mock
}

func (m *mockSource) Load(ctx context.Context) (*dataset.RawTable, error) {
	args := m.Called(ctx)
	table, _ := args.Get(0).(*dataset.RawTable)
	return table, args.Error(1)
}

func (m *mockSource) Describe() string {
	return "mock source"
}

func newStore(src *mockSource) *Store {
	logger := internal.NewNopLogger()
	return NewStore(src, normalize.NewNormalizer(normalize.DefaultConfig(), logger), logger)
}

func TestLoadNormalizesAndStores(t *testing.T) {
	table := &dataset.RawTable{
		Headers: []string{"Year", "Education.Major", "Demographics.Total"},
		Rows:    [][]string{{"2015", "Biology", "12"}, {"2012", "History", "0"}},
	}
	src := new(mockSource)
	src.On("Load", mock.Anything).Return(table, nil).Once()

	store := newStore(src)
	assert.False(t, store.Ready())
	_, err := store.Current()
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	snap, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Data.Len())
	assert.Equal(t, 1, snap.Report.ZeroTotalRows)
	assert.Equal(t, "mock source", snap.Source)
	assert.False(t, snap.ID.String() == "")

	current, err := store.Current()
	require.NoError(t, err)
	assert.Same(t, snap, current)
	src.AssertExpectations(t)
}

func TestLoadFailureKeepsPreviousSnapshot(t *testing.T) {
	src := new(mockSource)
	src.On("Load", mock.Anything).Return(testkit.NewGraduatesGenerator(testkit.DefaultGraduatesConfig()).Generate(), nil).Once()
	src.On("Load", mock.Anything).Return(nil, stderrors.New("disk on fire")).Once()

	store := newStore(src)
	first, err := store.Load(context.Background())
	require.NoError(t, err)

	_, err = store.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatasetLoad, errors.GetCode(err))
	assert.ErrorIs(t, err, errors.ErrDatasetLoad)

	current, err := store.Current()
	require.NoError(t, err)
	assert.Same(t, first, current)
}

func TestLoadKeepsAppErrorCode(t *testing.T) {
	src := new(mockSource)
	src.On("Load", mock.Anything).Return(nil, errors.DatabaseError("connection refused"))

	_, err := newStore(src).Load(context.Background())
	assert.Equal(t, errors.CodeDatabaseError, errors.GetCode(err))
}

func TestConcurrentLoadsShareOneRead(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	table := &dataset.RawTable{Headers: []string{"Demographics.Total"}, Rows: [][]string{{"3"}}}

	var once sync.Once
	src := new(mockSource)
	src.On("Load", mock.Anything).
		Run(func(mock.Arguments) {
			once.Do(func() { close(started) })
			<-release
		}).
		Return(table, nil)

	store := newStore(src)
	snaps := make([]*Snapshot, 4)
	var wg sync.WaitGroup
	load := func(i int) {
		defer wg.Done()
		s, err := store.Load(context.Background())
		assert.NoError(t, err)
		snaps[i] = s
	}

	wg.Add(1)
	go load(0)
	<-started
	for i := 1; i < len(snaps); i++ {
		wg.Add(1)
		go load(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, s := range snaps[1:] {
		assert.Same(t, snaps[0], s)
	}
	src.AssertNumberOfCalls(t, "Load", 1)
}
