package transcript

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/nijaru/yt-transcript/errors"
	"github.com/nijaru/yt-transcript/models"
	provider "github.com/nijaru/yt-transcript/transcript"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	mu        sync.Mutex
	items     map[string]*models.Transcript
	findErr   error
	saveErr   error
	saveCalls int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[string]*models.Transcript{}}
}

func (r *memoryRepo) Find(ctx context.Context, videoID string) (*models.Transcript, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	t, ok := r.items[videoID]
	if !ok {
		return nil, errors.NotFound("memoryRepo.Find", nil, "Transcript not found")
	}
	return t, nil
}

func (r *memoryRepo) Save(ctx context.Context, t *models.Transcript) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveCalls++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.items[t.VideoID] = t
	return nil
}

type archived struct {
	videoID, language, text string
}

type memoryArchive struct {
	mu    sync.Mutex
	saved []archived
	err   error
}

func (a *memoryArchive) SaveTranscript(ctx context.Context, videoID, language, text string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return a.err
	}
	a.saved = append(a.saved, archived{videoID, language, text})
	return nil
}

// countingProvider returns a fixed transcript and counts calls.
type countingProvider struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (p *countingProvider) Fetch(ctx context.Context, videoID string) (*models.Transcript, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &models.Transcript{
		Language: "en",
		Segments: []models.Segment{{Text: "Hello"}, {Text: "world"}},
	}, nil
}

func newLogger() logrus.FieldLogger {
	logger, _ := test.NewNullLogger()
	return logger
}

func TestFetchWithoutCache(t *testing.T) {
	p := &countingProvider{}
	svc := NewService(p, Config{}, WithLogger(newLogger()))

	got, err := svc.Fetch(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.VideoID)
	assert.False(t, got.FetchedAt.IsZero())
	assert.Equal(t, "Hello world", provider.Join(got.Segments))
	assert.Equal(t, 1, p.calls)
}

func TestFetchStoresAndArchives(t *testing.T) {
	p := &countingProvider{}
	repo := newMemoryRepo()
	archive := &memoryArchive{}
	svc := NewService(p, Config{CacheTTL: time.Hour},
		WithRepository(repo), WithArchive(archive), WithLogger(newLogger()))

	_, err := svc.Fetch(context.Background(), "abc")
	require.NoError(t, err)

	assert.Contains(t, repo.items, "abc")
	assert.Equal(t, []archived{{"abc", "en", "Hello world"}}, archive.saved)

	// The second call is served from the cache.
	got, err := svc.Fetch(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", provider.Join(got.Segments))
	assert.Equal(t, 1, p.calls)
	assert.Len(t, archive.saved, 1)
}

func TestFetchRefreshesStaleCache(t *testing.T) {
	p := &countingProvider{}
	repo := newMemoryRepo()
	repo.items["abc"] = &models.Transcript{
		VideoID:   "abc",
		Segments:  []models.Segment{{Text: "old"}},
		FetchedAt: time.Now().Add(-2 * time.Hour),
	}
	svc := NewService(p, Config{CacheTTL: time.Hour}, WithRepository(repo), WithLogger(newLogger()))

	got, err := svc.Fetch(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", provider.Join(got.Segments))
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, "Hello world", provider.Join(repo.items["abc"].Segments))
}

func TestFetchZeroTTLNeverExpires(t *testing.T) {
	p := &countingProvider{}
	repo := newMemoryRepo()
	repo.items["abc"] = &models.Transcript{
		VideoID:   "abc",
		Segments:  []models.Segment{{Text: "old"}},
		FetchedAt: time.Now().Add(-24 * 365 * time.Hour),
	}
	svc := NewService(p, Config{}, WithRepository(repo), WithLogger(newLogger()))

	got, err := svc.Fetch(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "old", provider.Join(got.Segments))
	assert.Zero(t, p.calls)
}

func TestFetchStorageFailuresAreNotReturned(t *testing.T) {
	p := &countingProvider{}
	repo := newMemoryRepo()
	repo.findErr = assert.AnError
	repo.saveErr = assert.AnError
	archive := &memoryArchive{err: assert.AnError}

	logger, hook := test.NewNullLogger()
	svc := NewService(p, Config{}, WithRepository(repo), WithArchive(archive), WithLogger(logger))

	got, err := svc.Fetch(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "Hello world", provider.Join(got.Segments))
	assert.Equal(t, 1, repo.saveCalls)

	var messages []string
	for _, e := range hook.AllEntries() {
		messages = append(messages, e.Message)
	}
	assert.Contains(t, messages, "Cache lookup failed")
	assert.Contains(t, messages, "Failed to cache transcript")
	assert.Contains(t, messages, "Failed to archive transcript")
}

func TestFetchPreservesProviderErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want provider.Kind
	}{
		{"disabled", provider.Disabled("abc"), provider.KindDisabled},
		{"not found", provider.NotFound("abc", nil), provider.KindNotFound},
		{"unknown", provider.Unknown("abc", assert.AnError), provider.KindUnknown},
		{"plain error", assert.AnError, provider.KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &countingProvider{err: tt.err}
			repo := newMemoryRepo()
			archive := &memoryArchive{}
			svc := NewService(p, Config{}, WithRepository(repo), WithArchive(archive), WithLogger(newLogger()))

			_, err := svc.Fetch(context.Background(), "abc")
			require.Error(t, err)
			assert.Equal(t, tt.err, err)
			assert.Equal(t, tt.want, provider.KindOf(err))
			assert.Zero(t, repo.saveCalls)
			assert.Empty(t, archive.saved)
		})
	}
}

func TestFetchNilTranscript(t *testing.T) {
	repo := newMemoryRepo()
	archive := &memoryArchive{}
	p := provider.ProviderFunc(func(ctx context.Context, videoID string) (*models.Transcript, error) {
		return nil, nil
	})
	svc := NewService(p, Config{}, WithRepository(repo), WithArchive(archive), WithLogger(newLogger()))

	got, err := svc.Fetch(context.Background(), "abc")
	require.Error(t, err)
	assert.Nil(t, got)
	assert.Equal(t, provider.KindUnknown, provider.KindOf(err))
	assert.Equal(t, "provider returned no transcript", err.Error())
	assert.Zero(t, repo.saveCalls)
	assert.Empty(t, archive.saved)
}
