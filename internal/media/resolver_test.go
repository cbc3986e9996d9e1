package media_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/fieldscope/verity/internal/media"
	"github.com/fieldscope/verity/internal/responses"
	"github.com/fieldscope/verity/internal/surveys"
	"github.com/fieldscope/verity/internal/telephony"
	"github.com/fieldscope/verity/pkg/lifecycle"
	"github.com/fieldscope/verity/pkg/storage"
)

type fakeStore struct {
	signCalls atomic.Int32
	signErr   error
	gate      chan struct{}
}

func (f *fakeStore) Start(_ *lifecycle.Coordinator) error { return nil }

func (f *fakeStore) Upload(_ context.Context, _ string, _ io.Reader, _ string) error {
	return nil
}

func (f *fakeStore) Download(_ context.Context, _ string) (io.ReadCloser, error) {
	return nil, storage.ErrNotFound
}

func (f *fakeStore) SignedURL(_ context.Context, key string, _ time.Duration) (string, error) {
	f.signCalls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.signErr != nil {
		return "", f.signErr
	}
	return "https://blobs.test/" + key + "?sig=abc", nil
}

func (f *fakeStore) Delete(_ context.Context, _ string) error { return nil }

func (f *fakeStore) Exists(_ context.Context, _ string) (bool, error) { return false, nil }

type fakeCalls struct {
	call      *telephony.Call
	callErr   error
	list      []telephony.Call
	listErr   error
	recording *telephony.Recording
	recErr    error

	listCalls atomic.Int32
}

func (f *fakeCalls) GetCall(_ context.Context, _ string) (*telephony.Call, error) {
	if f.callErr != nil {
		return nil, f.callErr
	}
	return f.call, nil
}

func (f *fakeCalls) ListCalls(_ context.Context, _ string) ([]telephony.Call, error) {
	f.listCalls.Add(1)
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.list, nil
}

func (f *fakeCalls) FetchRecording(_ context.Context, _ string) (*telephony.Recording, error) {
	if f.recErr != nil {
		return nil, f.recErr
	}
	return f.recording, nil
}

func newResolver(store *fakeStore, calls *fakeCalls) media.System {
	return media.New(store, calls, nil, 15*time.Minute, slog.Default())
}

func recordedResponse(ref string) *responses.Response {
	return &responses.Response{
		ID:       uuid.New(),
		Mode:     surveys.ModeCAPI,
		AudioRef: &ref,
	}
}

func TestResolveDirectURL(t *testing.T) {
	store := &fakeStore{}
	r := newResolver(store, &fakeCalls{})

	for _, ref := range []string{
		"https://cdn.example.com/audio/r1.mp3",
		"http://cdn.example.com/audio/r1.mp3",
		"file:/srv/audio/r1.mp3",
		"/srv/audio/r1.mp3",
	} {
		playback, err := r.Resolve(context.Background(), recordedResponse(ref))
		if err != nil {
			t.Fatalf("Resolve(%q) failed: %v", ref, err)
		}
		if playback.Kind != media.KindURL || playback.URL != ref {
			t.Errorf("playback = %+v, want passthrough of %q", playback, ref)
		}
		if playback.ExpiresAt != nil {
			t.Error("direct references should not carry an expiry")
		}
	}

	if got := store.signCalls.Load(); got != 0 {
		t.Errorf("storage signed %d URLs for direct references", got)
	}
}

func TestResolveSignedURL(t *testing.T) {
	store := &fakeStore{}
	r := newResolver(store, &fakeCalls{})

	playback, err := r.Resolve(context.Background(), recordedResponse("audio/r1.mp3"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if playback.Kind != media.KindURL {
		t.Errorf("kind = %s, want url", playback.Kind)
	}
	if playback.URL != "https://blobs.test/audio/r1.mp3?sig=abc" {
		t.Errorf("url = %q", playback.URL)
	}
	if playback.ExpiresAt == nil {
		t.Error("signed URLs must carry an expiry")
	}
}

func TestResolvePlaceholder(t *testing.T) {
	store := &fakeStore{}
	r := newResolver(store, &fakeCalls{})

	for _, ref := range []string{
		"test_recording.mp3",
		"uploads/placeholder.mp3",
		"DUMMY-audio.wav",
		"sample.mp3",
	} {
		_, err := r.Resolve(context.Background(), recordedResponse(ref))
		if !errors.Is(err, media.ErrPlaceholder) {
			t.Errorf("Resolve(%q) = %v, want ErrPlaceholder", ref, err)
		}
	}

	if got := store.signCalls.Load(); got != 0 {
		t.Errorf("placeholders reached storage %d times", got)
	}
}

func TestResolveNoReference(t *testing.T) {
	r := newResolver(&fakeStore{}, &fakeCalls{})

	resp := &responses.Response{ID: uuid.New(), Mode: surveys.ModeCAPI}
	if _, err := r.Resolve(context.Background(), resp); !errors.Is(err, media.ErrUnavailable) {
		t.Errorf("Resolve without audio_ref = %v, want ErrUnavailable", err)
	}
}

func TestResolveMissingBlob(t *testing.T) {
	store := &fakeStore{signErr: storage.ErrNotFound}
	r := newResolver(store, &fakeCalls{})

	_, err := r.Resolve(context.Background(), recordedResponse("audio/gone.mp3"))
	if !errors.Is(err, media.ErrUnavailable) {
		t.Errorf("Resolve = %v, want ErrUnavailable for a missing blob", err)
	}
}

func callResponse(callID, phone string) *responses.Response {
	resp := &responses.Response{
		ID:       uuid.New(),
		SurveyID: uuid.New(),
		Mode:     surveys.ModeCATI,
	}
	if callID != "" {
		resp.CallID = &callID
	}
	if phone != "" {
		resp.Phone = &phone
	}
	return resp
}

func TestResolveCallRecording(t *testing.T) {
	calls := &fakeCalls{
		call:      &telephony.Call{ID: "call-1", RecordingRef: "rec-1"},
		recording: &telephony.Recording{Data: []byte("mp3"), ContentType: "audio/mpeg"},
	}
	r := newResolver(&fakeStore{}, calls)

	playback, err := r.Resolve(context.Background(), callResponse("call-1", ""))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if playback.Kind != media.KindRecording {
		t.Errorf("kind = %s, want recording", playback.Kind)
	}
	if string(playback.Data) != "mp3" || playback.ContentType != "audio/mpeg" {
		t.Errorf("playback = %+v", playback)
	}
}

func TestResolveCallFallbackByPhone(t *testing.T) {
	calls := &fakeCalls{
		callErr: telephony.ErrCallNotFound,
		list: []telephony.Call{
			{ID: "call-a", Destination: "+1 (555) 987-6543", RecordingRef: "rec-a"},
			{ID: "call-b", Destination: "+1 (555) 123-4567", RecordingRef: "rec-b"},
		},
		recording: &telephony.Recording{Data: []byte("mp3"), ContentType: "audio/mpeg"},
	}
	r := newResolver(&fakeStore{}, calls)

	playback, err := r.Resolve(context.Background(), callResponse("stale-call", "5551234567"))
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if playback.Kind != media.KindRecording {
		t.Errorf("kind = %s, want recording from the matched call", playback.Kind)
	}
	if calls.listCalls.Load() != 1 {
		t.Errorf("ListCalls called %d times, want 1", calls.listCalls.Load())
	}
}

func TestResolveCallNoMatch(t *testing.T) {
	calls := &fakeCalls{
		callErr: telephony.ErrCallNotFound,
		list: []telephony.Call{
			{ID: "call-a", Destination: "+15559876543", RecordingRef: "rec-a"},
		},
	}
	r := newResolver(&fakeStore{}, calls)

	_, err := r.Resolve(context.Background(), callResponse("stale-call", "5551234567"))
	if !errors.Is(err, media.ErrUnavailable) {
		t.Errorf("Resolve = %v, want ErrUnavailable when no destination matches", err)
	}
}

func TestResolveCallRecordingGone(t *testing.T) {
	calls := &fakeCalls{
		call:   &telephony.Call{ID: "call-1", RecordingRef: "rec-1"},
		recErr: telephony.ErrRecordingNotFound,
	}
	r := newResolver(&fakeStore{}, calls)

	_, err := r.Resolve(context.Background(), callResponse("call-1", ""))
	if !errors.Is(err, media.ErrUnavailable) {
		t.Errorf("Resolve = %v, want ErrUnavailable for a deleted recording", err)
	}
}

func TestResolveDeduplicatesConcurrent(t *testing.T) {
	store := &fakeStore{gate: make(chan struct{})}
	r := newResolver(store, &fakeCalls{})

	resp := recordedResponse("audio/r1.mp3")

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Resolve(context.Background(), resp); err != nil {
				t.Errorf("Resolve failed: %v", err)
			}
		}()
	}

	// let the goroutines pile up behind the in-flight resolution
	time.Sleep(50 * time.Millisecond)
	close(store.gate)
	wg.Wait()

	if got := store.signCalls.Load(); got != 1 {
		t.Errorf("storage signed %d URLs for concurrent resolves, want 1", got)
	}

	// a later resolve hits the cache
	if _, err := r.Resolve(context.Background(), resp); err != nil {
		t.Fatalf("cached Resolve failed: %v", err)
	}
	if got := store.signCalls.Load(); got != 1 {
		t.Errorf("cached resolve reached storage, %d calls total", got)
	}
}

func TestInvalidateDiscardsInFlight(t *testing.T) {
	store := &fakeStore{gate: make(chan struct{})}
	r := newResolver(store, &fakeCalls{})

	resp := recordedResponse("audio/r1.mp3")

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := r.Resolve(context.Background(), resp); err != nil {
			t.Errorf("Resolve failed: %v", err)
		}
	}()

	time.Sleep(50 * time.Millisecond)
	r.Invalidate(resp.ID)
	close(store.gate)
	<-done

	// the invalidated result was not cached, so resolving again goes back out
	store.gate = nil
	if _, err := r.Resolve(context.Background(), resp); err != nil {
		t.Fatalf("Resolve after invalidate failed: %v", err)
	}
	if got := store.signCalls.Load(); got != 2 {
		t.Errorf("storage calls = %d, want 2 after invalidation", got)
	}
}
