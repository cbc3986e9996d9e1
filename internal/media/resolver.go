package media

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/fieldscope/verity/internal/responses"
	"github.com/fieldscope/verity/internal/surveys"
	"github.com/fieldscope/verity/internal/telephony"
	"github.com/fieldscope/verity/pkg/storage"
)

// phoneMatchDigits is how many trailing digits must agree when matching a
// call destination against a respondent phone number. Comparing only the
// tail tolerates country-code prefix differences.
const phoneMatchDigits = 10

// placeholderMarkers flag audio references produced by test or demo
// sessions. Such references are rejected immediately rather than attempted.
var placeholderMarkers = []string{"test", "placeholder", "dummy", "sample"}

// System defines the public contract for media resolution.
type System interface {
	Handler() *Handler

	// Resolve returns playable audio for the response, deduplicating
	// concurrent requests for the same response id. Returns ErrUnavailable
	// when nothing can be resolved and ErrPlaceholder for test markers.
	Resolve(ctx context.Context, resp *responses.Response) (*Playback, error)

	// Invalidate drops any cached playback for the response. In-flight
	// resolutions for the id are discarded rather than cached.
	Invalidate(responseID uuid.UUID)
}

type resolver struct {
	store     storage.System
	calls     telephony.System
	responses responses.System
	signedTTL time.Duration
	logger    *slog.Logger

	group singleflight.Group
	mu    sync.Mutex
	cache map[uuid.UUID]*Playback
	gen   map[uuid.UUID]uint64
}

// New creates a media resolver implementing the System interface.
func New(
	store storage.System,
	calls telephony.System,
	resp responses.System,
	signedTTL time.Duration,
	logger *slog.Logger,
) System {
	return &resolver{
		store:     store,
		calls:     calls,
		responses: resp,
		signedTTL: signedTTL,
		logger:    logger.With("system", "media"),
		cache:     make(map[uuid.UUID]*Playback),
		gen:       make(map[uuid.UUID]uint64),
	}
}

func (r *resolver) Handler() *Handler {
	return NewHandler(r, r.responses, r.logger)
}

func (r *resolver) Resolve(ctx context.Context, resp *responses.Response) (*Playback, error) {
	r.mu.Lock()
	if cached, ok := r.cache[resp.ID]; ok {
		r.mu.Unlock()
		return cached, nil
	}
	gen := r.gen[resp.ID]
	r.mu.Unlock()

	result, err, _ := r.group.Do(resp.ID.String(), func() (any, error) {
		return r.resolve(ctx, resp)
	})
	if err != nil {
		return nil, err
	}

	playback := result.(*Playback)

	r.mu.Lock()
	if r.gen[resp.ID] == gen {
		r.cache[resp.ID] = playback
	}
	r.mu.Unlock()

	return playback, nil
}

func (r *resolver) Invalidate(responseID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen[responseID]++
	if _, ok := r.cache[responseID]; ok {
		delete(r.cache, responseID)
		r.logger.Info("playback invalidated", "response", responseID)
	}
}

func (r *resolver) resolve(ctx context.Context, resp *responses.Response) (*Playback, error) {
	if resp.Mode == surveys.ModeCATI {
		return r.resolveCall(ctx, resp)
	}
	return r.resolveRecorded(ctx, resp)
}

// resolveRecorded handles self-recorded interviews: an attached URL or local
// path passes through, a storage key is exchanged for a signed URL, and a
// placeholder marker is rejected outright.
func (r *resolver) resolveRecorded(ctx context.Context, resp *responses.Response) (*Playback, error) {
	if resp.AudioRef == nil || strings.TrimSpace(*resp.AudioRef) == "" {
		return nil, ErrUnavailable
	}
	ref := strings.TrimSpace(*resp.AudioRef)

	if isPlaceholder(ref) {
		return nil, ErrPlaceholder
	}

	if isDirectRef(ref) {
		return &Playback{
			ResponseID: resp.ID,
			Kind:       KindURL,
			URL:        ref,
		}, nil
	}

	url, err := r.store.SignedURL(ctx, ref, r.signedTTL)
	if err != nil {
		if err == storage.ErrNotFound {
			return nil, ErrUnavailable
		}
		return nil, err
	}

	expires := time.Now().UTC().Add(r.signedTTL)
	r.logger.Info("signed url issued", "response", resp.ID, "key", ref)

	return &Playback{
		ResponseID: resp.ID,
		Kind:       KindURL,
		URL:        url,
		ExpiresAt:  &expires,
	}, nil
}

// resolveCall handles telephony interviews: the stored call id is looked up
// first; on a miss the survey's call list is searched for a destination
// matching the respondent's phone number.
func (r *resolver) resolveCall(ctx context.Context, resp *responses.Response) (*Playback, error) {
	call := r.lookupCall(ctx, resp)
	if call == nil || call.RecordingRef == "" {
		return nil, ErrUnavailable
	}

	rec, err := r.calls.FetchRecording(ctx, call.ID)
	if err != nil {
		if err == telephony.ErrRecordingNotFound {
			return nil, ErrUnavailable
		}
		return nil, err
	}

	r.logger.Info("recording fetched", "response", resp.ID, "call", call.ID)

	return &Playback{
		ResponseID:  resp.ID,
		Kind:        KindRecording,
		Data:        rec.Data,
		ContentType: rec.ContentType,
	}, nil
}

func (r *resolver) lookupCall(ctx context.Context, resp *responses.Response) *telephony.Call {
	if resp.CallID != nil && *resp.CallID != "" {
		call, err := r.calls.GetCall(ctx, *resp.CallID)
		if err == nil {
			return call
		}
		r.logger.Warn("call lookup failed, falling back to survey search",
			"response", resp.ID, "call", *resp.CallID, "error", err)
	}

	if resp.Phone == nil || *resp.Phone == "" {
		return nil
	}

	calls, err := r.calls.ListCalls(ctx, resp.SurveyID.String())
	if err != nil {
		r.logger.Warn("survey call search failed", "response", resp.ID, "error", err)
		return nil
	}

	want := trailingDigits(*resp.Phone, phoneMatchDigits)
	if want == "" {
		return nil
	}

	for i := range calls {
		if trailingDigits(calls[i].Destination, phoneMatchDigits) == want {
			return &calls[i]
		}
	}
	return nil
}

func isPlaceholder(ref string) bool {
	folded := strings.ToLower(ref)
	base := folded
	if i := strings.LastIndex(folded, "/"); i >= 0 {
		base = folded[i+1:]
	}
	for _, marker := range placeholderMarkers {
		if strings.HasPrefix(base, marker) {
			return true
		}
	}
	return false
}

func isDirectRef(ref string) bool {
	return strings.HasPrefix(ref, "http://") ||
		strings.HasPrefix(ref, "https://") ||
		strings.HasPrefix(ref, "file:") ||
		strings.HasPrefix(ref, "/")
}

func trailingDigits(s string, n int) string {
	digits := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			digits = append(digits, s[i])
		}
	}
	if len(digits) == 0 {
		return ""
	}
	if len(digits) > n {
		digits = digits[len(digits)-n:]
	}
	return string(digits)
}
