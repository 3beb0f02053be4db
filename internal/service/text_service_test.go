package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/haierkeys/site-text-service/internal/domain"
	"github.com/haierkeys/site-text-service/internal/dto"
	"github.com/haierkeys/site-text-service/internal/rbac"
	"github.com/haierkeys/site-text-service/pkg/code"
	"github.com/haierkeys/site-text-service/pkg/diff"
	"github.com/haierkeys/site-text-service/pkg/writequeue"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	editor = &domain.Identity{Email: "ed@example.com", Name: "Ed", Role: rbac.RoleEditor, SessionID: "s1"}
	viewer = &domain.Identity{Email: "vi@example.com", Name: "Vi", Role: rbac.RoleViewer, SessionID: "s2"}
)

func newTestTextService() (TextService, *textStore, *recordingNotifier) {
	store := newTextStore()
	n := &recordingNotifier{}
	svc := NewTextService(&textMockBlockRepo{store: store}, &textMockHistoryRepo{store: store}, n, nil, nil, nil)
	return svc, store, n
}

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func put(t *testing.T, svc TextService, id, content string) *dto.TextPutResponse {
	t.Helper()
	res, err := svc.Put(context.Background(), editor, &dto.TextPutRequest{ID: id, Content: content})
	require.NoError(t, err)
	return res
}

func TestTextService_PutCreateAndUpdate(t *testing.T) {
	svc, store, n := newTestTextService()

	res := put(t, svc, "hero.title", "  Welcome!  ")
	assert.True(t, res.Success)
	assert.True(t, res.Changed)
	assert.Equal(t, int64(1), res.Version)
	assert.Equal(t, "Welcome!", res.TextBlock.Content)
	assert.Equal(t, "p", res.TextBlock.Element)
	assert.Equal(t, editor.Email, res.TextBlock.UpdatedBy)

	res = put(t, svc, "hero.title", "Hello")
	assert.Equal(t, int64(2), res.Version)

	require.Len(t, store.history, 2)
	assert.Equal(t, domain.ChangeTypeCreate, store.history[0].ChangeType)
	assert.Equal(t, domain.ChangeTypeUpdate, store.history[1].ChangeType)
	assert.Equal(t, "Hello", store.history[1].Content)
	assert.Equal(t, editor.Email, store.history[1].CreatedBy)
	assert.NotEmpty(t, store.history[1].ID)
	assert.Equal(t, store.blocks["hero.title"].UpdatedAt, store.history[1].CreatedAt)

	assert.Equal(t, []string{"hero.title:create", "hero.title:update"}, n.changed)
}

func TestTextService_PutNoop(t *testing.T) {
	svc, store, n := newTestTextService()
	put(t, svc, "a", "same")

	res, err := svc.Put(context.Background(), editor, &dto.TextPutRequest{ID: "a", Content: " same ", Element: strPtr("h1")})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.False(t, res.Changed)
	assert.Equal(t, int64(1), res.Version)
	assert.Equal(t, "p", res.TextBlock.Element, "no-op leaves metadata untouched")
	assert.Len(t, store.history, 1)
	assert.Len(t, n.changed, 1)
}

func TestTextService_PutMetadata(t *testing.T) {
	svc, store, _ := newTestTextService()
	ctx := context.Background()

	_, err := svc.Put(ctx, editor, &dto.TextPutRequest{ID: "a", Content: "x", Element: strPtr("H2"), Page: strPtr("home"), Section: strPtr("hero")})
	require.NoError(t, err)
	assert.Equal(t, domain.ElementH2, store.blocks["a"].Element)

	// omitted and empty element keep the stored value
	_, err = svc.Put(ctx, editor, &dto.TextPutRequest{ID: "a", Content: "y", Element: strPtr("")})
	require.NoError(t, err)
	b := store.blocks["a"]
	assert.Equal(t, domain.ElementH2, b.Element)
	assert.Equal(t, "home", b.Page)
	assert.Equal(t, "hero", b.Section)

	_, err = svc.Put(ctx, editor, &dto.TextPutRequest{ID: "a", Content: "z", Page: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "", store.blocks["a"].Page)
}

func TestTextService_PutValidation(t *testing.T) {
	svc, store, _ := newTestTextService()
	put(t, svc, "a", "one")
	store.calls = 0

	tests := []struct {
		name   string
		params *dto.TextPutRequest
		want   *code.Code
	}{
		{"empty id", &dto.TextPutRequest{ID: "  ", Content: "x"}, code.ErrorTextContentRequired},
		{"empty content", &dto.TextPutRequest{ID: "a", Content: "   "}, code.ErrorTextContentRequired},
		{"control char id", &dto.TextPutRequest{ID: "a\nb", Content: "x"}, code.ErrorTextIDInvalid},
		{"long id", &dto.TextPutRequest{ID: strings.Repeat("x", 256), Content: "x"}, code.ErrorTextIDInvalid},
		{"bad element", &dto.TextPutRequest{ID: "a", Content: "x", Element: strPtr("div")}, code.ErrorTextElementInvalid},
		{"zero restore", &dto.TextPutRequest{ID: "a", RestoreVersion: int64Ptr(0)}, code.ErrorTextRestoreVersionInvalid},
		{"nil params", nil, code.ErrorTextContentRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Put(context.Background(), editor, tt.params)
			if !errors.Is(err, tt.want) {
				t.Errorf("Put() error = %v, want %v", err, tt.want)
			}
		})
	}
	assert.Zero(t, store.calls, "validation failures never reach the store")

	_, err := svc.Put(context.Background(), editor, &dto.TextPutRequest{ID: "a", RestoreVersion: int64Ptr(9)})
	assert.ErrorIs(t, err, code.ErrorTextVersionNotFound)
	assert.Len(t, store.history, 1)
}

func TestTextService_Authorization(t *testing.T) {
	svc, store, n := newTestTextService()
	ctx := context.Background()

	tests := []struct {
		name     string
		identity *domain.Identity
		want     *code.Code
	}{
		{"anonymous", nil, code.ErrorNotUserAuthToken},
		{"viewer", viewer, code.ErrorForbidden},
		{"unknown role", &domain.Identity{Email: "x@example.com", Role: "owner"}, code.ErrorForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Put(ctx, tt.identity, &dto.TextPutRequest{ID: "a", Content: "x"})
			assert.ErrorIs(t, err, tt.want)
			_, err = svc.Delete(ctx, tt.identity, "a")
			assert.ErrorIs(t, err, tt.want)
			_, err = svc.History(ctx, tt.identity, &dto.TextHistoryRequest{ID: "a"})
			assert.ErrorIs(t, err, tt.want)
			_, err = svc.List(ctx, tt.identity, nil)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Zero(t, store.calls)
	assert.Empty(t, n.changed)
	assert.Empty(t, n.deleted)
}

func TestTextService_RestoreIsNotRewind(t *testing.T) {
	svc, store, n := newTestTextService()
	ctx := context.Background()
	put(t, svc, "a", "one")
	put(t, svc, "a", "two")
	put(t, svc, "a", "three")

	res, err := svc.Put(ctx, editor, &dto.TextPutRequest{ID: "a", Content: "ignored", RestoreVersion: int64Ptr(1)})
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Version)
	assert.Equal(t, "one", res.TextBlock.Content)

	last := store.history[len(store.history)-1]
	assert.Equal(t, domain.ChangeTypeRestore, last.ChangeType)
	assert.Equal(t, "one", last.Content)
	assert.Equal(t, int64(4), last.Version)

	// restoring to the current content still appends a version
	res, err = svc.Put(ctx, editor, &dto.TextPutRequest{ID: "a", RestoreVersion: int64Ptr(4)})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, int64(5), res.Version)
	assert.Equal(t, "a:restore", n.changed[len(n.changed)-1])
}

func TestTextService_DeleteKeepsHistory(t *testing.T) {
	svc, store, n := newTestTextService()
	ctx := context.Background()
	put(t, svc, "a", "one")
	put(t, svc, "a", "two")

	res, err := svc.Delete(ctx, editor, " a ")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, []string{"a"}, n.deleted)

	resolved, err := svc.Resolve(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, resolved.Content)

	history, err := svc.History(ctx, editor, &dto.TextHistoryRequest{ID: "a"})
	require.NoError(t, err)
	assert.Len(t, history.Versions, 2)

	// deleting a missing block is not an error and publishes nothing
	_, err = svc.Delete(ctx, editor, "a")
	require.NoError(t, err)
	assert.Len(t, n.deleted, 1)

	_, err = svc.Delete(ctx, editor, "")
	assert.ErrorIs(t, err, code.ErrorTextIDRequired)

	// recreating continues the version sequence
	created := put(t, svc, "a", "three")
	assert.Equal(t, int64(3), created.Version)
	assert.Len(t, store.history, 3)

	// a deleted block can be restored from its history
	res2, err := svc.Put(ctx, editor, &dto.TextPutRequest{ID: "a", RestoreVersion: int64Ptr(1)})
	require.NoError(t, err)
	assert.Equal(t, "one", res2.TextBlock.Content)
}

func TestTextService_Resolve(t *testing.T) {
	svc, store, _ := newTestTextService()
	ctx := context.Background()

	res, err := svc.Resolve(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, res.Content)
	assert.Nil(t, res.UpdatedAt)

	put(t, svc, "hero.title", "Hi")
	res, err = svc.Resolve(ctx, "hero.title")
	require.NoError(t, err)
	require.NotNil(t, res.Content)
	assert.Equal(t, "Hi", *res.Content)
	require.NotNil(t, res.UpdatedAt)

	_, err = svc.Resolve(ctx, "")
	assert.ErrorIs(t, err, code.ErrorTextIDRequired)

	writes := store.writes
	_, _ = svc.Resolve(ctx, "hero.title")
	assert.Equal(t, writes, store.writes, "resolve has no side effects")
}

// gatedBlockRepo blocks Get until release is closed and records the ctx state it saw
type gatedBlockRepo struct {
	*textMockBlockRepo
	entered chan struct{}
	release chan struct{}
	once    sync.Once
	ctxErr  chan error
}

func (m *gatedBlockRepo) Get(ctx context.Context, id string) (*domain.TextBlock, error) {
	m.once.Do(func() { close(m.entered) })
	<-m.release
	m.ctxErr <- ctx.Err()
	return m.textMockBlockRepo.Get(ctx, id)
}

func TestTextService_ResolveSharedLookupSurvivesCancel(t *testing.T) {
	store := newTextStore()
	store.blocks["hero.title"] = &domain.TextBlock{ID: "hero.title", Content: "Hi", Version: 1}
	repo := &gatedBlockRepo{
		textMockBlockRepo: &textMockBlockRepo{store: store},
		entered:           make(chan struct{}),
		release:           make(chan struct{}),
		ctxErr:            make(chan error, 2),
	}
	svc := NewTextService(repo, &textMockHistoryRepo{store: store}, nil, nil, nil, nil)

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.Resolve(first, "hero.title")
		firstErr <- err
	}()
	<-repo.entered

	type result struct {
		res *dto.ContentResolveResponse
		err error
	}
	second := make(chan result, 1)
	go func() {
		res, err := svc.Resolve(context.Background(), "hero.title")
		second <- result{res, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	select {
	case err := <-firstErr:
		assert.ErrorIs(t, err, code.ErrorStorageUnavailable)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller still waiting on the shared lookup")
	}

	close(repo.release)
	got := <-second
	require.NoError(t, got.err)
	require.NotNil(t, got.res.Content)
	assert.Equal(t, "Hi", *got.res.Content)
	assert.NoError(t, <-repo.ctxErr, "the shared lookup must not inherit the first caller's cancel")
}

func TestTextService_StorageErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want *code.Code
	}{
		{"queue full", writequeue.ErrWriteQueueFull, code.ErrorStorageUnavailable},
		{"locked", errors.New("database is locked (5) (SQLITE_BUSY)"), code.ErrorStorageUnavailable},
		{"deadline", fmt.Errorf("query: %w", context.DeadlineExceeded), code.ErrorStorageUnavailable},
		{"other", errors.New("syntax error"), code.ErrorDBQuery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, n := newTestTextService()
			store.err = tt.err
			ctx := context.Background()

			_, err := svc.Resolve(ctx, "a")
			assert.ErrorIs(t, err, tt.want)
			_, err = svc.Put(ctx, editor, &dto.TextPutRequest{ID: "a", Content: "x"})
			assert.ErrorIs(t, err, tt.want)
			_, err = svc.Delete(ctx, editor, "a")
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, n.changed)
		})
	}
}

func TestTextService_HistoryLimit(t *testing.T) {
	svc, _, _ := newTestTextService()
	ctx := context.Background()
	for i := 1; i <= 25; i++ {
		put(t, svc, "a", fmt.Sprintf("v%d", i))
	}

	tests := []struct {
		limit int
		want  int
	}{
		{0, 20},
		{-3, 20},
		{5, 5},
		{100, 25},
		{1000, 25},
	}
	for _, tt := range tests {
		res, err := svc.History(ctx, editor, &dto.TextHistoryRequest{ID: "a", Limit: tt.limit})
		require.NoError(t, err)
		if len(res.Versions) != tt.want {
			t.Errorf("History(limit=%d) returned %d versions, want %d", tt.limit, len(res.Versions), tt.want)
		}
		if len(res.Versions) > 0 {
			assert.Equal(t, int64(25), res.Versions[0].Version, "newest first")
		}
	}

	res, err := svc.History(ctx, editor, &dto.TextHistoryRequest{ID: "nothing"})
	require.NoError(t, err)
	assert.NotNil(t, res.Versions)
	assert.Empty(t, res.Versions)
}

func TestTextService_HistoryDiff(t *testing.T) {
	svc, _, _ := newTestTextService()
	ctx := context.Background()
	put(t, svc, "a", "Hello world")
	put(t, svc, "a", "Hello brave world")
	put(t, svc, "a", "Goodbye brave world")

	res, err := svc.History(ctx, editor, &dto.TextHistoryRequest{ID: "a", Limit: 2, Diff: true})
	require.NoError(t, err)
	require.Len(t, res.Versions, 2)

	for i, want := range []struct{ from, to string }{
		{"Hello brave world", "Goodbye brave world"},
		{"Hello world", "Hello brave world"},
	} {
		from, to := diff.Apply(res.Versions[i].Diff)
		assert.Equal(t, want.from, from)
		assert.Equal(t, want.to, to)
		require.NotNil(t, res.Versions[i].DiffSummary)
	}

	all, err := svc.History(ctx, editor, &dto.TextHistoryRequest{ID: "a", Diff: true})
	require.NoError(t, err)
	first := all.Versions[len(all.Versions)-1]
	assert.Equal(t, []diff.Segment{{Op: diff.OpInsert, Text: "Hello world"}}, first.Diff)

	plain, err := svc.History(ctx, editor, &dto.TextHistoryRequest{ID: "a"})
	require.NoError(t, err)
	assert.Nil(t, plain.Versions[0].Diff)
}

func TestTextService_List(t *testing.T) {
	svc, _, _ := newTestTextService()
	ctx := context.Background()
	for _, id := range []string{"home.b", "home.a", "about.a"} {
		page := strings.SplitN(id, ".", 2)[0]
		_, err := svc.Put(ctx, editor, &dto.TextPutRequest{ID: id, Content: id, Page: &page})
		require.NoError(t, err)
	}

	res, err := svc.List(ctx, editor, nil)
	require.NoError(t, err)
	require.Len(t, res.TextBlocks, 3)
	assert.Equal(t, "about.a", res.TextBlocks[0].ID)

	res, err = svc.List(ctx, editor, &dto.TextListRequest{Page: " home "})
	require.NoError(t, err)
	assert.Len(t, res.TextBlocks, 2)
}

// Every applied change adds exactly one version and versions never skip or repeat
func TestProperty_VersionMonotonic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	properties.Property("version equals number of applied changes", prop.ForAll(
		func(contents []string, restores []uint8) bool {
			svc, store, _ := newTestTextService()
			ctx := context.Background()
			var version int64
			for i, c := range contents {
				req := &dto.TextPutRequest{ID: "p", Content: c}
				if i < len(restores) && version > 0 && restores[i]%3 == 0 {
					req.RestoreVersion = int64Ptr(int64(restores[i])%version + 1)
				}
				res, err := svc.Put(ctx, editor, req)
				if strings.TrimSpace(c) == "" && req.RestoreVersion == nil {
					if !errors.Is(err, code.ErrorTextContentRequired) {
						return false
					}
					continue
				}
				if err != nil {
					return false
				}
				if res.Changed {
					version++
				}
				if res.Version != version {
					return false
				}
			}
			if int64(len(store.history)) != version {
				return false
			}
			for i, r := range store.history {
				if r.Version != int64(i+1) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.OneConstOf("a", "b", "c", " ", "a ")),
		gen.SliceOf(gen.UInt8()),
	))

	properties.TestingRun(t)
}
