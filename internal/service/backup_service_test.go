package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/haierkeys/site-text-service/internal/dto"
	"github.com/haierkeys/site-text-service/pkg/code"
	"github.com/haierkeys/site-text-service/pkg/storage"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backupMockStorager keeps uploaded objects in memory
type backupMockStorager struct {
	objects map[string][]byte
	err     error
}

func (m *backupMockStorager) SendContent(ctx context.Context, key string, content []byte, contentType string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.objects == nil {
		m.objects = map[string][]byte{}
	}
	m.objects[key] = content
	return "mem://" + key, nil
}

func (m *backupMockStorager) Delete(ctx context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func seedTextService(t *testing.T, store *textStore) {
	t.Helper()
	svc := NewTextService(&textMockBlockRepo{store: store}, &textMockHistoryRepo{store: store}, nil, nil, nil, nil)
	put(t, svc, "hero.title", "one")
	put(t, svc, "hero.title", "two")
	put(t, svc, "footer.note", "hi")
	_, err := svc.Delete(context.Background(), editor, "footer.note")
	require.NoError(t, err)
}

func TestBackupService_Run(t *testing.T) {
	store := newTextStore()
	seedTextService(t, store)
	storager := &backupMockStorager{}
	svc := NewBackupService(&textMockBlockRepo{store: store}, &textMockHistoryRepo{store: store}, storager, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Run(ctx, nil)
	assert.ErrorIs(t, err, code.ErrorNotUserAuthToken)
	_, err = svc.Run(ctx, editor)
	assert.ErrorIs(t, err, code.ErrorForbidden)
	assert.Empty(t, storager.objects)

	admin := *editor
	admin.Role = "admin"
	res, err := svc.Run(ctx, &admin)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.TextBlocks)
	assert.Equal(t, 3, res.Versions, "history of deleted blocks is kept")
	assert.True(t, strings.HasPrefix(res.Key, "backups/site-text-"))
	assert.True(t, strings.HasSuffix(res.Key, ".json"))

	var snapshot dto.BackupSnapshot
	require.NoError(t, sonic.Unmarshal(storager.objects[res.Key], &snapshot))
	assert.Equal(t, dto.BackupSnapshotFormat, snapshot.Format)
	assert.Equal(t, admin.Email, snapshot.CreatedBy)
	require.Len(t, snapshot.TextBlocks, 1)
	assert.Equal(t, "two", snapshot.TextBlocks[0].Content)
	assert.Equal(t, int64(2), snapshot.TextBlocks[0].Version)
	assert.Len(t, snapshot.Versions, 3)
}

func TestBackupService_Errors(t *testing.T) {
	store := newTextStore()
	ctx := context.Background()

	svc := NewBackupService(&textMockBlockRepo{store: store}, &textMockHistoryRepo{store: store}, nil, nil, nil, nil)
	assert.False(t, svc.Enabled())
	_, err := svc.RunScheduled(ctx)
	assert.ErrorIs(t, err, code.ErrorBackupStorageNotConfigured)

	svc = NewBackupService(&textMockBlockRepo{store: store}, &textMockHistoryRepo{store: store}, &backupMockStorager{err: errors.New("bucket gone")}, nil, nil, nil)
	_, err = svc.RunScheduled(ctx)
	assert.ErrorIs(t, err, code.ErrorBackupFailed)

	store.err = errors.New("database is locked")
	svc = NewBackupService(&textMockBlockRepo{store: store}, &textMockHistoryRepo{store: store}, &backupMockStorager{}, nil, nil, nil)
	_, err = svc.RunScheduled(ctx)
	assert.ErrorIs(t, err, code.ErrorStorageUnavailable)
}

func TestBackupService_LocalStorage(t *testing.T) {
	store := newTextStore()
	seedTextService(t, store)
	dir := t.TempDir()

	storager, err := storage.NewClient(context.Background(), &storage.Config{Type: storage.LOCAL, SavePath: dir, CustomPath: "site"}, nil)
	require.NoError(t, err)
	svc := NewBackupService(&textMockBlockRepo{store: store}, &textMockHistoryRepo{store: store}, storager, nil, nil, nil)

	res, err := svc.RunScheduled(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "site", filepath.FromSlash(res.Key)))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"createdBy":"scheduler"`)
}

func TestBackupKey(t *testing.T) {
	at := time.Date(2024, 3, 9, 8, 7, 6, 5e6, time.UTC)
	assert.Equal(t, "backups/site-text-20240309T080706.005Z.json", BackupKey("backups", at))
	assert.Equal(t, "site-text-20240309T080706.005Z.json", BackupKey("", at))
}
