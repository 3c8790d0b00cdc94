package local_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idcardgen/internal/config"
	"idcardgen/internal/domain"
	"idcardgen/internal/port"
	"idcardgen/internal/storage/local"
)

// 1x1 transparent PNG.
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

func newStore(t *testing.T) (port.ScratchStorage, string, string) {
	t.Helper()
	root := t.TempDir()
	cfg := &config.StorageConfig{
		UploadDir: filepath.Join(root, "uploads"),
		OutputDir: filepath.Join(root, "generated"),
	}
	store, err := local.NewStore(cfg)
	require.NoError(t, err)
	require.NoError(t, store.Prepare())
	return store, cfg.UploadDir, cfg.OutputDir
}

func TestPrepare_CreatesDirectories(t *testing.T) {
	_, uploadDir, outputDir := newStore(t)

	for _, dir := range []string{uploadDir, outputDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestCheck_Healthy(t *testing.T) {
	store, _, _ := newStore(t)
	assert.NoError(t, store.Check(context.Background()))
}

func TestCheck_MissingDirectory(t *testing.T) {
	store, _, outputDir := newStore(t)
	require.NoError(t, os.RemoveAll(outputDir))

	assert.Error(t, store.Check(context.Background()))
}

func TestSaveUpload_WritesUniqueFiles(t *testing.T) {
	store, uploadDir, _ := newStore(t)
	ctx := context.Background()

	first, err := store.SaveUpload(ctx, port.SaveInput{OriginalName: "sample.PDF", Body: strings.NewReader("%PDF-1.4 one")})
	require.NoError(t, err)
	second, err := store.SaveUpload(ctx, port.SaveInput{OriginalName: "sample.PDF", Body: strings.NewReader("%PDF-1.4 two")})
	require.NoError(t, err)

	assert.NotEqual(t, first.Path, second.Path)
	assert.Equal(t, uploadDir, filepath.Dir(first.Path))
	assert.Equal(t, ".pdf", filepath.Ext(first.Path))
	assert.Equal(t, "sample.PDF", first.OriginalName)
	assert.Equal(t, int64(len("%PDF-1.4 one")), first.Size)

	data, err := os.ReadFile(second.Path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 two", string(data))
}

func TestSaveUpload_StripsClientDirectories(t *testing.T) {
	store, _, _ := newStore(t)

	doc, err := store.SaveUpload(context.Background(), port.SaveInput{
		OriginalName: `C:\fakepath\..\resume.pdf`,
		Body:         strings.NewReader("x"),
	})
	require.NoError(t, err)
	assert.Equal(t, "resume.pdf", doc.OriginalName)
}

func TestSaveUpload_DropsSuspiciousExtension(t *testing.T) {
	store, _, _ := newStore(t)

	doc, err := store.SaveUpload(context.Background(), port.SaveInput{
		OriginalName: "report.p df",
		Body:         strings.NewReader("x"),
	})
	require.NoError(t, err)
	assert.Empty(t, filepath.Ext(doc.Path))
}

func TestSaveUpload_CanceledContext(t *testing.T) {
	store, uploadDir, _ := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.SaveUpload(ctx, port.SaveInput{OriginalName: "a.pdf", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, context.Canceled)

	entries, err := os.ReadDir(uploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestResolveArtifact_Found(t *testing.T) {
	store, _, outputDir := newStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(outputDir, "id_123.png"), pngBytes, 0o644))

	artifact, err := store.ResolveArtifact(context.Background(), "id_123.png")
	require.NoError(t, err)

	assert.Equal(t, "id_123.png", artifact.Name)
	assert.Equal(t, filepath.Join(outputDir, "id_123.png"), artifact.Path)
	assert.Equal(t, "image/png", artifact.ContentType)
	assert.Equal(t, int64(len(pngBytes)), artifact.Size)
}

func TestResolveArtifact_Missing(t *testing.T) {
	store, _, _ := newStore(t)

	_, err := store.ResolveArtifact(context.Background(), "nope.png")
	assert.ErrorIs(t, err, domain.ErrArtifactMissing)
}

func TestResolveArtifact_RejectsTraversal(t *testing.T) {
	store, uploadDir, _ := newStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(uploadDir, "secret.txt"), []byte("x"), 0o644))

	for _, name := range []string{"../uploads/secret.txt", "..", ".", "", `..\secret.txt`} {
		_, err := store.ResolveArtifact(context.Background(), name)
		assert.ErrorIs(t, err, domain.ErrArtifactMissing, "name %q", name)
	}
}

func TestResolveArtifact_Directory(t *testing.T) {
	store, _, outputDir := newStore(t)
	require.NoError(t, os.Mkdir(filepath.Join(outputDir, "nested"), 0o755))

	_, err := store.ResolveArtifact(context.Background(), "nested")
	assert.ErrorIs(t, err, domain.ErrArtifactMissing)
}

func TestResolveArtifact_UnknownContentFallsBackToExtension(t *testing.T) {
	store, _, outputDir := newStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(outputDir, "card.jpg"), bytes.Repeat([]byte{0x01}, 32), 0o644))

	artifact, err := store.ResolveArtifact(context.Background(), "card.jpg")
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", artifact.ContentType)
}

func TestRemove_IgnoresMissingFile(t *testing.T) {
	store, uploadDir, _ := newStore(t)
	path := filepath.Join(uploadDir, "gone.pdf")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	require.NoError(t, store.Remove(context.Background(), path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Remove(context.Background(), path))
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sample.pdf", "sample.pdf"},
		{"dir/sample.pdf", "sample.pdf"},
		{`C:\Users\me\sample.pdf`, "sample.pdf"},
		{"", "upload"},
		{"..", "upload"},
		{"dir/", "upload"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, local.BaseName(tt.in), "input %q", tt.in)
	}
}
