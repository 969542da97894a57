package backup

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// mockS3Client implements s3Client for testing.
type mockS3Client struct {
	mu       sync.Mutex
	objects  map[string][]byte
	modified map[string]time.Time
	putErr   error
}

func newMockS3() *mockS3Client {
	return &mockS3Client{
		objects:  make(map[string][]byte),
		modified: make(map[string]time.Time),
	}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	data, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = data
	m.modified[*input.Key] = time.Now().UTC()
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) ListObjectsV2(_ context.Context, input *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var contents []types.Object
	for key := range m.objects {
		if input.Prefix != nil && !strings.HasPrefix(key, *input.Prefix) {
			continue
		}
		mod := m.modified[key]
		contents = append(contents, types.Object{
			Key:          aws.String(key),
			LastModified: aws.Time(mod),
		})
	}
	return &s3.ListObjectsV2Output{
		Contents:    contents,
		IsTruncated: aws.Bool(false),
	}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, *input.Key)
	delete(m.modified, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func enabledConfig() Config {
	return Config{
		S3:         S3Config{Bucket: "test", AccessKey: "key", SecretKey: "secret", Prefix: "shepherd"},
		Passphrase: "backup-pass",
	}
}

func TestManagerStateLifecycle(t *testing.T) {
	// Without S3 config or passphrase the manager stays disabled.
	m := NewManager(Config{}, nil, testLogger())
	if m.Status().State != StateDisabled {
		t.Errorf("state = %q, want %q", m.Status().State, StateDisabled)
	}
	if m.Enabled() {
		t.Error("disabled manager reports Enabled")
	}

	m2 := NewManager(enabledConfig(), nil, testLogger())
	if m2.Status().State != StateIdle {
		t.Errorf("state = %q, want %q", m2.Status().State, StateIdle)
	}
	if !m2.Enabled() {
		t.Error("configured manager reports disabled")
	}
}

func TestManagerStatusCallback(t *testing.T) {
	var mu sync.Mutex
	var received []Status
	cb := func(s Status) {
		mu.Lock()
		received = append(received, s)
		mu.Unlock()
	}

	m := NewManager(enabledConfig(), cb, testLogger())

	m.setStatus(Status{State: StateRunning, InProgress: true})
	m.setStatus(Status{State: StateIdle})

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 2 {
		t.Fatalf("received %d callbacks, want 2", len(received))
	}
	if received[0].State != StateRunning || received[1].State != StateIdle {
		t.Errorf("callback states = %q, %q", received[0].State, received[1].State)
	}
}

func TestRunNowUploadsEncryptedFiles(t *testing.T) {
	dir := t.TempDir()
	snapshot := filepath.Join(dir, "shepherd.json")
	if err := os.WriteFile(snapshot, []byte(`{"members":[]}`), 0600); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	missingQueue := filepath.Join(dir, "pending-actions.json")

	cfg := enabledConfig()
	cfg.Files = []string{snapshot, missingQueue}

	m := NewManager(cfg, nil, testLogger())
	mock := newMockS3()
	m.client = mock

	if err := m.RunNow(context.Background()); err != nil {
		t.Fatalf("run now: %v", err)
	}

	// Missing queue file is skipped, snapshot is uploaded.
	if len(mock.objects) != 1 {
		t.Fatalf("uploaded %d objects, want 1", len(mock.objects))
	}
	for key, data := range mock.objects {
		if !strings.HasPrefix(key, "shepherd/backup-") || !strings.HasSuffix(key, "-shepherd.json.enc") {
			t.Errorf("object key = %q", key)
		}
		if strings.Contains(string(data), "members") {
			t.Error("uploaded object contains plaintext")
		}
	}

	st := m.Status()
	if st.State != StateIdle || st.LastBackup == nil {
		t.Errorf("status after run = %+v", st)
	}
}

func TestCleanupDeletesExpiredBackups(t *testing.T) {
	cfg := enabledConfig()
	cfg.RetentionDays = 30

	m := NewManager(cfg, nil, testLogger())
	mock := newMockS3()
	m.client = mock

	mock.objects["shepherd/backup-old-shepherd.json.enc"] = []byte("x")
	mock.modified["shepherd/backup-old-shepherd.json.enc"] = time.Now().UTC().AddDate(0, 0, -45)
	mock.objects["shepherd/backup-new-shepherd.json.enc"] = []byte("x")
	mock.modified["shepherd/backup-new-shepherd.json.enc"] = time.Now().UTC()

	if err := m.Cleanup(context.Background()); err != nil {
		t.Fatalf("cleanup: %v", err)
	}

	if _, ok := mock.objects["shepherd/backup-old-shepherd.json.enc"]; ok {
		t.Error("expired backup not deleted")
	}
	if _, ok := mock.objects["shepherd/backup-new-shepherd.json.enc"]; !ok {
		t.Error("recent backup deleted")
	}
}

func TestManagerDisabledNoStart(t *testing.T) {
	m := NewManager(Config{}, nil, testLogger())

	m.Start(context.Background())
	m.Stop()
}

func TestManagerStopSafety(t *testing.T) {
	m := NewManager(enabledConfig(), nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)
	time.Sleep(20 * time.Millisecond)
	cancel()
	m.Stop()

	// Double stop should not panic.
	m.Stop()
}
