//go:build integration

package integration

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	defaultMinioTestImage = "docker.io/minio/minio:RELEASE.2025-09-07T16-13-09Z"
	defaultRedisTestImage = "docker.io/library/redis:7-alpine"
)

func imageFromEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// startContainer runs image and returns host:port for the exposed port.
func startContainer(t *testing.T, req testcontainers.ContainerRequest, port string) string {
	t.Helper()
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start %s: %v", req.Image, err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("resolve %s host: %v", req.Image, err)
	}
	mapped, err := container.MappedPort(ctx, nat.Port(port))
	if err != nil {
		t.Fatalf("resolve %s port: %v", req.Image, err)
	}
	return net.JoinHostPort(host, mapped.Port())
}

type minioEnv struct {
	endpoint string
	bucket   string
	client   *minio.Client
}

func newMinIOEnv(t *testing.T) *minioEnv {
	t.Helper()
	endpoint := startContainer(t, testcontainers.ContainerRequest{
		Image: imageFromEnv("MINIO_TEST_IMAGE", defaultMinioTestImage),
		Env: map[string]string{
			"MINIO_ROOT_USER":     "minioadmin",
			"MINIO_ROOT_PASSWORD": "minioadmin",
		},
		ExposedPorts: []string{"9000/tcp"},
		Cmd:          []string{"server", "/data", "--address", ":9000"},
		WaitingFor:   wait.ForListeningPort("9000/tcp").WithStartupTimeout(45 * time.Second),
	}, "9000/tcp")

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Fatalf("create minio client: %v", err)
	}
	waitForMinIOReady(t, client)

	bucket := fmt.Sprintf("product-images-it-%d", time.Now().UnixNano())
	if err := client.MakeBucket(context.Background(), bucket, minio.MakeBucketOptions{}); err != nil {
		t.Fatalf("create bucket: %v", err)
	}
	return &minioEnv{endpoint: endpoint, bucket: bucket, client: client}
}

func waitForMinIOReady(t *testing.T, client *minio.Client) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		_, err := client.ListBuckets(ctx)
		if err == nil {
			return
		}
		select {
		case <-ctx.Done():
			t.Fatalf("minio readiness check timed out: %v", err)
		case <-ticker.C:
		}
	}
}

func (e *minioEnv) putObject(t *testing.T, key string, body []byte, contentType string) {
	t.Helper()
	_, err := e.client.PutObject(context.Background(), e.bucket, key, strings.NewReader(string(body)), int64(len(body)), minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		t.Fatalf("put %s: %v", key, err)
	}
}

func newRedisAddr(t *testing.T) string {
	t.Helper()
	return startContainer(t, testcontainers.ContainerRequest{
		Image:        imageFromEnv("REDIS_TEST_IMAGE", defaultRedisTestImage),
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(45 * time.Second),
	}, "6379/tcp")
}
