package storage

import "testing"

func TestImportKey(t *testing.T) {
	tests := []struct {
		id, ext, want string
	}{
		{"abc", "json", "imports/abc.json"},
		{"V1StGXR8_Z5jdHi6B-myT", "ged", "imports/V1StGXR8_Z5jdHi6B-myT.ged"},
	}
	for _, tt := range tests {
		if got := ImportKey(tt.id, tt.ext); got != tt.want {
			t.Errorf("ImportKey(%q, %q) = %q, want %q", tt.id, tt.ext, got, tt.want)
		}
	}
}

func TestNewS3ClientWithEndpoint(t *testing.T) {
	t.Setenv("AWS_REGION", "")
	t.Setenv("AWS_ENDPOINT", "http://localhost:9000")
	t.Setenv("AWS_ACCESS_KEY", "minio")
	t.Setenv("AWS_SECRET_KEY", "minio123")

	client, err := NewS3Client(t.Context())
	if err != nil {
		t.Fatalf("NewS3Client returned error: %v", err)
	}
	if !client.Options().UsePathStyle {
		t.Fatal("expected path style addressing")
	}
	if client.Options().Region != "us-east-1" {
		t.Fatalf("expected default region, got %q", client.Options().Region)
	}
}
