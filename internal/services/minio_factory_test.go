package services

import "testing"

func TestShouldUseSSL_Localhost(t *testing.T) {
	tests := []struct {
		endpoint string
		want     bool
	}{
		{"localhost:9000", false},
		{"127.0.0.1:9000", false},
		{"minio:9000", false},
		{"play.minio.io:9000", true},
		{"s3.amazonaws.com", true},
		{"minio.example.com:9000", true},
		{"localhost:9001", true}, // Different port
		{"192.168.1.100:9000", true},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			got := shouldUseSSL(tt.endpoint)
			if got != tt.want {
				t.Errorf("shouldUseSSL(%q) = %v, want %v", tt.endpoint, got, tt.want)
			}
		})
	}
}

func TestRealMinioFactory_NewClient(t *testing.T) {
	f := &RealMinioFactory{}

	client, err := f.NewClient(Credentials{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if _, ok := client.(*WrappedMinioClient); !ok {
		t.Errorf("expected *WrappedMinioClient, got %T", client)
	}

	admin, err := f.NewAdminClient(Credentials{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"})
	if err != nil {
		t.Fatalf("NewAdminClient failed: %v", err)
	}
	if admin == nil {
		t.Error("expected non-nil admin client")
	}
}

func TestRealMinioFactory_Implements_Interface(t *testing.T) {
	// Compile-time check that RealMinioFactory implements MinioClientFactory
	var _ MinioClientFactory = (*RealMinioFactory)(nil)
}
