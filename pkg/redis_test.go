package pkg

import (
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/SAP-F-2025/course-service/internal/config"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "reachable", url: "redis://" + mr.Addr()},
		{name: "malformed url", url: "://nope", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewRedisClient(&config.Config{RedisURL: tt.url})
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewRedisClient() error = %v, wantErr %v", err, tt.wantErr)
			}
			if client != nil {
				_ = client.Close()
			}
		})
	}
}
