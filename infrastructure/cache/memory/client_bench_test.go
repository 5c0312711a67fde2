package memory

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func BenchmarkMemoryCache_Get(b *testing.B) {
	cache := newCache()
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		_ = cache.Set(ctx, fmt.Sprintf("asset:name:%d", i), []byte(fmt.Sprintf("/srv/%d.png", i)), time.Hour)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = cache.Get(ctx, fmt.Sprintf("asset:name:%d", i%1000))
	}
}

func BenchmarkMemoryCache_Set(b *testing.B) {
	cache := newCache()
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = cache.Set(ctx, fmt.Sprintf("asset:name:%d", i), []byte("/srv/x.png"), time.Hour)
	}
}
