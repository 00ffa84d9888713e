package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Contract(t *testing.T) {
	tests := []struct {
		name    string
		seed    map[string]string
		run     func(ctx context.Context, s *Store) error
		key     string
		want    string
		present bool
	}{
		{
			name: "missing key",
			run:  func(context.Context, *Store) error { return nil },
			key:  "farms",
		},
		{
			name:    "set then get",
			run:     func(ctx context.Context, s *Store) error { return s.SetItem(ctx, "farms", `{"farms":[]}`) },
			key:     "farms",
			want:    `{"farms":[]}`,
			present: true,
		},
		{
			name:    "set overwrites",
			seed:    map[string]string{"farms": "old"},
			run:     func(ctx context.Context, s *Store) error { return s.SetItem(ctx, "farms", "new") },
			key:     "farms",
			want:    "new",
			present: true,
		},
		{
			name: "remove existing",
			seed: map[string]string{"dailyReport": "x"},
			run:  func(ctx context.Context, s *Store) error { return s.RemoveItem(ctx, "dailyReport") },
			key:  "dailyReport",
		},
		{
			name:    "remove missing keeps others",
			seed:    map[string]string{"farms": "kept"},
			run:     func(ctx context.Context, s *Store) error { return s.RemoveItem(ctx, "never-set") },
			key:     "farms",
			want:    "kept",
			present: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := New()
			t.Cleanup(func() { _ = s.Close(ctx) })
			for k, v := range tt.seed {
				require.NoError(t, s.SetItem(ctx, k, v))
			}

			require.NoError(t, tt.run(ctx, s))

			got, ok, err := s.GetItem(ctx, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.present, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStore_ConcurrentWriters(t *testing.T) {
	ctx := context.Background()
	s := New()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.SetItem(ctx, fmt.Sprintf("key-%d", i), "v"))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 20; i++ {
		_, ok, err := s.GetItem(ctx, fmt.Sprintf("key-%d", i))
		require.NoError(t, err)
		assert.True(t, ok)
	}
}
