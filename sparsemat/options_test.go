package sparsemat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/sparsemat/sparsemat/backend"
)

// TestDefaultOptions_Validate: the defaults describe the canonical 500×500 /
// 10,000-item workload and must validate unchanged.
func TestDefaultOptions_Validate(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()

	require.NoError(t, opts.Validate())
	assert.EqualValues(t, DefaultItems, opts.Items)
	assert.EqualValues(t, DefaultSize, opts.Size)
	assert.Equal(t, MethodAll, opts.Method)
	assert.False(t, opts.ItemsClamped)
}

// TestOptions_Validate_Ranges exercises the strict range checks.
func TestOptions_Validate_Ranges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr error
	}{
		{
			name:    "items below minimum",
			mutate:  func(o *Options) { o.Items = MinItems - 1 },
			wantErr: ErrItemsOutOfRange,
		},
		{
			name:    "items above maximum",
			mutate:  func(o *Options) { o.Items = MaxItems + 1 },
			wantErr: ErrItemsOutOfRange,
		},
		{
			name:    "size below minimum",
			mutate:  func(o *Options) { o.Size = MinSize - 1 },
			wantErr: ErrSizeOutOfRange,
		},
		{
			name:    "size above maximum",
			mutate:  func(o *Options) { o.Size = MaxSize + 1 },
			wantErr: ErrSizeOutOfRange,
		},
		{
			name:    "unregistered method",
			mutate:  func(o *Options) { o.Method = "btree" },
			wantErr: backend.ErrUnknownBackend,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := DefaultOptions()
			tt.mutate(&opts)

			assert.ErrorIs(t, opts.Validate(), tt.wantErr)
		})
	}
}

// TestOptions_Validate_ClampsItems: items beyond the matrix capacity clamp
// to size² and flag the clamp for diagnostics.
func TestOptions_Validate_ClampsItems(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.Items = 10000
	opts.Size = 20 // Capacity 400

	require.NoError(t, opts.Validate())
	assert.EqualValues(t, 400, opts.Items, "items must clamp to size²")
	assert.True(t, opts.ItemsClamped)
}

// TestOptions_Validate_EmptyMethodMeansAll: the zero method resolves to the
// whole registry.
func TestOptions_Validate_EmptyMethodMeansAll(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.Method = ""

	require.NoError(t, opts.Validate())
	assert.Equal(t, MethodAll, opts.Method)
	assert.Equal(t, backend.Names(), opts.methods())
}

// TestOptions_Methods_SingleBackend: a named method restricts the run to
// that backend only.
func TestOptions_Methods_SingleBackend(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	opts.Method = "gomap"

	require.NoError(t, opts.Validate())
	assert.Equal(t, []string{"gomap"}, opts.methods())
}
