package integration_tests

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/xodrun/internal/builder"
	"github.com/vk/xodrun/internal/engine"
	"github.com/vk/xodrun/internal/node"
	"github.com/vk/xodrun/internal/registry"
	"github.com/vk/xodrun/internal/testutil"
)

func TestErrorHandling_ProgramIsRejected(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		src     string
		wantErr error
		wantMsg string
	}{
		{
			name:    "unknown patch",
			src:     `node "xod/core/teleport" "x" {}`,
			wantErr: builder.ErrUnknownPatch,
		},
		{
			name: "unknown input pin",
			src: `
				node "xod/core/not" "n" {
				  inputs {
				    NOPE = true
				  }
				}
			`,
			wantErr: builder.ErrUnknownPin,
		},
		{
			name: "link between mismatched types",
			src: `
				node "xod/core/flip-flop" "ff" {}
				node "xod/core/add" "a" {
				  inputs {
				    X = node.ff.MEM
				  }
				}
			`,
			wantErr: builder.ErrTypeMismatch,
		},
		{
			name: "literal of the wrong type",
			src: `
				node "xod/core/add" "a" {
				  inputs {
				    X = "seven"
				  }
				}
			`,
			wantErr: builder.ErrTypeMismatch,
		},
		{
			name: "link to a later node",
			src: `
				node "xod/core/add" "a" {
				  inputs {
				    X = node.b.OUT
				  }
				}
				node "xod/core/add" "b" {}
			`,
			wantErr: engine.ErrBackwardLink,
		},
		{
			name: "duplicate id",
			src: `
				node "xod/core/add" "a" {
				  id = 4
				}
				node "xod/core/add" "b" {
				  id = 4
				}
			`,
			wantErr: builder.ErrDuplicateName,
		},
		{
			name:    "invalid hcl",
			src:     `node "xod/core/add" "a" {`,
			wantMsg: "failed to parse HCL file",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Act ---
			_, err := testutil.Load(t, map[string]string{"main.hcl": tc.src})

			// --- Assert ---
			require.Error(t, err)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			}
			if tc.wantMsg != "" {
				assert.Contains(t, err.Error(), tc.wantMsg)
			}
		})
	}
}

func TestErrorHandling_InvalidPatchFailsValidation(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A defer patch must declare that it uses timeouts.
	mod := &testutil.SimpleModule{Patches: []*registry.Patch{{
		Path:     "test/bad-defer",
		Inputs:   []node.PinSpec{node.In("IN", node.Number)},
		Outputs:  []node.PinSpec{node.Out("OUT", node.Number)},
		Evaluate: func(*engine.Context) error { return nil },
		Defer:    true,
	}}}

	// --- Act ---
	_, err := testutil.Load(t, map[string]string{"main.hcl": ""}, mod)

	// --- Assert ---
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registry validation failed")
	assert.Contains(t, err.Error(), "test/bad-defer")
}

func TestErrorHandling_NodeErrorDoesNotStopTransaction(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	mod := &testutil.SimpleModule{Patches: []*registry.Patch{{
		Path:    "test/explode",
		Inputs:  []node.PinSpec{node.In("IN", node.Number)},
		Outputs: []node.PinSpec{node.Out("OUT", node.Number)},
		Evaluate: func(c *engine.Context) error {
			panic("boom")
		},
	}}}
	h := testutil.Program(t, `
		node "test/explode" "x" {}
		node "xod/core/add" "after" {
		  inputs {
		    X = 1
		    Y = 1
		  }
		}
	`, mod)

	// --- Act ---
	rep := h.TickAt(0)

	// --- Assert ---
	assert.Equal(t, 1, rep.Failed)
	assert.Equal(t, 2.0, h.Number("after", 0))
	assert.Contains(t, h.Logs.String(), "boom")
}
