package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandAliases(t *testing.T) {
	for _, tc := range []struct {
		args []string
		want string
	}{
		{[]string{"extract", "in.avi"}, "extract"},
		{[]string{"r", "in.avi"}, "extract"},
		{[]string{"R", "in.avi"}, "extract"},
		{[]string{"embed", "in.avi", "hi", "out.avi"}, "embed"},
		{[]string{"w", "in.avi", "hi", "out.avi"}, "embed"},
		{[]string{"W", "in.avi", "hi", "out.avi"}, "embed"},
		{[]string{"inspect", "in.avi"}, "inspect"},
		{[]string{"sample", "--chunks", "2", "out.avi"}, "sample"},
	} {
		// ParseContext resolves the command without running its action
		ctx, err := newApp().ParseContext(tc.args)
		require.NoError(t, err, tc.args)
		require.NotNil(t, ctx.SelectedCommand, tc.args)
		assert.Equal(t, tc.want, ctx.SelectedCommand.FullCommand(), tc.args)
	}
}

func TestUnknownMode(t *testing.T) {
	_, err := newApp().ParseContext([]string{"x", "in.avi"})
	assert.Error(t, err)
}
