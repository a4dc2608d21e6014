package prompt

import (
	"bufio"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confirmWith(t *testing.T, input string, def bool) (bool, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	term := &Terminal{In: bufio.NewReader(strings.NewReader(input)), Out: out}
	ok, err := term.Confirm("Create tag rel-1.0 for project svc?", def)
	return ok, out.String(), err
}

func TestTerminalConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   bool
		want  bool
	}{
		{"yes", "y\n", false, true},
		{"yes word", "yes\n", false, true},
		{"no", "n\n", true, false},
		{"no word", "NO\n", true, false},
		{"empty takes default yes", "\n", true, true},
		{"empty takes default no", "\n", false, false},
		{"garbage takes default", "maybe\n", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := confirmWith(t, tt.input, tt.def)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTerminalConfirm_Hint(t *testing.T) {
	_, shown, err := confirmWith(t, "\n", true)
	require.NoError(t, err)
	assert.Contains(t, shown, "[Y/n]")

	_, shown, err = confirmWith(t, "\n", false)
	require.NoError(t, err)
	assert.Contains(t, shown, "[y/N]")
}

func TestTerminalConfirm_ClosedInput(t *testing.T) {
	_, _, err := confirmWith(t, "", true)
	require.Error(t, err)
}

func TestAssumeYes(t *testing.T) {
	ok, err := AssumeYes{}.Confirm("anything", false)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestScripted(t *testing.T) {
	s := &Scripted{Answers: []bool{true, false}}

	ok, err := s.Confirm("first?", false)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Confirm("second?", true)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Confirm("third?", true)
	require.Error(t, err)
	assert.Equal(t, []string{"first?", "second?", "third?"}, s.Asked)
}
