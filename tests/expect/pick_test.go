package expect

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPick_SelectPrintsValue(t *testing.T) {
	bin := Binary(t)

	s, err := Start(bin, []string{"pick", "--label", "Fruit", "--values",
		"--options", "Apple Banana Orange=orange-juice"},
		WithEnv(IsolatedEnv(t)...), WithTimeout(5*time.Second))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Expect("Fruit")
	require.NoError(t, err)

	require.NoError(t, s.Send("ora"))
	require.NoError(t, s.SendKey(KeyDown))
	require.NoError(t, s.SendKey(KeyEnter))

	_, err = s.Expect("orange-juice")
	require.NoError(t, err)

	code, err := s.Wait(5 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestPick_EscapeTwiceCancels(t *testing.T) {
	bin := Binary(t)

	s, err := Start(bin, []string{"pick", "--label", "Fruit"},
		WithEnv(IsolatedEnv(t)...))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Expect("Fruit")
	require.NoError(t, err)

	require.NoError(t, s.SendKey(KeyEscape))
	time.Sleep(200 * time.Millisecond) // let the lone ESC be read as a key
	require.NoError(t, s.SendKey(KeyEscape))

	code, err := s.Wait(5 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, code)
}

func TestPick_DumbTerminalFallsBack(t *testing.T) {
	bin := Binary(t)

	s, err := Start(bin, []string{"pick"}, WithEnv(append(IsolatedEnv(t), "TERM=dumb")...))
	require.NoError(t, err)
	defer s.Close()

	code, err := s.Wait(5 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, 2, code)
}

func TestDemo_ShowsBothWidgetsAndQuits(t *testing.T) {
	bin := Binary(t)

	s, err := Start(bin, []string{"demo"}, WithEnv(IsolatedEnv(t)...))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Expect("Async Search")
	require.NoError(t, err)
	_, err = s.Expect("Sync Search")
	require.NoError(t, err)

	require.NoError(t, s.SendKey(KeyCtrlC))
	code, err := s.Wait(5 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}
