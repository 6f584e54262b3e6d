package control

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixieflatline76/photoframe/internal/events"
)

func TestParseCommand(t *testing.T) {
	cases := []struct {
		line string
		want events.ViewerCommand
		ok   bool
	}{
		{"sleep", events.ViewerCommand{Kind: events.SetState, DesiredState: events.Asleep}, true},
		{"wake", events.ViewerCommand{Kind: events.SetState, DesiredState: events.Awake}, true},
		{"toggle", events.ViewerCommand{Kind: events.ToggleState}, true},
		{"nonsense", events.ViewerCommand{}, false},
	}
	for _, c := range cases {
		got, ok := ParseCommand(c.line)
		assert.Equal(t, c.ok, ok, c.line)
		if c.ok {
			assert.Equal(t, c.want, got, c.line)
		}
	}
}

func TestServerForwardsCommandsFromConnection(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "photoframe.sock")
	out := make(chan events.ViewerCommand, 8)
	s := New(sockPath, out)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go s.Run(ctx)
	require.Eventually(t, func() bool {
		_, err := net.Dial("unix", sockPath)
		return err == nil
	}, time.Second, 5*time.Millisecond)

	conn, err := net.Dial("unix", sockPath)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("sleep\ntoggle\n"))
	require.NoError(t, err)

	var got []events.ViewerCommand
	for i := 0; i < 2; i++ {
		select {
		case cmd := <-out:
			got = append(got, cmd)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for forwarded command")
		}
	}
	assert.Equal(t, events.SetState, got[0].Kind)
	assert.Equal(t, events.Asleep, got[0].DesiredState)
	assert.Equal(t, events.ToggleState, got[1].Kind)
}

func TestServerIgnoresUnrecognizedLines(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "photoframe.sock")
	out := make(chan events.ViewerCommand, 8)
	s := New(sockPath, out)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)
	require.Eventually(t, func() bool {
		_, err := net.Dial("unix", sockPath)
		return err == nil
	}, time.Second, 5*time.Millisecond)

	conn, err := net.Dial("unix", sockPath)
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("garbage\nwake\n"))
	require.NoError(t, err)

	select {
	case cmd := <-out:
		assert.Equal(t, events.Awake, cmd.DesiredState)
	case <-time.After(time.Second):
		t.Fatal("expected the recognized wake command to still be forwarded")
	}
}
