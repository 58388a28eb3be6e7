package chat

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// frame is a decoded outbound envelope with its payload fields flattened.
type frame struct {
	Event string
	Data  map[string]any
}

// drain returns every frame currently queued on c without blocking.
func drain(t *testing.T, c *Conn) []frame {
	t.Helper()

	var out []frame
	for {
		select {
		case raw, ok := <-c.Outbound():
			if !ok {
				return out
			}
			out = append(out, decodeFrame(t, raw))
		default:
			return out
		}
	}
}

func decodeFrame(t *testing.T, raw []byte) frame {
	t.Helper()

	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env))

	f := frame{Event: env.Event}
	if len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, &f.Data))
	}
	return f
}

func events(frames []frame) []string {
	out := make([]string, 0, len(frames))
	for _, f := range frames {
		out = append(out, f.Event)
	}
	return out
}
