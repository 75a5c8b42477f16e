package utils

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSSE(t *testing.T) {
	reader := bufio.NewReader(strings.NewReader(
		": heartbeat\n\nevent: audit\ndata: {\"action\":\"complete\"}\nbogus\n",
	))

	var payloads []string

	for {
		data, err := ReadSSE(reader)

		if err == io.EOF {
			break
		}

		if err != nil {
			assert.EqualError(t, err, "invalid SSE line")
			continue
		}

		if data != "" {
			payloads = append(payloads, data)
		}
	}

	require.Len(t, payloads, 1)
	assert.JSONEq(t, `{"action":"complete"}`, payloads[0])
}
