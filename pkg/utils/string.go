package utils

import (
	"bufio"
	"errors"
	"strings"
)

/*
ReadSSE reads one line of an event stream and returns its data payload.
Blank lines, comments and event/id/retry fields yield an empty payload.
*/
func ReadSSE(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')

	if err != nil {
		return "", err
	}

	line = strings.TrimSpace(line)

	if line == "" || strings.HasPrefix(line, ":") { // comments / keep‑alive
		return "", nil
	}

	for _, field := range []string{"event:", "id:", "retry:"} {
		if strings.HasPrefix(line, field) {
			return "", nil
		}
	}

	if !strings.HasPrefix(line, "data:") {
		return "", errors.New("invalid SSE line")
	}

	return strings.TrimSpace(strings.TrimPrefix(line, "data:")), nil
}
