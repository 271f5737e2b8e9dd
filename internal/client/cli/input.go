package cli

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// readLine waits for the next line on scanner. It returns early with
// ctx.Err() when ctx is done; the pending read is then abandoned.
func readLine(ctx context.Context, scanner *bufio.Scanner) (string, error) {
	type result struct {
		line string
		ok   bool
	}
	ch := make(chan result, 1)
	go func() {
		ok := scanner.Scan()
		ch <- result{line: scanner.Text(), ok: ok}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if !r.ok {
			if err := scanner.Err(); err != nil {
				return "", err
			}
			return "", io.EOF
		}
		return strings.TrimSpace(r.line), nil
	}
}
