package console

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

const invalidNumber = "Invalid number, please try again."

// readLine prints prompt and returns the next line without its terminator.
// io.EOF is returned once input is exhausted.
func (l *Loop) readLine(prompt string) (string, error) {
	fmt.Fprint(l.out, prompt)
	if !l.in.Scan() {
		if err := l.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimRight(l.in.Text(), "\r"), nil
}

// readInt re-prompts until the line parses as an integer
func (l *Loop) readInt(prompt string) (int64, error) {
	for {
		line, err := l.readLine(prompt)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
		if err == nil {
			return v, nil
		}
		fmt.Fprintln(l.out, invalidNumber)
	}
}

// readFloat re-prompts until the line parses as a finite number
func (l *Loop) readFloat(prompt string) (float64, error) {
	for {
		line, err := l.readLine(prompt)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(line), 64)
		if err == nil && !math.IsNaN(v) && !math.IsInf(v, 0) {
			return v, nil
		}
		fmt.Fprintln(l.out, invalidNumber)
	}
}
