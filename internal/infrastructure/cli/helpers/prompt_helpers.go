package helpers

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Confirm asks a destructive-action question and reads a y/N answer from in.
// assumeYes (the --yes flag) answers without prompting.
func Confirm(in io.Reader, out io.Writer, question string, assumeYes bool) bool {
	if assumeYes {
		return true
	}
	fmt.Fprintf(out, "%s [y/N]: ", question)
	line, _ := bufio.NewReader(in).ReadString('\n')
	return isAffirmativeResponse(strings.ToLower(strings.TrimSpace(line)))
}

func isAffirmativeResponse(response string) bool {
	return response == "y" || response == "yes"
}
