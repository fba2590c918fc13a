package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// prompt writes the question and returns the trimmed answer. End of input
// counts as an empty answer.
func prompt(r *bufio.Reader, w io.Writer, question string) (string, error) {
	fmt.Fprint(w, question)
	line, err := r.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// promptPath asks for the instance file. Surrounding quotes, as left by
// drag-and-drop in most terminals, are removed.
func promptPath(r *bufio.Reader, w io.Writer) (string, error) {
	answer, err := prompt(r, w, "Enter full path of the instance file: ")
	if err != nil {
		return "", err
	}
	answer = strings.Trim(answer, `"'`)
	if answer == "" {
		return "", errors.New("no instance file given")
	}
	return answer, nil
}

func promptYesNo(r *bufio.Reader, w io.Writer, question string) (bool, error) {
	answer, err := prompt(r, w, question)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(answer, "y"), nil
}
