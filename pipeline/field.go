package pipeline

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// FieldDecision says how to turn a field-based clip into frames before
// YUV4MPEG2 output, which has no notion of separate fields.
type FieldDecision int

const (
	FieldAbort FieldDecision = iota
	FieldAssumeFrameBased
	FieldWeave
)

var ErrFieldBased = errors.New("clip is field-based")

// FieldPolicy resolves a field-based clip.
type FieldPolicy func() (FieldDecision, error)

// FixedFieldPolicy always returns d.
func FixedFieldPolicy(d FieldDecision) FieldPolicy {
	return func() (FieldDecision, error) {
		return d, nil
	}
}

// PromptFieldPolicy asks on out and reads the answer from in.
func PromptFieldPolicy(in io.Reader, out io.Writer) FieldPolicy {
	return func() (FieldDecision, error) {
		fmt.Fprint(out, "clip is field-based, but yuv4mpeg2 does not support field-based clips.\n"+
			"1: add AssumeFrameBased()  2: add Weave()  others: exit\n"+
			"input a number and press enter: ")
		line, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && line == "" {
			return FieldAbort, err
		}
		switch strings.TrimSpace(line) {
		case "1":
			return FieldAssumeFrameBased, nil
		case "2":
			return FieldWeave, nil
		}
		return FieldAbort, nil
	}
}

// ParseFieldPolicy maps assume, weave, fail and prompt to a policy. prompt
// uses in and out.
func ParseFieldPolicy(s string, in io.Reader, out io.Writer) (FieldPolicy, error) {
	switch s {
	case "assume":
		return FixedFieldPolicy(FieldAssumeFrameBased), nil
	case "weave":
		return FixedFieldPolicy(FieldWeave), nil
	case "fail", "":
		return FixedFieldPolicy(FieldAbort), nil
	case "prompt":
		return PromptFieldPolicy(in, out), nil
	}
	return nil, configErr("field-policy", s, "expected assume, weave, fail or prompt")
}
