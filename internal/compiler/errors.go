package compiler

import "fmt"

func errMissingColon(raw string) error {
	return fmt.Errorf("timer spec %q missing ':' separator", raw)
}

func errUnknownMode(mode string) error {
	return fmt.Errorf("unknown timer mode %q", mode)
}

func errEmptySpec(raw string) error {
	return fmt.Errorf("timer spec %q has no durations", raw)
}

func errSingleDuration(mode string) error {
	return fmt.Errorf("timer mode %q takes exactly one duration", mode)
}
