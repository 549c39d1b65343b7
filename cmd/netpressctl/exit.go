package main

// exitError carries a process exit code out through cobra's error return.
// A failed tool call prints its result as data and exits nonzero without a
// second error line, which is what silent is for.
type exitError struct {
	code    int
	message string
	silent  bool
}

func (e exitError) Error() string {
	return e.message
}

// exitSilent requests a nonzero exit with nothing written to stderr.
func exitSilent(code int) error {
	return exitError{code: code, silent: true}
}
