package pronounce

import "fmt"

// TextTooLongError rejects input ahead of any network or subprocess work.
type TextTooLongError struct {
	Limit  int
	Length int
}

func (e *TextTooLongError) Error() string {
	return fmt.Sprintf("input text length %d exceeds the backend limit of %d", e.Length, e.Limit)
}

// OptionError rejects a request whose options cannot be resolved.
type OptionError struct {
	Key    string
	Reason string
}

func (e *OptionError) Error() string {
	return fmt.Sprintf("option %q: %s", e.Key, e.Reason)
}

// NotFoundError reports a lookup whose strategies are all exhausted. The
// message is backend-specific; Phrase records whether the input was
// multi-word, which changes the wording to steer users toward backends that
// synthesize rather than search.
type NotFoundError struct {
	Msg    string
	Phrase bool
}

func (e *NotFoundError) Error() string { return e.Msg }

// UnavailableError reports a backend that cannot run on this host at all,
// for lack of a local command or credentials.
type UnavailableError struct {
	Backend string
	Reason  string
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s: %s", e.Backend, e.Reason)
}
