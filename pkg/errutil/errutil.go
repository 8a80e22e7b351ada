// Package errutil combines errors, such as the failures collected while
// undoing several filesystem operations.
package errutil

import "strings"

// Multi returns nil when every argument is nil, and the only non-nil argument
// when there is one. Otherwise it returns an error listing all the non-nil
// arguments. Unwrap exposes them to errors.Is and errors.As, and nested
// results of Multi are flattened.
func Multi(errs ...error) error {
	var all multiError
	for _, err := range errs {
		switch err := err.(type) {
		case nil:
		case multiError:
			all = append(all, err...)
		default:
			all = append(all, err)
		}
	}
	if len(all) == 0 {
		return nil
	} else if len(all) == 1 {
		return all[0]
	}
	return all
}

type multiError []error

func (me multiError) Error() string {
	msgs := make([]string, len(me))
	for i, err := range me {
		msgs[i] = err.Error()
	}
	return "multiple errors: " + strings.Join(msgs, "; ")
}

func (me multiError) Unwrap() []error { return me }
