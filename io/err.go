package io

import (
	"github.com/ezrec/drel/translate"
)

var f = translate.From

// ErrImage indicates the program image file that could not be accessed.
type ErrImage struct {
	Name string
	Err  error
}

func (err *ErrImage) Error() string {
	return f("image %v: %v", err.Name, err.Err)
}

func (err *ErrImage) Unwrap() error {
	return err.Err
}
