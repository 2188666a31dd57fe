package errs

import "errors"

// Collector is a wrapper around []error that simplifies code where
// multiple errors can happen and need to be aggregated for collective
// display, e.g. CLI batch validation or dialect-file merge conflicts.
//
// Adapted from holo-build's ErrorCollector.
type Collector struct {
	Errors []error
}

// Add adds an error to this collector. If nil is given, nothing happens,
// so callers can safely write
//
//	ec.Add(OperationThatMightFail())
func (c *Collector) Add(err error) {
	if err != nil {
		c.Errors = append(c.Errors, err)
	}
}

// Addf adds an error to this collector: with format arguments it adds a
// ConfigurationError built from them; if only the format string is
// given, it is used as the error string verbatim.
func (c *Collector) Addf(format string, args ...interface{}) {
	if len(args) > 0 {
		c.Errors = append(c.Errors, NewConfigurationError(format, args...))
	} else {
		c.Errors = append(c.Errors, errors.New(format))
	}
}

// Err returns a single combined error, or nil if no errors were collected.
func (c *Collector) Err() error {
	if len(c.Errors) == 0 {
		return nil
	}
	return errors.Join(c.Errors...)
}
