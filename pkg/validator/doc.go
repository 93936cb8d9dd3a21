// Package validator provides rule-based input validation.
//
// Rules are plain values pairing a check with the error reported on failure;
// Apply runs a set of rules and returns accumulated ValidationErrors:
//
//	if err := validator.Apply(
//	    validator.RequiredString("email", email),
//	    validator.ValidEmail("email", email),
//	    validator.MinLenString("password", password, 8),
//	); err != nil {
//	    return err
//	}
package validator
