// Package getrenderedstartform implements the Get Rendered Start Form command.
//
// It looks up a deployed process definition, creates its start form data and lets the named form
// engine render it. Definitions without a start form render to nil. The command never mutates state.
package getrenderedstartform
