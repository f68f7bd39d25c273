// Package setdeploymentcategory implements the Set Deployment Category command.
//
// The command changes the category of an existing deployment and raises one ENTITY_UPDATED event
// for it. An unknown deployment id fails with a not-found error and changes nothing.
package setdeploymentcategory
