// Package model holds the in-memory representation of a tiniflow workflow:
// nodes, edges, the tag vocabulary that classifies and rewrites them, and
// the WorkflowGroup that routes __node__/__edge__ calls from a transpiled
// program to whichever workflow is currently active.
//
// Run assembles the data graph and control graph that pkg/pipeline expands
// into processes; nothing in this package spawns anything.
package model
