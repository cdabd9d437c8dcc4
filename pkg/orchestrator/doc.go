// Package orchestrator wires the store → catalog → engine → workflow pipeline
// behind a single constructor and runs the interactive session loop: pick a
// form, collect answers, then submit, edit, reset or quit.
package orchestrator
