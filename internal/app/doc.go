// Package app hosts a program: it loads the definitions, opens the
// blackboard, starts the selected graphs and drives them with a tick loop,
// independent of any entrypoint like the CLI.
package app
