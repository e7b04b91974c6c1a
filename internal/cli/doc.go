// Package cli provides an interactive command-line front end for the board
// editor. It drives the engine the way a canvas UI would: it opens boards,
// places and arranges items, and moves boards in and out of archives and
// backups.
//
// The REPL is started with App.Run, which blocks until the user quits or
// input ends. Prompts are only printed when stdin is a terminal so the CLI
// can also be scripted through a pipe.
package cli
