// Package prompts supplies the instruction text for the three model
// operations. Defaults are embedded in the binary; a prompt directory can
// override any of them with a plain text file of the same name.
package prompts
