// Package audio runs the optional background music. It is independent of the
// download engine: nothing flows between the two.
//
// Three strategies pick the source: the built-in remote track, a link chosen
// by the user (persisted in one preference key), or a locally synthesized
// tone loop. When playback cannot start the controller enters StateBlocked,
// and the shell offers an explicit start button.
package audio
