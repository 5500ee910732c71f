// Package segment decides how to split long audio into bounded-duration
// pieces and materializes the pieces as standalone files.
//
// Short files pass through untouched. Long files are cut at detected silence
// where possible so segment boundaries fall between sentences rather than
// mid-word. Very long files skip silence analysis entirely and use fixed
// intervals, since scanning hours of audio costs more than the boundary
// quality is worth.
package segment
