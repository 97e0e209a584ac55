// Package audio validates and files submitted recordings.
//
// Submissions must be structurally valid WAV files with a positive duration.
// Accepted files are copied into the audio directory under a canonical
// contributor/verse/timestamp name and fingerprinted with BLAKE3 so later
// integrity checks can detect tampering or bit rot.
package audio
