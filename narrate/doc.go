// Package narrate drives remote speech-synthesis jobs to completion and
// reconciles the word timestamps returned by their linked forced-alignment
// jobs against document text.
//
// The package has four pieces: a StatusPoller normalizes the remote API's
// composite job status into a CompositeJobView; an Awaiter polls until the
// job reaches a terminal verdict; a Matcher walks document text and annotates
// words with their alignment timings; and a TrackCache memoizes alignment
// track fetches for the lifetime of the process.
package narrate
