// Package driver implements the Driver aggregate: a verified courier that can
// hold at most one active delivery at a time.
//
// Availability is a reservation flag. Claim flips it off and counts the
// delivery, Release flips it back on, and RecordCompletion releases the driver
// while updating the completion statistics used for ranking.
package driver
